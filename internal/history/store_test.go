package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/imgfetcher/internal/model"
)

// setupTestStore creates a temporary database for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestRun creates a finished run with three results.
func newTestRun(started time.Time) *model.Run {
	run := model.NewRun("md5", "Fetched_Images")
	run.StartedAt = started
	run.Add(&model.Result{
		URL:         "https://example.com/a.jpg",
		Kind:        model.KindSaved,
		Filename:    "a.jpg",
		Path:        "Fetched_Images/a.jpg",
		ContentType: "image/jpeg",
		Digest:      "0cc175b9c0f1b6a831c399e269772661",
		Size:        100,
		Metadata:    &model.ImageMetadata{Make: "Canon", HasGPS: true},
	})
	run.Add(&model.Result{URL: "https://example.com/page", Kind: model.KindNotImage, ContentType: "text/html"})
	run.Add(&model.Result{URL: "https://bad.example", Kind: model.KindNetworkError, Error: "connection refused"})
	run.FinishedAt = started.Add(2 * time.Second)
	return run
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DatabaseFile)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dbDir, DatabaseFile) {
			t.Errorf("unexpected path %q", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNoHistory) {
			t.Errorf("expected ErrNoHistory, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if err := s.SaveRun(context.Background(), newTestRun(time.Now())); err != nil {
			t.Fatal(err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer s.Close()

		runs, err := s.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after reopening, got %d", len(runs))
		}
	})
}

// TestSaveRun tests storing and reading back a run.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := newTestRun(started)
	run.Interrupted = true

	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	rec, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if !rec.StartedAt.Equal(started) {
		t.Errorf("expected start %v, got %v", started, rec.StartedAt)
	}
	if !rec.FinishedAt.Equal(started.Add(2 * time.Second)) {
		t.Errorf("unexpected finish %v", rec.FinishedAt)
	}
	if rec.Total != 3 || rec.Saved != 1 || rec.SavedBytes != 100 {
		t.Errorf("unexpected totals: %+v", rec)
	}
	if !rec.Interrupted {
		t.Error("expected interrupted flag")
	}
	if rec.Digest != "md5" || rec.OutputDir != "Fetched_Images" {
		t.Errorf("unexpected run fields: %+v", rec)
	}

	fetches, err := s.GetRunFetches(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRunFetches failed: %v", err)
	}
	if len(fetches) != 3 {
		t.Fatalf("expected 3 fetches, got %d", len(fetches))
	}

	first := fetches[0]
	if first.Kind != model.KindSaved || first.Filename != "a.jpg" || first.Size != 100 {
		t.Errorf("unexpected first fetch: %+v", first)
	}
	if first.Metadata == nil || first.Metadata.Make != "Canon" || !first.Metadata.HasGPS {
		t.Errorf("expected metadata round trip, got %+v", first.Metadata)
	}
	if fetches[1].Kind != model.KindNotImage || fetches[1].Metadata != nil {
		t.Errorf("unexpected second fetch: %+v", fetches[1])
	}
	if fetches[2].Error != "connection refused" {
		t.Errorf("expected error text, got %q", fetches[2].Error)
	}
}

// TestSaveRunDuplicateID verifies that a failed save leaves no partial rows.
func TestSaveRunDuplicateID(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	run := newTestRun(time.Now())

	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, run); err == nil {
		t.Fatal("expected error for duplicate run ID")
	}

	fetches, err := s.GetRunFetches(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetches) != 3 {
		t.Errorf("expected original 3 fetches, got %d", len(fetches))
	}
}

// TestListRuns tests ordering and limits.
func TestListRuns(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		run := newTestRun(base.Add(time.Duration(i) * time.Hour))
		ids = append(ids, run.ID)
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := s.ListRuns(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
			t.Errorf("unexpected order: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		runs, err := s.ListRuns(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	if _, err := s.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestEmptyHistory(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	runs, err := s.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026-03-01T12:00:00.500000000Z", time.Date(2026, 3, 1, 12, 0, 0, 5e8, time.UTC)},
		{"2026-03-01T12:00:00Z", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"2026-03-01 12:00:00", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"garbage", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTimestampSortsLexically(t *testing.T) {
	t.Parallel()

	a := formatTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 5e8, time.UTC))
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}
	if formatTimestamp(time.Time{}) != "" {
		t.Error("expected empty string for zero time")
	}
}
