package model

import (
	"testing"
	"time"
)

func TestNewRun(t *testing.T) {
	t.Parallel()

	a := NewRun("md5", "Fetched_Images")
	b := NewRun("md5", "Fetched_Images")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected unique non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if a.Duration() != 0 {
		t.Error("expected zero duration for an unfinished run")
	}
}

func TestRunCounts(t *testing.T) {
	t.Parallel()

	run := NewRun("md5", "Fetched_Images")
	run.Add(&Result{Kind: KindSaved, Size: 100})
	run.Add(&Result{Kind: KindNotImage})
	run.Add(&Result{Kind: KindDuplicate, Size: 100})
	run.Add(&Result{Kind: KindSaved, Size: 50})
	run.FinishedAt = run.StartedAt.Add(2 * time.Second)

	if got := run.Count(KindSaved); got != 2 {
		t.Errorf("expected 2 saved, got %d", got)
	}
	if got := run.Count(KindSaveError); got != 0 {
		t.Errorf("expected 0 save errors, got %d", got)
	}
	if got := run.SavedBytes(); got != 150 {
		t.Errorf("expected 150 saved bytes, got %d", got)
	}
	counts := run.Counts()
	if counts[KindNotImage] != 1 || counts[KindDuplicate] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if _, ok := counts[KindNetworkError]; ok {
		t.Error("kinds without results should be omitted")
	}
	if run.Duration() != 2*time.Second {
		t.Errorf("expected 2s duration, got %v", run.Duration())
	}
}

func TestImageMetadataIsEmpty(t *testing.T) {
	t.Parallel()

	var nilMeta *ImageMetadata
	if !nilMeta.IsEmpty() {
		t.Error("nil metadata should be empty")
	}
	if !(&ImageMetadata{}).IsEmpty() {
		t.Error("zero metadata should be empty")
	}
	if (&ImageMetadata{Tags: map[string]string{"Make": "Canon"}}).IsEmpty() {
		t.Error("metadata with tags should not be empty")
	}
}
