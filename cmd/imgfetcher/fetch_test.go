package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/imgfetcher/internal/config"
	"github.com/nao1215/imgfetcher/internal/digest"
	"github.com/nao1215/imgfetcher/internal/history"
	"github.com/nao1215/imgfetcher/internal/model"
)

// newImageServer serves two identical images and one HTML page.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	image := []byte("\x89PNG\r\n\x1a\nsame-bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/first.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(image)
	})
	mux.HandleFunc("/again.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(image)
	})
	mux.HandleFunc("/about.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>no images</body></html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestNewFetchCmd tests the fetch command creation.
func TestNewFetchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewFetchCmd()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"timeout", "t"},
		{"config", "c"},
		{"list", "l"},
		{"page", "p"},
		{"digest", "d"},
		{"user-agent", ""},
		{"proxy", ""},
		{"tor", ""},
		{"tor-timeout", ""},
		{"respect-robots", ""},
		{"metadata", ""},
		{"history", ""},
		{"json", "j"},
		{"markdown", "m"},
		{"output", "o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestBuildConfig tests configuration assembly from flags and files.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the built-in list", func(t *testing.T) {
		t.Parallel()

		cmd := NewFetchCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.UsingDefaultURLs || len(cfg.URLs) != len(config.DefaultURLs) {
			t.Errorf("expected default URLs, got %v", cfg.URLs)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("applies flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewFetchCmd()
		err := cmd.ParseFlags([]string{
			"-t", "3s",
			"-d", "sha256",
			"--proxy", "127.0.0.1:9050",
			"-p", "https://example.com/gallery",
			"--respect-robots",
			"--metadata",
			"--history",
			"--history-dir", "/tmp/hist",
			"--json",
			"-o", "report.json",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected 3s, got %v", cfg.Timeout)
		}
		if cfg.Digest != digest.SHA256 {
			t.Errorf("expected sha256, got %q", cfg.Digest)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
		if len(cfg.PageURLs) != 1 {
			t.Errorf("expected 1 page, got %v", cfg.PageURLs)
		}
		if !cfg.RespectRobots || !cfg.ExtractMetadata || !cfg.SaveHistory {
			t.Error("expected feature flags to be applied")
		}
		if cfg.HistoryDir != "/tmp/hist" {
			t.Errorf("unexpected history dir %q", cfg.HistoryDir)
		}
		if !cfg.JSONReport || cfg.ReportFile != "report.json" {
			t.Error("expected report flags to be applied")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid configuration, got %v", err)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewFetchCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatal(err)
		}
		if _, err := buildConfig(cmd); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		content := "urls:\n  - https://example.com/a.jpg\ntimeout: 30s\ndigest: sha1\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewFetchCmd()
		if err := cmd.ParseFlags([]string{"-c", path, "-t", "5s"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected flag timeout 5s, got %v", cfg.Timeout)
		}
		if cfg.Digest != digest.SHA1 {
			t.Errorf("expected digest from file, got %q", cfg.Digest)
		}
		if cfg.UsingDefaultURLs || len(cfg.URLs) != 1 {
			t.Errorf("expected URLs from file, got %v", cfg.URLs)
		}
	})
}

// TestBuildConfigEnv tests that the environment sits between the file and
// the flags. It cannot run in parallel because it modifies the environment.
func TestBuildConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("timeout: 30s\nuserAgent: from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMGFETCHER_TIMEOUT", "20s")
	t.Setenv("IMGFETCHER_USER_AGENT", "from-env")

	cmd := NewFetchCmd()
	if err := cmd.ParseFlags([]string{"-c", path, "--user-agent", "from-flag"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("expected env timeout 20s, got %v", cfg.Timeout)
	}
	if cfg.UserAgent != "from-flag" {
		t.Errorf("expected flag user agent, got %q", cfg.UserAgent)
	}
}

// newRunConfig returns a configuration for runFetch with the given URLs.
func newRunConfig(urls ...string) *config.Config {
	cfg := config.NewConfig()
	cfg.URLs = urls
	cfg.Timeout = 5 * time.Second
	return cfg
}

// TestRunFetch tests a complete run with report and history.
func TestRunFetch(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, config.OutputDir)

	cfg := newRunConfig()
	cfg.SaveHistory = true
	cfg.HistoryDir = filepath.Join(tmp, "history")
	cfg.JSONReport = true
	cfg.ReportFile = filepath.Join(tmp, "reports", "run.json")

	args := []string{
		srv.URL + "/first.png",
		srv.URL + "/about.html",
		srv.URL + "/again.png",
	}

	var out bytes.Buffer
	err := runFetch(context.Background(), cfg, args, fetchEnv{out: &out, outputDir: outputDir}, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := strings.Join([]string{
		"Welcome to the Ubuntu Image Fetcher",
		"A tool for mindfully collecting images from the web",
		"",
		"Fetching 3 images...",
		"",
		"✓ Successfully fetched: first.png",
		"✓ Image saved to " + filepath.Join(outputDir, "first.png"),
		"✗ Skipped (Not an image): " + srv.URL + "/about.html",
		"✗ Skipped (Duplicate image): again.png",
		"",
		"Connection strengthened. Community enriched.",
		"",
	}, "\n")
	if out.String() != expected {
		t.Errorf("unexpected console output:\n%s\nexpected:\n%s", out.String(), expected)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "first.png" {
		t.Errorf("expected only first.png to be saved, got %v", entries)
	}

	data, err := os.ReadFile(cfg.ReportFile)
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	var rep struct {
		Summary struct {
			Total  int            `json:"total"`
			Counts map[string]int `json:"counts"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if rep.Summary.Total != 3 || rep.Summary.Counts["duplicate"] != 1 {
		t.Errorf("unexpected report summary: %+v", rep.Summary)
	}

	store, err := history.Open(cfg.HistoryDir, history.Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Total != 3 || runs[0].Saved != 1 {
		t.Errorf("unexpected history: %+v", runs)
	}
}

// TestRunFetchFailuresExitZero verifies that per-URL failures are not errors.
func TestRunFetchFailuresExitZero(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	outputDir := filepath.Join(t.TempDir(), config.OutputDir)

	var out bytes.Buffer
	cfg := newRunConfig(srv.URL+"/missing.png", "http://127.0.0.1:1/refused.png")
	err := runFetch(context.Background(), cfg, nil, fetchEnv{out: &out, outputDir: outputDir}, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Count(out.String(), "✗ Connection error while fetching") != 2 {
		t.Errorf("expected two connection errors, got:\n%s", out.String())
	}
}

// TestRunFetchInterrupted verifies that an interrupted run is still recorded.
func TestRunFetchInterrupted(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)
	tmp := t.TempDir()

	cfg := newRunConfig(srv.URL+"/first.png", srv.URL+"/again.png")
	cfg.SaveHistory = true
	cfg.HistoryDir = filepath.Join(tmp, "history")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runFetch(ctx, cfg, nil, fetchEnv{out: &out, outputDir: filepath.Join(tmp, config.OutputDir)}, discardLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	store, err := history.Open(cfg.HistoryDir, history.Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || !runs[0].Interrupted {
		t.Errorf("expected one interrupted run, got %+v", runs)
	}
}

// TestRunFetchNoURLs verifies that a run with nothing left to fetch fails
// instead of falling back to the built-in list.
func TestRunFetchNoURLs(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)

	tests := []struct {
		name  string
		setup func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "page without images",
			setup: func(_ *testing.T, cfg *config.Config) {
				cfg.PageURLs = []string{srv.URL + "/about.html"}
			},
		},
		{
			name: "list file with no URLs",
			setup: func(t *testing.T, cfg *config.Config) {
				list := filepath.Join(t.TempDir(), "urls.txt")
				if err := os.WriteFile(list, []byte("# nothing yet\n\n"), 0600); err != nil {
					t.Fatal(err)
				}
				cfg.ListFile = list
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newRunConfig(config.DefaultURLs...)
			cfg.UsingDefaultURLs = true
			tt.setup(t, cfg)

			var out bytes.Buffer
			err := runFetch(context.Background(), cfg, nil, fetchEnv{out: &out, outputDir: filepath.Join(t.TempDir(), config.OutputDir)}, discardLogger())
			if !errors.Is(err, config.ErrNoURLs) {
				t.Errorf("expected ErrNoURLs, got %v", err)
			}
			if out.Len() != 0 {
				t.Errorf("expected no console output, got:\n%s", out.String())
			}
		})
	}
}

// TestRunFetchProxyUnavailable verifies that a missing proxy fails the run early.
func TestRunFetchProxyUnavailable(t *testing.T) {
	t.Parallel()

	cfg := newRunConfig("https://example.com/a.jpg")
	cfg.ProxyAddress = "127.0.0.1:1"

	var out bytes.Buffer
	err := runFetch(context.Background(), cfg, nil, fetchEnv{out: &out, outputDir: filepath.Join(t.TempDir(), config.OutputDir)}, discardLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Len() != 0 {
		t.Errorf("expected no console output, got:\n%s", out.String())
	}
}

// TestOutputReport tests report format selection.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	run := model.NewRun("md5", config.OutputDir)
	run.Add(&model.Result{URL: "https://example.com/a.jpg", Kind: model.KindSaved, Filename: "a.jpg", Size: 10})
	run.FinishedAt = time.Now()

	tests := []struct {
		name  string
		setup func(*config.Config)
		want  string
	}{
		{name: "text by default", setup: func(*config.Config) {}, want: "IMAGE FETCH REPORT"},
		{name: "markdown", setup: func(c *config.Config) { c.MarkdownReport = true }, want: "# Image Fetch Report"},
		{name: "json", setup: func(c *config.Config) { c.JSONReport = true }, want: `"summary"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.setup(cfg)

			var buf bytes.Buffer
			if err := outputReport(cfg, run, &buf); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.want, buf.String())
			}
		})
	}
}
