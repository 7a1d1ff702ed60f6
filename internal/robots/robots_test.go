package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestChecker(t *testing.T) {
	t.Parallel()

	var robotsHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		robotsHits.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n\nUser-agent: imgfetcher\nDisallow: /no-fetcher/\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewChecker(srv.Client(), "imgfetcher", nil)
	ctx := context.Background()

	tests := []struct {
		path string
		want bool
	}{
		{"/images/a.jpg", true},
		{"/no-fetcher/a.jpg", false},
		// The imgfetcher group replaces the * group.
		{"/private/a.jpg", true},
	}

	for _, tt := range tests {
		if got := c.Allowed(ctx, srv.URL+tt.path); got != tt.want {
			t.Errorf("Allowed(%s) = %v, expected %v", tt.path, got, tt.want)
		}
	}

	if robotsHits.Load() != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", robotsHits.Load())
	}
}

func TestCheckerWildcardGroup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewChecker(srv.Client(), "imgfetcher", nil)
	if c.Allowed(context.Background(), srv.URL+"/private/a.jpg") {
		t.Error("expected /private/ to be disallowed")
	}
	if !c.Allowed(context.Background(), srv.URL+"/public/a.jpg") {
		t.Error("expected /public/ to be allowed")
	}
}

func TestCheckerMissingRobots(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewChecker(srv.Client(), "imgfetcher", nil)
	if !c.Allowed(context.Background(), srv.URL+"/anything.jpg") {
		t.Error("expected missing robots.txt to allow everything")
	}
}

func TestCheckerUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewChecker(http.DefaultClient, "imgfetcher", nil)
	if !c.Allowed(context.Background(), addr+"/a.jpg") {
		t.Error("expected unreachable robots.txt to allow everything")
	}
}

func TestCheckerMalformedURL(t *testing.T) {
	t.Parallel()

	c := NewChecker(http.DefaultClient, "imgfetcher", nil)
	if !c.Allowed(context.Background(), "http://[::1") {
		t.Error("expected malformed URL to be allowed")
	}
}
