package model

import (
	"time"

	"github.com/google/uuid"
)

// Run is one invocation of the fetch loop.
type Run struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// StartedAt is when the loop started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the loop returned.
	FinishedAt time.Time `json:"finished_at"`

	// Digest is the content digest algorithm used for deduplication.
	Digest string `json:"digest"`

	// OutputDir is the directory images were written to.
	OutputDir string `json:"output_dir"`

	// Interrupted is true if the run was cancelled before every URL was processed.
	Interrupted bool `json:"interrupted,omitempty"`

	// Results holds one entry per processed URL, in list order.
	Results []*Result `json:"results"`
}

// NewRun creates a Run with a fresh ID.
func NewRun(digest, outputDir string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Digest:    digest,
		OutputDir: outputDir,
		Results:   make([]*Result, 0),
	}
}

// Add appends a result.
func (r *Run) Add(res *Result) {
	r.Results = append(r.Results, res)
}

// Count returns the number of results of kind k.
func (r *Run) Count(k Kind) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == k {
			n++
		}
	}
	return n
}

// Counts returns the number of results per kind. Kinds with no results are omitted.
func (r *Run) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, res := range r.Results {
		counts[res.Kind]++
	}
	return counts
}

// SavedBytes returns the total size of all saved images.
func (r *Run) SavedBytes() int64 {
	var total int64
	for _, res := range r.Results {
		if res.Kind == KindSaved {
			total += res.Size
		}
	}
	return total
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
