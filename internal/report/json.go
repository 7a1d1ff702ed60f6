package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/imgfetcher/internal/model"
)

// JSONWriter outputs run reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is written into the report envelope.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the imgfetcher version recorded in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Summary holds the per-run totals.
type Summary struct {
	// Total is the number of processed URLs.
	Total int `json:"total"`

	// Counts maps kind names to the number of results of that kind.
	Counts map[string]int `json:"counts"`

	// SavedBytes is the total size of saved images.
	SavedBytes int64 `json:"saved_bytes"`

	// DurationMillis is the run duration in milliseconds.
	DurationMillis int64 `json:"duration_ms"`
}

// NewSummary computes the totals of run.
func NewSummary(run *model.Run) *Summary {
	counts := make(map[string]int)
	for k, n := range run.Counts() {
		counts[k.String()] = n
	}
	return &Summary{
		Total:          len(run.Results),
		Counts:         counts,
		SavedBytes:     run.SavedBytes(),
		DurationMillis: run.Duration().Milliseconds(),
	}
}

// JSONReport wraps a run with its summary and version information.
type JSONReport struct {
	// Version is the imgfetcher version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary holds the totals for quick access.
	Summary *Summary `json:"summary"`

	// Run is the full run with every result.
	Run *model.Run `json:"run"`
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Summary: NewSummary(run),
		Run:     run,
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
