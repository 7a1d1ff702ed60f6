package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/imgfetcher/internal/model"
)

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether kinds with no results are listed.
	showEmpty bool

	// verbose adds one line per URL.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list kinds with zero results.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables one line per processed URL.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSummary(&sb, run)
	if w.verbose {
		w.writeResults(&sb, run)
	}
	w.writeMetadata(&sb, run)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       IMAGE FETCH REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:     %s\n", run.ID)
	fmt.Fprintf(sb, "Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", run.Duration().Round(1e6))
	fmt.Fprintf(sb, "Digest:     %s\n", run.Digest)
	fmt.Fprintf(sb, "Output:     %s\n", run.OutputDir)
	fmt.Fprintf(sb, "Status:     %s\n", runStatus(run))
	sb.WriteString("\n")
}

// writeSummary writes the per-kind counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, run *model.Run) {
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	counts := run.Counts()
	skipped, failed := 0, 0
	for _, k := range model.Kinds() {
		n := counts[k]
		switch {
		case k.IsSkip():
			skipped += n
		case k.IsFailure():
			failed += n
		}
		if n == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "  %-16s %d\n", kindTitle(k)+":", n)
	}
	fmt.Fprintf(sb, "  %-16s %d (%d skipped, %d failed)\n", "Total:", len(run.Results), skipped, failed)
	fmt.Fprintf(sb, "  %-16s %s\n", "Saved size:", humanize.Bytes(uint64(run.SavedBytes()))) //nolint:gosec // size is never negative
	sb.WriteString("\n")
}

// writeResults writes one line per URL.
func (w *SimpleWriter) writeResults(sb *strings.Builder, run *model.Run) {
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, res := range run.Results {
		line := fmt.Sprintf("  [%s] %s", res.Kind, res.URL)
		switch {
		case res.Kind == model.KindSaved:
			line += fmt.Sprintf(" -> %s (%s)", res.Path, humanize.Bytes(uint64(res.Size))) //nolint:gosec // size is never negative
		case res.Error != "":
			line += ": " + res.Error
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeMetadata lists saved images with EXIF data.
func (w *SimpleWriter) writeMetadata(sb *strings.Builder, run *model.Run) {
	var withMeta []*model.Result
	for _, res := range run.Results {
		if !res.Metadata.IsEmpty() {
			withMeta = append(withMeta, res)
		}
	}
	if len(withMeta) == 0 {
		return
	}

	sb.WriteString("IMAGE METADATA\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, res := range withMeta {
		m := res.Metadata
		fmt.Fprintf(sb, "  %s\n", res.Filename)
		if m.Make != "" || m.Model != "" {
			fmt.Fprintf(sb, "    Camera:   %s\n", strings.TrimSpace(m.Make+" "+m.Model))
		}
		if m.DateTime != "" {
			fmt.Fprintf(sb, "    Taken:    %s\n", m.DateTime)
		}
		if m.Software != "" {
			fmt.Fprintf(sb, "    Software: %s\n", m.Software)
		}
		if m.HasGPS {
			sb.WriteString("    GPS:      present\n")
		}
	}
	sb.WriteString("\n")
}
