package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/imgfetcher/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, run)
	w.writeResults(md, run)
	w.writeMetadata(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Image Fetch Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + run.ID + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration().Round(1e6).String()},
			{"Digest", run.Digest},
			{"Output Directory", "`" + run.OutputDir + "`"},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.Run) string {
	if run.Interrupted {
		return "⚠️ " + runStatus(run) + " (partial results)"
	}
	return "✅ " + runStatus(run)
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.Run) {
	md.H2("Summary")
	md.PlainText("")

	counts := run.Counts()
	rows := make([][]string, 0, len(model.Kinds())+2)
	for _, k := range model.Kinds() {
		rows = append(rows, []string{kindTitle(k), strconv.Itoa(counts[k])})
	}
	rows = append(rows,
		[]string{"**Total**", "**" + strconv.Itoa(len(run.Results)) + "**"},
		[]string{"Saved Size", humanize.Bytes(uint64(run.SavedBytes()))}, //nolint:gosec // size is never negative
	)

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(run.Results) > 0 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, run, counts)
}

// writePieChart writes a mermaid pie chart of outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Kind]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outcome Distribution"),
		piechart.WithShowData(true),
	)

	for _, k := range model.Kinds() {
		if n := counts[k]; n > 0 {
			chart.LabelAndIntValue(kindTitle(k), uint64(n)) //nolint:gosec // counts are never negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert summarizing failures.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.Run, counts map[model.Kind]int) {
	failures := 0
	for k, n := range counts {
		if k.IsFailure() {
			failures += n
		}
	}
	switch {
	case run.Interrupted:
		md.Warningf("The run was interrupted after %d URL(s).", len(run.Results))
	case failures > 0:
		md.Importantf("%d URL(s) could not be fetched or saved.", failures)
	case counts[model.KindSaved] == 0:
		md.Note("No new images were saved.")
	default:
		md.Tip("Every URL was processed without errors.")
	}
	md.PlainText("")
}

// writeResults writes one table row per URL.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, run *model.Run) {
	md.H2("Results")
	md.PlainText("")

	if len(run.Results) == 0 {
		md.PlainText("No URLs were processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Results))
	for i, res := range run.Results {
		detail := "-"
		switch {
		case res.Kind == model.KindSaved:
			detail = "`" + res.Path + "` (" + humanize.Bytes(uint64(res.Size)) + ")" //nolint:gosec // size is never negative
		case res.Error != "":
			detail = truncateString(res.Error, 60)
		case res.Filename != "":
			detail = res.Filename
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(res.URL, 60),
			kindTitle(res.Kind),
			detail,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Outcome", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMetadata writes EXIF details of saved images.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, run *model.Run) {
	var rows [][]string
	for _, res := range run.Results {
		m := res.Metadata
		if m.IsEmpty() {
			continue
		}
		gps := "no"
		if m.HasGPS {
			gps = "**yes**"
		}
		rows = append(rows, []string{res.Filename, orDash(m.Make), orDash(m.Model), orDash(m.DateTime), orDash(m.Software), gps})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Image Metadata")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"File", "Make", "Model", "Taken", "Software", "GPS"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [imgfetcher](https://github.com/nao1215/imgfetcher)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
