// Package report writes the summary of a finished run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text for terminal display
//   - JSONWriter: Structured JSON for tool integration
//   - MarkdownWriter: Markdown with a Mermaid pie chart of outcomes
//
// The report is separate from the console protocol printed during the run;
// it is only written when requested and never changes the per-URL lines.
package report
