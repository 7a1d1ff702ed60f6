package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nao1215/imgfetcher/internal/model"
)

// Marks that prefix every outcome line.
const (
	MarkSuccess = "✓"
	MarkFailure = "✗"
)

// Printer writes banner, per-URL outcome and closing lines.
type Printer struct {
	w       io.Writer
	success *color.Color
	failure *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor enables or disables colored marks. Color is off by default.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		if enabled {
			p.success.EnableColor()
			p.failure.EnableColor()
			return
		}
		p.success.DisableColor()
		p.failure.DisableColor()
	}
}

// NewPrinter creates a Printer that writes to w.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
	}
	p.success.DisableColor()
	p.failure.DisableColor()

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Banner prints the welcome lines. defaultList selects the wording used when
// the built-in URL list is fetched; otherwise the number of URLs is shown.
func (p *Printer) Banner(defaultList bool, count int) {
	fmt.Fprintln(p.w, "Welcome to the Ubuntu Image Fetcher")
	fmt.Fprintln(p.w, "A tool for mindfully collecting images from the web")
	fmt.Fprintln(p.w)

	if defaultList {
		fmt.Fprintln(p.w, "Fetching predefined nature images...")
	} else {
		fmt.Fprintf(p.w, "Fetching %d %s...\n", count, plural(count, "image", "images"))
	}
	fmt.Fprintln(p.w)
}

// Result prints the outcome line(s) of one URL.
func (p *Printer) Result(r *model.Result) {
	switch r.Kind {
	case model.KindSaved:
		p.ok("Successfully fetched: %s", r.Filename)
		p.ok("Image saved to %s", r.Path)
	case model.KindNotImage:
		p.fail("Skipped (Not an image): %s", r.URL)
	case model.KindDuplicate:
		p.fail("Skipped (Duplicate image): %s", r.Filename)
	case model.KindDisallowed:
		p.fail("Skipped (Disallowed by robots.txt): %s", r.URL)
	case model.KindNetworkError:
		p.fail("Connection error while fetching %s: %s", r.URL, r.Error)
	case model.KindSaveError:
		p.fail("Error while saving image: %s", r.Error)
	default:
		p.fail("Unknown outcome for %s", r.URL)
	}
}

// Interrupted prints a notice that the run stopped before the list was exhausted.
func (p *Printer) Interrupted(remaining int) {
	fmt.Fprintln(p.w)
	p.fail("Interrupted, %d %s not fetched", remaining, plural(remaining, "URL", "URLs"))
}

// Closing prints the final line of a run.
func (p *Printer) Closing() {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Connection strengthened. Community enriched.")
}

func (p *Printer) ok(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.success.Sprint(MarkSuccess), fmt.Sprintf(format, args...))
}

func (p *Printer) fail(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.failure.Sprint(MarkFailure), fmt.Sprintf(format, args...))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
