package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/imgfetcher/internal/digest"
	"github.com/nao1215/imgfetcher/internal/fetcher"
	"github.com/nao1215/imgfetcher/internal/model"
)

// Step is run on every result after it has been printed.
type Step interface {
	// Do processes one result. An error is logged and does not change the
	// result's outcome.
	Do(ctx context.Context, result *model.Result) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Fetcher processes a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, seen *digest.Set) *model.Result
	OutputDir() string
	Algorithm() digest.Algorithm
}

// Printer shows the progress of a run.
type Printer interface {
	Banner(defaultList bool, count int)
	Result(r *model.Result)
	Interrupted(remaining int)
	Closing()
}

// Runner orchestrates a run.
type Runner struct {
	// fetcher processes each URL.
	fetcher Fetcher

	// printer receives the banner and per-URL outcomes.
	printer Printer

	// steps run after each fetch, in order.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSteps appends post-fetch steps.
func WithSteps(steps ...Step) Option {
	return func(r *Runner) {
		r.steps = append(r.steps, steps...)
	}
}

// New creates a Runner.
func New(f Fetcher, p Printer, opts ...Option) *Runner {
	r := &Runner{
		fetcher: f,
		printer: p,
		steps:   make([]Step, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// AddStep appends a step. Steps run in the order they are added.
func (r *Runner) AddStep(step Step) {
	r.steps = append(r.steps, step)
}

// StepNames returns the names of all steps in execution order.
func (r *Runner) StepNames() []string {
	names := make([]string, len(r.steps))
	for i, step := range r.steps {
		names[i] = step.Name()
	}
	return names
}

// Run fetches urls in order with a fresh digest set.
//
// Per-URL failures are part of the returned Run, never an error. Run returns
// an error only if the output directory cannot be created, or when ctx is
// cancelled; in the latter case the partial Run is returned as well, with
// Interrupted set.
func (r *Runner) Run(ctx context.Context, urls []string, defaultList bool) (*model.Run, error) {
	run := model.NewRun(r.fetcher.Algorithm().String(), r.fetcher.OutputDir())
	defer func() { run.FinishedAt = time.Now() }()

	r.printer.Banner(defaultList, len(urls))

	if err := fetcher.EnsureOutputDir(r.fetcher.OutputDir()); err != nil {
		return run, err
	}

	seen := digest.NewSet()

	for i, u := range urls {
		select {
		case <-ctx.Done():
			run.Interrupted = true
			r.logger.Warn("run cancelled",
				"processed", i,
				"remaining", len(urls)-i,
				"reason", ctx.Err(),
			)
			r.printer.Interrupted(len(urls) - i)
			return run, fmt.Errorf("run interrupted: %w", ctx.Err())
		default:
		}

		res := r.fetcher.Fetch(ctx, u, seen)
		r.printer.Result(res)

		r.logger.Debug("processed URL",
			"url", u,
			"kind", res.Kind.String(),
			"filename", res.Filename,
		)

		for _, step := range r.steps {
			if err := step.Do(ctx, res); err != nil {
				r.logger.Warn("step failed",
					"step", step.Name(),
					"url", u,
					"error", err,
				)
			}
		}

		// The body is only needed by the steps.
		res.Body = nil
		run.Add(res)
	}

	r.logger.Debug("run completed",
		"saved", run.Count(model.KindSaved),
		"unique_digests", seen.Len(),
	)

	r.printer.Closing()
	return run, nil
}
