package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/imgfetcher/internal/config"
	"github.com/nao1215/imgfetcher/internal/history"
	"github.com/nao1215/imgfetcher/internal/model"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// It reads runs recorded with "imgfetcher fetch --history".
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `History lists the runs recorded with "imgfetcher fetch --history".

With a run ID, the outcome of every URL of that run is shown instead.
The history is an audit log only; it never affects duplicate detection.

Examples:
  # List the most recent runs
  imgfetcher history

  # List every recorded run
  imgfetcher history --limit 0

  # Show the URLs of one run
  imgfetcher history 5f0c3c4e-7f3a-4a53-9e55-0d7e1b8a2f10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data dir)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir, err = historyDirFromEnv()
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	store, err := history.Open(dir, history.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, history.ErrNoHistory) {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'imgfetcher fetch --history' to record a run.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		return showRun(ctx, out, store, args[0])
	}
	return listRuns(ctx, out, store, limit)
}

// historyDirFromEnv returns the history directory honoring IMGFETCHER_HISTORY_DIR.
func historyDirFromEnv() (string, error) {
	cfg := config.NewConfig()
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return "", err
	}
	env, err := config.LoadEnv()
	if err != nil {
		return "", err
	}
	env.Apply(cfg)
	return cfg.HistoryDir, nil
}

// listRuns prints one line per recorded run, newest first.
func listRuns(ctx context.Context, out io.Writer, store *history.Store, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %5s  %5s  %9s  %s\n", "ID", "Started", "URLs", "Saved", "Size", "Status")
	for _, r := range runs {
		status := "complete"
		if r.Interrupted {
			status = "interrupted"
		}
		fmt.Fprintf(out, "  %-36s  %-20s  %5d  %5d  %9s  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Total,
			r.Saved,
			humanize.Bytes(uint64(r.SavedBytes)), //nolint:gosec // size is never negative
			status,
		)
	}
	return nil
}

// showRun prints the outcome of every URL of one run.
func showRun(ctx context.Context, out io.Writer, store *history.Store, id string) error {
	r, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}

	fetches, err := store.GetRunFetches(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read run: %w", err)
	}

	fmt.Fprintf(out, "Run %s\n", r.ID)
	fmt.Fprintf(out, "Started:  %s (%s)\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(r.StartedAt))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(1e6))
	}
	fmt.Fprintf(out, "Digest:   %s\n", r.Digest)
	fmt.Fprintf(out, "Output:   %s\n\n", r.OutputDir)

	for _, f := range fetches {
		fmt.Fprintf(out, "  %3d  %-13s  %s\n", f.Position+1, f.Kind, f.URL)
		if detail := fetchDetail(f); detail != "" {
			fmt.Fprintf(out, "       %s\n", detail)
		}
	}
	return nil
}

// fetchDetail describes where a result ended up or why it failed.
func fetchDetail(f history.FetchRecord) string {
	switch {
	case f.Kind == model.KindSaved:
		detail := fmt.Sprintf("-> %s (%s)", f.Path, humanize.Bytes(uint64(f.Size))) //nolint:gosec // size is never negative
		if f.Overwrote {
			detail += ", replaced an existing file"
		}
		if m := f.Metadata; !m.IsEmpty() && (m.Make != "" || m.Model != "") {
			detail += ", camera " + strings.TrimSpace(m.Make+" "+m.Model)
		}
		return detail
	case f.Error != "":
		return f.Error
	default:
		return ""
	}
}
