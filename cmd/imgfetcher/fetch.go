package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nao1215/imgfetcher/internal/config"
	"github.com/nao1215/imgfetcher/internal/console"
	"github.com/nao1215/imgfetcher/internal/digest"
	"github.com/nao1215/imgfetcher/internal/fetcher"
	"github.com/nao1215/imgfetcher/internal/history"
	applog "github.com/nao1215/imgfetcher/internal/log"
	"github.com/nao1215/imgfetcher/internal/model"
	"github.com/nao1215/imgfetcher/internal/pipeline"
	"github.com/nao1215/imgfetcher/internal/report"
	"github.com/nao1215/imgfetcher/internal/robots"
	"github.com/nao1215/imgfetcher/internal/source"
	"github.com/nao1215/imgfetcher/internal/transport"
)

// dotEnvFile is read from the working directory before the environment.
const dotEnvFile = ".env"

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url...]",
		Short: "Fetch images into Fetched_Images",
		Long: `Fetch downloads every URL in order and saves the images into Fetched_Images.

URLs are taken from the arguments and --list. Without either, the urls of the
configuration file are used, or else the built-in list of nature images.
Pages given with --page contribute every image they reference.

Each URL produces exactly one outcome line. A URL that fails never stops the
run, and the exit status is 0 whatever the per-URL outcomes.

Examples:
  # Fetch the built-in nature images
  imgfetcher fetch

  # Fetch specific images
  imgfetcher fetch https://example.com/a.jpg https://example.com/b.png

  # Fetch a list of URLs, one per line ("-" reads stdin)
  imgfetcher fetch --list urls.txt

  # Fetch every image on a page, honoring robots.txt
  imgfetcher fetch --page https://example.com/gallery --respect-robots

  # Route requests through a local Tor SOCKS proxy and write a JSON report
  imgfetcher fetch --proxy 127.0.0.1:9050 --json -o report.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runFetchCmd,
	}

	addFetchFlags(cmd)
	return cmd
}

// addFetchFlags registers the fetch flags on cmd.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request, including reading the body")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .imgfetcher in current directory or XDG config dir)")
	cmd.Flags().StringP("list", "l", "",
		`File with one URL per line ("-" for stdin)`)
	cmd.Flags().StringArrayP("page", "p", nil,
		"HTML page whose images are fetched (repeatable)")
	cmd.Flags().StringP("digest", "d", string(config.DefaultDigest),
		"Content digest for duplicate detection (md5, sha1, sha256, sha3-256, blake2b-256)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Largest accepted response body in bytes")

	// Transport flags
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Optional features
	cmd.Flags().Bool("respect-robots", false,
		"Skip URLs disallowed by the host's robots.txt")
	cmd.Flags().Bool("metadata", false,
		"Read EXIF metadata of saved images into the report")
	cmd.Flags().Bool("history", false,
		"Record the run in the history database")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data dir)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Write a JSON run report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write a Markdown run report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the run report to the specified file path (creates directories if needed)")
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureLogger(os.Stderr, cfg.Verbose)
	if getBoolFlag(cmd, "log-json") {
		logger = applog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	return runFetch(ctx, cfg, args, fetchEnv{
		out:       out,
		outputDir: config.OutputDir,
		color:     out == os.Stdout && !color.NoColor,
	}, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from, in increasing precedence, the defaults,
// the configuration file, the environment and the flags that were set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.URLs = append([]string(nil), config.DefaultURLs...)
	cfg.UsingDefaultURLs = true

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing explicit config file is an error; a missing default one is not.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	return cfg, nil
}

// applyFlags overlays the flags that were set explicitly onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("list") {
		if cfg.ListFile, err = flags.GetString("list"); err != nil {
			return err
		}
	}
	if flags.Changed("page") {
		pages, err := flags.GetStringArray("page")
		if err != nil {
			return err
		}
		cfg.PageURLs = append(cfg.PageURLs, pages...)
	}
	if flags.Changed("digest") {
		name, err := flags.GetString("digest")
		if err != nil {
			return err
		}
		cfg.Digest = digest.Algorithm(name)
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("tor") {
		if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
			return err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
			return err
		}
	}
	if flags.Changed("metadata") {
		if cfg.ExtractMetadata, err = flags.GetBool("metadata"); err != nil {
			return err
		}
	}
	if flags.Changed("history") {
		if cfg.SaveHistory, err = flags.GetBool("history"); err != nil {
			return err
		}
	}
	if flags.Changed("history-dir") {
		if cfg.HistoryDir, err = flags.GetString("history-dir"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	return nil
}

// fetchEnv holds where a run writes its output.
type fetchEnv struct {
	// out receives the console lines and, without --output, the report.
	out io.Writer

	// outputDir is where images are saved.
	outputDir string

	// color enables colored outcome marks.
	color bool
}

// runFetch executes one run described by cfg.
func runFetch(ctx context.Context, cfg *config.Config, args []string, env fetchEnv, logger *slog.Logger) error {
	session, err := transport.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up transport: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("failed to close transport", "route", session.Route, "error", err)
		}
	}()

	if err := source.Resolve(ctx, session.Client, cfg, args, logger); err != nil {
		return err
	}
	if len(cfg.URLs) == 0 {
		return config.ErrNoURLs
	}

	alg, err := digest.Parse(string(cfg.Digest))
	if err != nil {
		return err
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithDigest(alg),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithOutputDir(env.outputDir),
		fetcher.WithLogger(logger),
	}
	if cfg.RespectRobots {
		fetchOpts = append(fetchOpts, fetcher.WithPolicy(robots.NewChecker(session.Client, cfg.UserAgent, logger)))
	}

	runnerOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.ExtractMetadata {
		runnerOpts = append(runnerOpts, pipeline.WithSteps(pipeline.NewMetadataStep(logger)))
	}

	logger.Debug("starting run",
		"urls", len(cfg.URLs),
		"route", session.Route,
		"digest", alg.String(),
	)

	runner := pipeline.New(
		fetcher.New(session.Client, fetchOpts...),
		console.NewPrinter(env.out, console.WithColor(env.color)),
		runnerOpts...,
	)

	run, runErr := runner.Run(ctx, cfg.URLs, cfg.UsingDefaultURLs)
	if run == nil || (runErr != nil && !run.Interrupted) {
		return runErr
	}

	// The run is recorded even when interrupted.
	if cfg.WantsReport() {
		if err := outputReport(cfg, run, env.out); err != nil {
			logger.Error("report failed", "error", err)
		}
	}
	if cfg.SaveHistory {
		if err := saveRun(context.WithoutCancel(ctx), cfg.HistoryDir, run, logger); err != nil {
			logger.Error("failed to record run", "error", err)
		}
	}

	return runErr
}

// outputReport writes the run report in the requested format.
func outputReport(cfg *config.Config, run *model.Run, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list every URL, which may include signed links.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(run)
	return err
}

// saveRun records run in the history database in dir.
func saveRun(ctx context.Context, dir string, run *model.Run, logger *slog.Logger) error {
	store, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Debug("run recorded", "run_id", run.ID, "db", store.Path())
	return nil
}
