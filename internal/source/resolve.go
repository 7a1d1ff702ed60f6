package source

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nao1215/imgfetcher/internal/config"
)

// Resolve settles cfg.URLs for a run.
//
// Command-line args and the URLs of cfg.ListFile, in that order, replace
// whatever the configuration file or the defaults provided. The images of
// every page in cfg.PageURLs are then appended. When only pages are given,
// the default list is dropped so that the run fetches the pages' images alone.
//
// A page that cannot be downloaded is logged and skipped; an unreadable
// list file is an error. A list file without URLs leaves cfg.URLs empty
// rather than falling back to the defaults.
func Resolve(ctx context.Context, client *http.Client, cfg *config.Config, args []string, logger *slog.Logger) error {
	explicit := append([]string(nil), args...)

	if cfg.ListFile != "" {
		listed, err := ReadListFile(cfg.ListFile)
		if err != nil {
			return err
		}
		explicit = append(explicit, listed...)
	}

	// A list file counts as a source even when it holds no URLs.
	if len(explicit) > 0 || cfg.ListFile != "" {
		cfg.URLs = explicit
		cfg.UsingDefaultURLs = false
	}

	if len(cfg.PageURLs) == 0 {
		return nil
	}

	if cfg.UsingDefaultURLs {
		cfg.URLs = nil
		cfg.UsingDefaultURLs = false
	}

	for _, page := range cfg.PageURLs {
		images, err := FromPage(ctx, client, page, cfg.UserAgent)
		if err != nil {
			logger.Warn("skipping page", "page", page, "error", err)
			continue
		}
		logger.Debug("found images on page", "page", page, "count", len(images))
		cfg.URLs = append(cfg.URLs, images...)
	}
	return nil
}
