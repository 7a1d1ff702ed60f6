package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nao1215/imgfetcher/internal/config"
	"github.com/nao1215/imgfetcher/internal/digest"
	"github.com/nao1215/imgfetcher/internal/model"
)

// Policy decides whether a URL may be fetched at all.
// It is consulted before any request is made.
type Policy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Fetcher fetches single URLs and saves novel images.
// A Fetcher holds no per-run state; the digest set is passed to every call.
type Fetcher struct {
	// client performs the requests. Its Timeout bounds each request,
	// including reading the body.
	client *http.Client

	// algorithm is the content digest used for deduplication.
	algorithm digest.Algorithm

	// maxBodySize is the largest body that is buffered.
	maxBodySize int64

	// userAgent is sent with every request.
	userAgent string

	// outputDir is where images are written.
	outputDir string

	// policy, if set, can veto a URL before it is requested.
	policy Policy

	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDigest sets the content digest algorithm.
func WithDigest(alg digest.Algorithm) Option {
	return func(f *Fetcher) {
		f.algorithm = alg
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithOutputDir sets the directory images are written to.
func WithOutputDir(dir string) Option {
	return func(f *Fetcher) {
		f.outputDir = dir
	}
}

// WithPolicy sets a Policy that is checked before each request.
func WithPolicy(p Policy) Option {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher that uses client for all requests.
// The client should already carry the request timeout and any proxy settings.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		algorithm:   config.DefaultDigest,
		maxBodySize: config.DefaultMaxBodySize,
		userAgent:   config.DefaultUserAgent,
		outputDir:   config.OutputDir,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// OutputDir returns the directory images are written to.
func (f *Fetcher) OutputDir() string {
	return f.outputDir
}

// Algorithm returns the content digest algorithm.
func (f *Fetcher) Algorithm() digest.Algorithm {
	return f.algorithm
}

// Fetch processes one URL and reports the outcome.
//
// seen is read to detect duplicates and is extended only after an image has
// been written successfully. For every outcome other than KindSaved, no file
// is written and seen is unchanged.
//
// The returned Result keeps the body in Body for post-fetch steps when the
// kind is KindSaved.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, seen *digest.Set) *model.Result {
	res := &model.Result{URL: rawURL}

	if f.policy != nil && !f.policy.Allowed(ctx, rawURL) {
		f.logger.Debug("skipping disallowed URL", "url", rawURL)
		return skip(res, model.KindDisallowed, ErrDisallowed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(res, model.KindNetworkError, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	f.logger.Debug("fetching", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return fail(res, model.KindNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(res, model.KindNetworkError, fmt.Errorf("%w: %s", ErrStatus, resp.Status))
	}

	res.ContentType = resp.Header.Get("Content-Type")
	if !isImage(res.ContentType) {
		return skip(res, model.KindNotImage, ErrNotImage)
	}

	res.Filename = FilenameFromURL(rawURL)

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return fail(res, model.KindNetworkError, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return fail(res, model.KindNetworkError, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBodySize))
	}
	res.Size = int64(len(body))

	sum, err := digest.Sum(f.algorithm, body)
	if err != nil {
		return fail(res, model.KindSaveError, err)
	}
	res.Digest = sum

	if seen.Contains(sum) {
		f.logger.Debug("duplicate content", "url", rawURL, "digest", sum)
		return skip(res, model.KindDuplicate, ErrDuplicate)
	}

	path := filepath.Join(f.outputDir, res.Filename)
	overwrote, err := writeImage(path, body)
	if err != nil {
		return fail(res, model.KindSaveError, err)
	}
	if overwrote {
		f.logger.Warn("overwrote existing image with the same name",
			"path", path,
			"url", rawURL,
		)
	}

	seen.Add(sum)

	res.Kind = model.KindSaved
	res.Path = path
	res.Overwrote = overwrote
	res.Body = body
	return res
}

// isImage reports whether a Content-Type value declares image content.
// Media types are case-insensitive.
func isImage(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "image")
}

// fail classifies res as a failure of kind k caused by err.
func fail(res *model.Result, k model.Kind, err error) *model.Result {
	res.Kind = k
	res.Err = &Error{Kind: k, URL: res.URL, Err: err}
	res.Error = err.Error()
	return res
}

// skip classifies res as a policy skip of kind k.
func skip(res *model.Result, k model.Kind, cause error) *model.Result {
	res.Kind = k
	res.Err = &Error{Kind: k, URL: res.URL, Err: cause}
	return res
}
