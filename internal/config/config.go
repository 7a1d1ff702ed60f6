package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/imgfetcher/internal/digest"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths and
	// the environment variable prefix.
	AppName = "imgfetcher"

	// OutputDir is the fixed directory, relative to the working directory,
	// that fetched images are written to. It is intentionally not configurable.
	OutputDir = "Fetched_Images"

	// DefaultFilename is used when a URL has no final path segment.
	DefaultFilename = "downloaded_image.jpg"

	// DefaultTimeout bounds each request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultDigest is a 128-bit digest, enough to tell images apart within a run.
	DefaultDigest = digest.MD5

	// DefaultMaxBodySize caps how much of a response body is buffered in memory.
	DefaultMaxBodySize = 20 * 1024 * 1024 // 20MB

	// DefaultUserAgent identifies imgfetcher in HTTP requests.
	DefaultUserAgent = "imgfetcher/1.0 (+https://github.com/nao1215/imgfetcher)"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// DefaultURLs is the predefined list of nature images fetched when no other
// source provides URLs.
var DefaultURLs = []string{
	"https://images.unsplash.com/photo-1506744038136-46273834b3fb",
	"https://cdn2.thecatapi.com/images/MTY3ODIyMQ.jpg",
	"https://images.unsplash.com/photo-1470770903676-69b98201ea1c",
}

// Config holds all configuration options for a fetch run.
// It is populated from defaults, the config file, the environment and
// CLI flags, in that order, and passed explicitly to the components.
type Config struct {
	// URLs is the ordered list of URLs to fetch.
	URLs []string

	// UsingDefaultURLs reports whether URLs came from DefaultURLs.
	UsingDefaultURLs bool

	// ListFile is a file with one URL per line.
	ListFile string

	// PageURLs are HTML pages whose <img> sources are appended to URLs.
	PageURLs []string

	// ConfigFilePath is the path to the configuration file. If empty,
	// .imgfetcher is searched in the working directory and the XDG config dir.
	ConfigFilePath string

	// Timeout bounds each request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Digest is the content digest algorithm used for duplicate detection.
	Digest digest.Algorithm

	// MaxBodySize is the maximum number of body bytes buffered per response.
	MaxBodySize int64

	// ProxyAddress routes requests through a SOCKS5 proxy at host:port.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// RespectRobots skips URLs disallowed by the host's robots.txt.
	RespectRobots bool

	// ExtractMetadata reads EXIF metadata from saved images into the run report.
	ExtractMetadata bool

	// SaveHistory records the run in the SQLite history database.
	SaveHistory bool

	// HistoryDir is the directory holding the history database.
	HistoryDir string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport writes the run report as JSON.
	JSONReport bool

	// MarkdownReport writes the run report as Markdown.
	MarkdownReport bool

	// ReportFile is where the run report is written. Empty means stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		Digest:            DefaultDigest,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		HistoryDir:        XDGDataDir(),
	}
}

// WantsReport reports whether a run report should be written after the fetch loop.
func (c *Config) WantsReport() bool {
	return c.JSONReport || c.MarkdownReport || c.ReportFile != ""
}

// XDGDataDir returns the XDG data directory for imgfetcher.
// On Linux: ~/.local/share/imgfetcher
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for imgfetcher.
// On Linux: ~/.config/imgfetcher
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
//
// URLs are not checked here: they are settled by source.Resolve, after
// validation, and an empty result is reported as ErrNoURLs by the caller.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if _, err := digest.Parse(string(c.Digest)); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownDigest, c.Digest)
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingTransports
	}

	if c.ProxyAddress != "" && !IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	return nil
}

// IsValidProxyAddress checks that address is host:port with a port in 1-65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
