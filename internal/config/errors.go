package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with errors.Is().
var (
	// ErrNoURLs is returned when no URL is left to fetch after every source
	// (arguments, list file, page scan, config file, built-in list) was consulted.
	ErrNoURLs = errors.New("no URLs to fetch: provide URLs as arguments, --list, --page or a config file")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrUnknownDigest is returned when the digest algorithm is not supported.
	ErrUnknownDigest = errors.New("unknown digest algorithm")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingTransports is returned when both a SOCKS5 proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingTransports = errors.New("conflicting transports: --proxy and --tor cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")
)
