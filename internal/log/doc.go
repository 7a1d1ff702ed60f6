// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Masking of credentials and signed query parameters in URLs, including
//     URLs embedded in error messages
//   - Configurable log levels with verbose mode support
//
// Image URLs are often pre-signed object storage links, so every URL that
// reaches a log line passes through RedactURL first.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("fetch failed",
//	    "url", "https://bucket.s3.amazonaws.com/a.jpg?X-Amz-Signature=...", // signature masked
//	    "error", err,
//	)
//
// The same logger is handed to tornago when the embedded Tor daemon is used.
package log
