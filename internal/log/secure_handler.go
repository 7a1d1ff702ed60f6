package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces every redacted value.
const MaskValue = "***REDACTED***"

// maskedKeys are attribute keys, lowercased, whose values are always masked.
// Keys containing one of sensitiveKeywords are masked as well.
var maskedKeys = map[string]bool{
	"cookie":     true,
	"set-cookie": true,
	"api_key":    true,
	"apikey":     true,
	"x-api-key":  true,
	"sig":        true,
	"session":    true,
}

// sensitiveKeywords mask any key that contains them. The bare word "key" is
// not one of them: "cache_key" and "primary_key" are common and harmless.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private", "signature",
}

// sensitivePatterns match values that are masked whatever their key.
// Request headers and proxy credentials are the only secrets a fetch run
// handles, so the patterns cover those.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`), // Authorization header values
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),        // bare API keys
	regexp.MustCompile(`^16:[0-9A-F]{58}$`),         // Tor hashed control password
}

// safeKeys hold values that look like keys but are not secret. Hex digests
// and run IDs would otherwise match the API key pattern.
var safeKeys = map[string]bool{
	"digest": true,
	"run_id": true,
	"id":     true,
}

// SecureHandler is an slog.Handler that masks secrets before delegating.
//
// An attribute is masked when its key is sensitive or its value matches a
// sensitive pattern. URLs inside string and error values keep their shape
// but lose the userinfo password and signed query parameters.
type SecureHandler struct {
	next slog.Handler
}

// NewSecureHandler wraps next. A nil next wraps slog.Default().Handler().
func NewSecureHandler(next slog.Handler) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &SecureHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SecureHandler{next: h.next.WithAttrs(redactAttrs(attrs))}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{next: h.next.WithGroup(name)}
}

func redactAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = redactAttr(a)
	}
	return out
}

// redactAttr returns a with its value masked or its URLs redacted.
// LogValuers are resolved first so that their output is checked too.
func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactAttrs(a.Value.Group())...)}
	}

	key := strings.ToLower(a.Key)
	if maskedKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	var text string
	switch a.Value.Kind() {
	case slog.KindString:
		text = a.Value.String()
		if !safeKeys[key] && isSensitiveValue(text) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		// net/http errors quote the request URL.
		err, ok := a.Value.Any().(error)
		if !ok || err == nil {
			return a
		}
		text = err.Error()
	default:
		return a
	}

	if redacted := RedactURLs(text); redacted != text {
		return slog.String(a.Key, redacted)
	}
	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger returns a text logger on w that masks secrets.
// verbose lowers the level from Warn to Debug.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with one JSON object per line.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
