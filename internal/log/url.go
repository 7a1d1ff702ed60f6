package log

import (
	"net/url"
	"regexp"
	"strings"
)

// sensitiveQueryParams are query parameter names, lowercased, whose values
// grant access to a resource. Pre-signed object storage URLs carry them.
var sensitiveQueryParams = map[string]bool{
	"token":                true,
	"access_token":         true,
	"api_key":              true,
	"apikey":               true,
	"key":                  true,
	"auth":                 true,
	"sig":                  true,
	"signature":            true,
	"x-amz-signature":      true,
	"x-amz-credential":     true,
	"x-amz-security-token": true,
	"x-goog-signature":     true,
	"x-goog-credential":    true,
}

// urlPattern finds http(s) URLs embedded in free text such as error messages.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// RedactURL masks the password in the userinfo and the values of sensitive
// query parameters. Anything that does not parse as a URL is returned as is.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	changed := false
	masked := false
	if _, hasPassword := u.User.Password(); hasPassword {
		// MaskValue would be percent-encoded in the userinfo.
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
		changed = true
		masked = true
	}

	if u.RawQuery != "" {
		if q, ok := redactQuery(u.RawQuery); ok {
			u.RawQuery = q
			changed = true
		}
	}

	if !changed {
		return raw
	}
	out := u.String()
	if masked {
		out = strings.Replace(out, ":REDACTED@", ":"+MaskValue+"@", 1)
	}
	return out
}

// redactQuery masks sensitive values while keeping parameter order.
func redactQuery(rawQuery string) (string, bool) {
	parts := strings.Split(rawQuery, "&")
	changed := false
	for i, part := range parts {
		rawName, _, _ := strings.Cut(part, "=")
		name := rawName
		if unescaped, err := url.QueryUnescape(rawName); err == nil {
			name = unescaped
		}
		if sensitiveQueryParams[strings.ToLower(name)] {
			parts[i] = rawName + "=" + MaskValue
			changed = true
		}
	}
	return strings.Join(parts, "&"), changed
}

// RedactURLs applies RedactURL to every URL found in s.
func RedactURLs(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	return urlPattern.ReplaceAllStringFunc(s, RedactURL)
}
