package fetcher

import (
	"net/url"
	"os"
	"strings"

	"github.com/nao1215/imgfetcher/internal/config"
)

// FilenameFromURL returns the final segment of the URL path, or
// config.DefaultFilename if there is none.
//
// The segment is taken from the path as written in rawURL, without decoding
// or re-encoding it: "café.jpg" and "a b.jpg" are kept as given, and an
// encoded slash ("%2F") stays inside the name and can never introduce a
// directory. "." and ".." are replaced by the default name for the same
// reason. No extension is added or normalized.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return config.DefaultFilename
	}

	p := u.RawPath
	if p == "" {
		p = rawPath(rawURL)
	}
	name := p[strings.LastIndex(p, "/")+1:]

	switch name {
	case "", ".", "..":
		return config.DefaultFilename
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		return config.DefaultFilename
	}
	return name
}

// rawPath returns the path of rawURL as written, without the scheme,
// authority, query and fragment.
func rawPath(rawURL string) string {
	s, _, _ := strings.Cut(rawURL, "#")
	s, _, _ = strings.Cut(s, "?")
	if _, rest, ok := strings.Cut(s, "://"); ok {
		i := strings.Index(rest, "/")
		if i < 0 {
			return ""
		}
		return rest[i:]
	}
	return s
}
