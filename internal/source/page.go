package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// maxPageSize limits how much of an HTML page is parsed.
const maxPageSize = 10 * 1024 * 1024 // 10MB

// PageParser extracts image URLs from an HTML document.
type PageParser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// NewPageParser creates a parser that resolves relative references against baseURL.
func NewPageParser(baseURL string) (*PageParser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &PageParser{baseURL: u}, nil
}

// Parse returns the absolute http(s) URLs of the images referenced by the
// document, in document order, without duplicates.
//
// The following references are collected:
//   - <img src>
//   - <link rel="icon">, <link rel="shortcut icon"> and <link rel="apple-touch-icon">
//   - <meta property="og:image"> and <meta name="twitter:image">
//
// A <base href> element changes the base URL for references after it.
func (p *PageParser) Parse(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0)
	seen := make(map[string]bool)
	add := func(ref string) {
		resolved := p.resolveURL(ref)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				if href := getAttr(n, "href"); href != "" {
					if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
						p.baseURL = p.baseURL.ResolveReference(u)
					}
				}
			case "img":
				add(getAttr(n, "src"))
			case "link":
				switch strings.ToLower(getAttr(n, "rel")) {
				case "icon", "shortcut icon", "apple-touch-icon":
					add(getAttr(n, "href"))
				}
			case "meta":
				name := getAttr(n, "property")
				if name == "" {
					name = getAttr(n, "name")
				}
				if name == "og:image" || name == "twitter:image" {
					add(getAttr(n, "content"))
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return images, nil
}

// resolveURL resolves ref against the base URL. It returns "" for empty,
// inline (data:, javascript:) and non-http(s) references.
func (p *PageParser) resolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" {
		return ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// FromPage downloads an HTML page and returns the image URLs it references.
func FromPage(ctx context.Context, client *http.Client, pageURL, userAgent string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch page %s: %s", pageURL, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return nil, fmt.Errorf("page %s is not HTML: %s", pageURL, ct)
	}

	// The final URL after redirects is the base for relative references.
	parser, err := NewPageParser(resp.Request.URL.String())
	if err != nil {
		return nil, err
	}
	return parser.Parse(io.LimitReader(resp.Body, maxPageSize))
}
