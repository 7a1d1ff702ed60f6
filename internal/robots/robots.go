package robots

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// Checker decides whether a user agent may fetch a URL.
type Checker struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu sync.Mutex
	// groups caches the rule group per scheme://host. A nil entry means
	// no usable robots.txt, so everything is allowed.
	groups map[string]*robotstxt.Group
}

// NewChecker creates a Checker that downloads robots.txt with client.
// userAgent selects the rule group and is sent with the request.
func NewChecker(client *http.Client, userAgent string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether rawURL may be fetched. Unparseable URLs are
// allowed; the fetch itself reports them.
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	group := c.group(ctx, u)
	if group == nil {
		return true
	}
	return group.Test(u.RequestURI())
}

// group returns the cached rule group for u's host, fetching it on first use.
func (c *Checker) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	defer c.mu.Unlock()

	if group, ok := c.groups[key]; ok {
		return group
	}

	group := c.fetch(ctx, key+"/robots.txt")
	c.groups[key] = group
	return group
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("robots.txt unavailable, allowing all", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all.
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.logger.Debug("robots.txt unparseable, allowing all", "url", robotsURL, "error", err)
		return nil
	}
	return data.FindGroup(c.userAgent)
}
