package transport

import (
	"net/http"
	"time"
)

// maxRedirects bounds how many redirects a single request follows.
const maxRedirects = 10

// NewDirectClient returns a client that connects to hosts directly.
// timeout bounds each request including reading the body.
func NewDirectClient(timeout time.Duration) *http.Client {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout, CheckRedirect: limitRedirects}
	}
	return &http.Client{
		Transport:     transport.Clone(),
		Timeout:       timeout,
		CheckRedirect: limitRedirects,
	}
}

// limitRedirects stops after maxRedirects hops and returns the last response,
// which the fetcher then rejects by status.
func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}
