package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/imgfetcher/internal/config"
)

// Route names the way requests leave the process.
type Route string

// Available routes.
const (
	RouteDirect Route = "direct"
	RouteSOCKS5 Route = "socks5"
	RouteTor    Route = "tor"
)

// Session is the HTTP client of one run plus the resources behind it.
type Session struct {
	// Client performs every request of the run.
	Client *http.Client

	// Route is the route the client uses.
	Route Route

	tor *EmbeddedTor
}

// Close releases the resources of the session, stopping the embedded Tor
// daemon if one was started.
func (s *Session) Close() error {
	if s.tor == nil {
		return nil
	}
	return s.tor.Stop()
}

// Open builds the session described by cfg.
//
// With a proxy address the proxy is probed first, so a missing proxy fails
// the run before any URL is processed. With UseTor an embedded daemon is
// started and the caller must Close the session.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	switch {
	case cfg.UseTor:
		logger.Info("starting embedded Tor daemon", "timeout", cfg.TorStartupTimeout)

		tor := NewEmbeddedTor(WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, err
		}

		route, err := tor.SOCKS5(cfg.Timeout)
		if err != nil {
			_ = tor.Stop() //nolint:errcheck // Already failing
			return nil, err
		}
		logger.Info("embedded Tor daemon ready", "socks", tor.SocksAddr())
		return &Session{Client: route.HTTPClient(), Route: RouteTor, tor: tor}, nil

	case cfg.ProxyAddress != "":
		route, err := NewSOCKS5(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		if status := route.CheckConnection(ctx); status != ProxyStatusOK {
			return nil, fmt.Errorf("%s: %w", cfg.ProxyAddress, status.Error())
		}
		logger.Debug("using SOCKS5 proxy", "proxy", cfg.ProxyAddress)
		return &Session{Client: route.HTTPClient(), Route: RouteSOCKS5}, nil

	default:
		return &Session{Client: NewDirectClient(cfg.Timeout), Route: RouteDirect}, nil
	}
}
