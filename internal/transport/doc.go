// Package transport builds the HTTP clients used to fetch images and pages.
//
// Three routes are supported:
//   - direct: a plain client with the per-request timeout
//   - SOCKS5: every connection goes through a user-supplied SOCKS5 proxy
//   - Tor: an embedded Tor daemon is started with tornago and used as the
//     SOCKS5 proxy for the run
//
// Open selects the route from the configuration and returns a Session that
// owns the client and any daemon that must be stopped afterwards.
package transport
