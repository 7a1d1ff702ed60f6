package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/imgfetcher/internal/config"
)

// checkProxyTimeout bounds the proxy probe. It is a local handshake, not a
// request to a remote host, so it is short.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5ProbeHost is a reserved name that never resolves. The probe only
	// needs the proxy to answer the CONNECT request, not to succeed.
	socks5ProbeHost = "imgfetcher-probe.invalid"
)

// SOCKS5 routes connections through a SOCKS5 proxy.
type SOCKS5 struct {
	// proxyAddress is the proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer, created once.
	dialer proxy.Dialer

	// timeout is the request timeout of the HTTP clients created.
	timeout time.Duration
}

// NewSOCKS5 creates a SOCKS5 route through proxyAddress.
//
// The address is validated but not contacted; call CheckConnection to verify
// that a proxy is listening.
func NewSOCKS5(proxyAddress string, timeout time.Duration) (*SOCKS5, error) {
	if !config.IsValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// nil auth: local SOCKS proxies and Tor accept unauthenticated clients.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &SOCKS5{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// ProxyAddress returns the configured proxy address.
func (s *SOCKS5) ProxyAddress() string {
	return s.proxyAddress
}

// CheckConnection verifies that a SOCKS5 proxy is listening at the address.
//
// The probe negotiates the no-authentication method and sends a CONNECT
// request for a name that cannot resolve. Any well-formed SOCKS5 reply,
// including a failure code, counts as a working proxy.
func (s *SOCKS5) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Method negotiation: version, one method, no authentication.
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if authResp[0] != socks5Version || authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	// CONNECT request: version, command, reserved, address type, address, port.
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00,
		socks5AddrTypeDomID,
		byte(len(socks5ProbeHost)),
	}
	connectReq = append(connectReq, []byte(socks5ProbeHost)...)
	connectReq = append(connectReq, 0x00, 80)

	if _, err := conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// DialContext establishes a connection through the proxy.
func (s *SOCKS5) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := s.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := s.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HTTPClient returns a client whose connections all go through the proxy.
// Host names are resolved by the proxy.
func (s *SOCKS5) HTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:         s.DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       s.timeout,
		CheckRedirect: limitRedirects,
	}
}
