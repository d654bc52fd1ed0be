package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the Tor proxy is
// available. This is only a connectivity check against the local proxy,
// not a request through Tor, so a short timeout is enough.
const checkProxyTimeout = 2 * time.Second

// Client provides Tor network connectivity.
// It wraps a SOCKS5 dialer and creates HTTP clients that route every
// request through the Tor proxy.
type Client struct {
	// proxyAddress is the Tor SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer for Tor connections.
	// Cached so we don't recreate it for each connection.
	dialer proxy.Dialer

	// timeout is the per-request timeout applied to HTTP clients.
	timeout time.Duration
}

// NewClient creates a new Tor client with the given proxy address and
// per-request timeout.
//
// The proxyAddress must be in "host:port" format (e.g., "127.0.0.1:9050").
// This function validates the address format but does not verify that the
// proxy is actually running; call CheckConnection for that.
//
// Design decision: we don't connect to the proxy in the constructor because
// it separates object creation from network operations and allows testing
// with mock proxies.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// nil auth: Tor's SOCKS port typically doesn't require authentication
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in "host:port" format with
// a usable port number.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	if host == "" {
		return false
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return portNum >= 1 && portNum <= 65535
}

// SOCKS5 protocol constants used by the connection check.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrTypeDom  = 0x03

	// socks5TestOnion is a synthetic .onion address used for SOCKS5
	// verification. It intentionally does not exist - we only need the
	// proxy to respond to a CONNECT request, not to reach anything.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection verifies that the Tor proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check.
//
// The check performs an actual SOCKS5 handshake rather than just opening a
// TCP connection, so that a non-Tor service listening on the proxy port is
// detected before the scan starts.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Version negotiation: offer no-authentication only.
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly.
		return ProxyStatusWrongType
	}

	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	if authResp[1] == socks5AuthNoAccept || authResp[1] != socks5AuthNone {
		// Tor's SOCKS port accepts unauthenticated clients by default.
		return ProxyStatusWrongType
	}

	// Send a CONNECT for a synthetic onion address. The connection itself is
	// expected to fail; what matters is that the proxy processes the request,
	// which proves it actually proxies onion traffic.
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDom,
		byte(len(socks5TestOnion)),
	}
	connectReq = append(connectReq, []byte(socks5TestOnion)...)
	connectReq = append(connectReq, 0x00, 0x50) // port 80

	if _, err := conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	// Any SOCKS5 reply (success or a failure code like host-unreachable)
	// means the proxy handled the request.
	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client configured to use the Tor proxy.
// The returned client routes all requests through Tor's SOCKS5 proxy and
// applies the per-request timeout configured on the Client.
//
// Design decisions:
//   - TLS verification is disabled because onion services use self-signed
//     certificates; the onion address itself authenticates the service
//   - Connection pool limits are small because each connection occupies a
//     Tor circuit, which is a limited resource
//   - Compression is disabled to avoid compression side channels on
//     anonymity-sensitive traffic
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.Dial(network, addr)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Required for .onion services
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		// Limit redirects to prevent loops. Metadata endpoints normally
		// don't redirect, but misconfigured instances sometimes do.
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Timeout returns the per-request timeout applied to HTTP clients.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// MetadataURL builds the metadata endpoint URL for an onion address.
// Onion services are reached over plain HTTP; the Tor circuit provides
// the transport security.
func MetadataURL(onionAddress string) string {
	return "http://" + strings.TrimSuffix(onionAddress, "/") + "/metadata"
}
