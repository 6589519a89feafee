package ddns

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// NewHTTPClient returns a pooled client whose every request is bounded by timeout.
// Requests made with it are never retried.
func NewHTTPClient(timeout time.Duration) *http.Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	return hc
}

// newIPv4Client is like NewHTTPClient but only dials over IPv4,
// so that IP echo services report the v4 address even on dual-stack hosts.
func newIPv4Client(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp4", addr)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
