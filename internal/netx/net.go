package netx

import (
	"context"
	"net"
	"net/url"
	"time"
)

const probeTimeout = 3 * time.Second

// Checker reports whether the backend looks reachable. Implementations must
// be cheap enough to call before every sync attempt.
type Checker interface {
	IsReachable(ctx context.Context) bool
}

// DialChecker probes reachability with a TCP dial to the endpoint host.
// A successful dial does not guarantee the API is healthy, only that the
// network path exists; the sync run itself surfaces deeper failures.
type DialChecker struct {
	addr   string
	dialer *net.Dialer
}

// NewDialChecker derives the probe address from an endpoint URL, filling in
// the default port for the scheme when the URL carries none.
func NewDialChecker(endpointURL string) (*DialChecker, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, err
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	return &DialChecker{
		addr:   net.JoinHostPort(host, port),
		dialer: &net.Dialer{Timeout: probeTimeout},
	}, nil
}

func (c *DialChecker) IsReachable(ctx context.Context) bool {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
