package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/http1"
)

// dial opens a connection for ex: directly or through its proxy, wrapped
// in TLS when the endpoint requires it. Phase durations are written to
// timing.
func dial(ctx context.Context, ex *Exchange, timing *Timing) (net.Conn, error) {
	host, port := ex.Endpoint.Host, ex.Endpoint.Port
	if ex.Proxy != nil {
		host, port = ex.Proxy.Host, ex.Proxy.Port
	}

	conn, err := dialTCP(ctx, host, port, ex.Timeout, timing)
	if err != nil {
		return nil, err
	}

	if ex.Proxy != nil && ex.Endpoint.TLS {
		if err := tunnel(ctx, conn, ex); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if !ex.Endpoint.TLS {
		return conn, nil
	}

	tlsStart := time.Now()
	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         ex.Endpoint.serverName(),
		InsecureSkipVerify: !ex.SSLVerify, //nolint:gosec // verification is opt-in
	})
	hsCtx := ctx
	if ex.Timeout > 0 {
		var cancel context.CancelFunc
		hsCtx, cancel = context.WithTimeout(ctx, ex.Timeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, httperrors.FromContext("tls handshake", ctx.Err())
		}
		if isTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return nil, httperrors.Wrap(httperrors.TimeoutError, "tls handshake", err)
		}
		return nil, httperrors.Wrap(httperrors.ConnectError, "tls handshake", err)
	}
	timing.TLSHandshakeTime = time.Since(tlsStart)
	return tlsConn, nil
}

// dialTCP resolves host and connects to the first address that accepts
func dialTCP(ctx context.Context, host string, port int, timeout time.Duration, timing *Timing) (net.Conn, error) {
	addrs := []string{host}
	if net.ParseIP(host) == nil {
		dnsStart := time.Now()
		resolveCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			resolveCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resolved, err := net.DefaultResolver.LookupHost(resolveCtx, host)
		if err != nil {
			if ctx.Err() != nil {
				return nil, httperrors.FromContext("resolve", ctx.Err())
			}
			return nil, httperrors.Wrap(httperrors.ConnectError, "resolve", err)
		}
		timing.DNSLookupTime = time.Since(dnsStart)
		addrs = resolved
	}

	dialer := &net.Dialer{Timeout: timeout}
	connectStart := time.Now()

	var lastErr error
	for _, addr := range addrs {
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
		if err != nil {
			lastErr = err
			continue
		}
		// Disable Nagle's algorithm; requests are written in one piece
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}
		timing.TCPConnectTime = time.Since(connectStart)
		return conn, nil
	}
	return nil, classifyDialError(ctx, lastErr)
}

func classifyDialError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return httperrors.FromContext("dial", ctx.Err())
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return httperrors.Wrap(httperrors.ConnectError, "resolve", err)
	}
	if isTimeout(err) {
		return httperrors.Wrap(httperrors.TimeoutError, "dial", err)
	}
	// Refused, unreachable and reset all land here; Wrap keeps the errno
	return httperrors.Wrap(httperrors.ConnectError, "dial", err)
}

// tunnel asks the proxy on conn to open a CONNECT tunnel to the endpoint
func tunnel(ctx context.Context, conn net.Conn, ex *Exchange) error {
	target := ex.Endpoint.Address()
	req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", target, target)

	if err := writeAll(ctx, conn, []byte(req), ex.Timeout); err != nil {
		return err
	}
	raw, err := readUntil(ctx, conn, ex.Timeout, func(b []byte) bool {
		return bytes.Contains(b, []byte("\r\n\r\n"))
	}, nil)
	if err != nil {
		return err
	}

	msg := http1.Parse(raw)
	if msg.StatusCode < 200 || msg.StatusCode > 299 {
		return httperrors.New(httperrors.ConnectError, "proxy %s refused tunnel to %s: %s", ex.Proxy.Address(), target, msg.Status)
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
