package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

// NetHTTPDriver delegates framing to net/http. It parses the raw request
// back into an *http.Request, sends it and serializes the response to raw
// bytes again, so callers see the same wire format as from the socket
// drivers.
type NetHTTPDriver struct {
	cfg Config

	mu         sync.Mutex
	transports map[string]*http.Transport
}

// NewNetHTTPDriver creates a net/http backed driver
func NewNetHTTPDriver(cfg Config) *NetHTTPDriver {
	return &NetHTTPDriver{cfg: cfg, transports: make(map[string]*http.Transport)}
}

// SupportsPersistent reports that keep-alive connections are reused
func (d *NetHTTPDriver) SupportsPersistent() bool {
	return true
}

// Name returns "nethttp"
func (d *NetHTTPDriver) Name() string {
	return "nethttp"
}

// Send executes the request with detailed timing information
func (d *NetHTTPDriver) Send(ctx context.Context, ex *Exchange) (res *Result, err error) {
	start := time.Now()
	defer func() {
		record(d.cfg.Debug, d.Name(), ex, res, start, err)
	}()

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(ex.Raw)))
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidArgument, "read request", err)
	}
	target, err := url.Parse(ex.URL)
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidURL, "parse", err)
	}
	req.URL = target
	req.RequestURI = ""
	req.Close = !ex.Persistent

	if ex.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ex.Timeout)
		defer cancel()
	}

	res = &Result{Timing: Timing{StartTime: start}}
	timing := &res.Timing

	var dnsStart, connectStart, tlsStart time.Time
	lastPhaseEnd := start
	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			lastPhaseEnd = time.Now()
			timing.DNSLookupTime = lastPhaseEnd.Sub(dnsStart)
		},
		ConnectStart: func(string, string) {
			connectStart = time.Now()
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TCPConnectTime = lastPhaseEnd.Sub(connectStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TLSHandshakeTime = lastPhaseEnd.Sub(tlsStart)
			}
		},
		GotConn: func(info httptrace.GotConnInfo) {
			res.Reused = info.Reused
		},
		GotFirstResponseByte: func() {
			// Measured from the end of the last completed phase
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(ctx, trace))

	client := &http.Client{
		Transport: d.transport(ex),
		// Redirects are the caller's decision
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyClientError(ctx, err)
	}
	defer resp.Body.Close()

	transferStart := time.Now()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyClientError(ctx, err)
	}
	timing.ContentTransferTime = time.Since(transferStart)
	timing.TotalTime = time.Since(start)

	// Dump with the decoded body and explicit length
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.TransferEncoding = nil
	resp.Header.Del("Transfer-Encoding")
	raw, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, httperrors.Wrap(httperrors.ReadError, "dump response", err)
	}

	res.Raw = raw
	res.StatusCode = resp.StatusCode
	return res, nil
}

// transport returns a cached *http.Transport for the exchange settings
func (d *NetHTTPDriver) transport(ex *Exchange) *http.Transport {
	key := fmt.Sprintf("verify=%t", ex.SSLVerify)
	if ex.Proxy != nil {
		key += "|proxy=" + ex.Proxy.Address()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.transports[key]; ok {
		return t
	}

	t := &http.Transport{
		TLSClientConfig:    &tls.Config{InsecureSkipVerify: !ex.SSLVerify}, //nolint:gosec // verification is opt-in
		DisableCompression: true,
		IdleConnTimeout:    DefaultIdleTimeout,
	}
	if d.cfg.IdleTimeout > 0 {
		t.IdleConnTimeout = d.cfg.IdleTimeout
	}
	if ex.Proxy != nil {
		t.Proxy = http.ProxyURL(&url.URL{Scheme: "http", Host: ex.Proxy.Address()})
	}
	d.transports[key] = t
	return t
}

// Close drops idle net/http connections
func (d *NetHTTPDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.transports {
		t.CloseIdleConnections()
	}
	return nil
}

func classifyClientError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return httperrors.FromContext("do", ctx.Err())
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return classifyDialError(ctx, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return httperrors.Wrap(httperrors.ConnectError, "resolve", err)
	}
	if isTimeout(err) {
		return httperrors.Wrap(httperrors.TimeoutError, "do", err)
	}
	return httperrors.Wrap(httperrors.ReadError, "do", err)
}
