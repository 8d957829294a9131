package http

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wesleyorama2/sockhttp/internal/body"
	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
	"github.com/wesleyorama2/sockhttp/internal/http1"
	"github.com/wesleyorama2/sockhttp/internal/target"
	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// call is one request as handed to the client, before option merging
type call struct {
	method  string
	url     string
	query   url.Values
	data    interface{}
	headers map[string]string
}

// prepared is a call turned into wire bytes
type prepared struct {
	method http1.Method
	target *target.Target
	header *header.Header
	raw    []byte
}

// prepare resolves the target, merges headers, encodes data and builds
// the raw request. It performs no I/O.
func (c *Client) prepare(in call, opts Options) (*prepared, error) {
	method, err := http1.ParseMethod(in.method)
	if err != nil {
		return nil, err
	}
	if method == http1.MethodConnect {
		return nil, httperrors.New(httperrors.InvalidArgument, "CONNECT is reserved for proxy tunnels")
	}

	t, err := target.Resolve(opts.BaseURL, in.url)
	if err != nil {
		return nil, err
	}
	if len(in.query) > 0 {
		t = t.WithQuery(in.query.Encode())
	}

	clientLayer := c.headers.Clone()
	if opts.UserAgent != "" {
		clientLayer.Add("User-Agent", opts.UserAgent)
	}
	optionLayer := header.FromMap(opts.Headers)
	if opts.Persistent && transport.SupportsPersistent(c.driver) {
		optionLayer.Add("Connection", "keep-alive")
	}
	cookies := c.cookies.Clone()
	cookies.SetAll(opts.Cookies)

	h := header.Normalize(header.Layers{
		Client:  clientLayer,
		Options: optionLayer,
		Call:    header.FromMap(in.headers),
		Cookies: cookies,
	}, t.HostHeader())

	if opts.Auth != nil && opts.Auth.Scheme != AuthDigest {
		h.Add("Authorization", basicAuthorization(opts.Auth.User, opts.Auth.Password))
	}

	payload := ""
	if !body.IsEmpty(in.data) {
		if method.AllowsBody() {
			payload, err = body.Encode(h, in.data)
		} else {
			var query string
			query, err = body.Query(in.data)
			t = t.WithQuery(query)
		}
		if err != nil {
			return nil, err
		}
	}

	// Plain requests through a proxy carry the absolute URL
	uri := t.RequestURI()
	if opts.Proxy != nil && !t.TLS() {
		uri = t.String()
	}

	raw, err := http1.BuildRequest(method, uri, h, payload)
	if err != nil {
		return nil, err
	}
	return &prepared{method: method, target: t, header: h, raw: raw}, nil
}

// run prepares and sends a call, then answers digest challenges and
// follows redirects as configured.
func (c *Client) run(ctx context.Context, in call, opts Options) (*Response, error) {
	digestSent := false
	redirects := 0
	for {
		c.state = StateBuilding
		p, err := c.prepare(in, opts)
		if err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		resp.Redirects = redirects

		// Digest auth needs the server nonce, so the first attempt is
		// expected to come back 401
		if resp.StatusCode == 401 && !digestSent && opts.Auth != nil && opts.Auth.Scheme == AuthDigest {
			if challenge, ok := parseDigestChallenge(resp.GetHeader("WWW-Authenticate")); ok {
				digestSent = true
				in.headers = withHeader(in.headers, "Authorization",
					challenge.authorization(opts.Auth.User, opts.Auth.Password, string(p.method), p.target.RequestURI()))
				continue
			}
		}

		location := resp.GetHeader("Location")
		if !resp.IsRedirect() || location == "" || redirects >= opts.FollowRedirects {
			return resp, nil
		}
		next, err := p.target.ResolveReference(location)
		if err != nil {
			return nil, err
		}
		redirects++
		c.logger.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"location": next.String(),
		}).Debug("following redirect")

		in.url = next.String()
		in.query = nil
		switch resp.StatusCode {
		case 301, 302, 303:
			if p.method != http1.MethodHead {
				in.method = string(http1.MethodGet)
			}
			in.data = nil
			in.headers = withoutHeader(in.headers, "Content-Type", "Content-Length")
		}
		// A fresh challenge may be needed for the new location
		digestSent = false
		in.headers = withoutHeader(in.headers, "Authorization")
	}
}

// send runs the retry loop for one prepared request and parses the
// response.
func (c *Client) send(ctx context.Context, p *prepared, opts Options) (*Response, error) {
	ex := &transport.Exchange{
		Endpoint: transport.Endpoint{
			Host: p.target.Host,
			Port: p.target.Port,
			TLS:  p.target.TLS(),
		},
		Method:     string(p.method),
		URL:        p.target.String(),
		Raw:        p.raw,
		Timeout:    opts.Timeout,
		SSLVerify:  opts.SSLVerify,
		Proxy:      opts.Proxy,
		Persistent: opts.Persistent,
	}

	method, host := string(p.method), p.target.Host
	log := c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    ex.URL,
		"driver": c.driverName,
	})

	attempts := 1 + opts.Retry
	if attempts < 1 {
		attempts = 1
	}

	var res *transport.Result
	attempt := 0
	for {
		attempt++
		c.state = StateSending
		c.metrics.IncRequests(method, host)

		var err error
		res, err = c.driver.Send(ctx, ex)
		if err == nil {
			break
		}

		kind := httperrors.KindOf(err)
		c.metrics.IncFailures(method, host, kind.String())
		if attempt >= attempts || !shouldRetry(err, p.method, opts) {
			log.WithError(err).WithField("attempts", attempt).Warn("request failed")
			return nil, err
		}

		log.WithError(err).WithField("attempt", attempt).Debug("retrying request")
		c.metrics.IncRetries(method, host, attempt)
		if err := sleep(ctx, opts.RetryDelay); err != nil {
			return nil, httperrors.FromContext("retry", err)
		}
	}

	c.state = StateParsing
	var state http1.State
	if res.StatusCode != 0 {
		state.Preset(res.StatusCode)
	}
	state.SetRaw(res.Raw)
	state.Parse()

	if res.Timing.TotalTime == 0 {
		res.Timing.TotalTime = time.Since(res.Timing.StartTime)
	}
	resp := newResponse(&state, res.Timing)
	resp.Method = method
	resp.URL = ex.URL
	resp.Driver = c.driverName
	resp.Attempts = attempt

	c.metrics.ObserveLatency(method, host, resp.StatusCode, res.Timing.TotalTime)
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"attempts": attempt,
		"duration": res.Timing.TotalTime,
	}).Debug("request completed")
	return resp, nil
}

// shouldRetry decides whether a failed attempt may be repeated. Connect
// failures are always safe because nothing reached the server. Later
// failures are retried only for idempotent methods unless configured.
func shouldRetry(err error, method http1.Method, opts Options) bool {
	kind := httperrors.KindOf(err)
	if !kind.Retryable() {
		return false
	}
	if kind == httperrors.ConnectError {
		return true
	}
	return method.Idempotent() || opts.RetryNonIdempotent
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func withHeader(headers map[string]string, name, value string) map[string]string {
	out := withoutHeader(headers, name)
	out[name] = value
	return out
}

// withoutHeader copies headers without the named fields, matching names
// case-insensitively
func withoutHeader(headers map[string]string, names ...string) map[string]string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[header.CanonicalKey(n)] = true
	}
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if !drop[header.CanonicalKey(k)] {
			out[k] = v
		}
	}
	return out
}
