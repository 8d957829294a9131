package http

import (
	"time"

	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// Defaults applied to every client
const (
	DefaultTimeout   = 5 * time.Second
	DefaultRetry     = 3
	DefaultUserAgent = "sockhttp/1.0"
)

// Proxy is an HTTP proxy host and port
type Proxy = transport.Proxy

// AuthScheme selects how credentials are sent
type AuthScheme string

// Supported authentication schemes
const (
	AuthBasic  AuthScheme = "basic"
	AuthDigest AuthScheme = "digest"
)

// Auth holds request credentials
type Auth struct {
	User     string
	Password string
	Scheme   AuthScheme
}

// Options is the typed option set of a request. Values merge with the
// precedence defaults < client < call; every call works on its own copy.
type Options struct {
	// Method used when a call does not name one
	Method string
	// BaseURL is prepended to relative request URLs
	BaseURL string
	// Timeout bounds the connect phase and each read
	Timeout time.Duration
	// Retry is the number of extra attempts after a retryable failure
	Retry int
	// RetryDelay is the pause between attempts
	RetryDelay time.Duration
	// RetryNonIdempotent also retries POST and PATCH after the request
	// may have reached the server
	RetryNonIdempotent bool
	SSLVerify          bool
	// Headers is the options header layer, between client headers and
	// call headers
	Headers map[string]string
	Cookies map[string]string
	Proxy   *Proxy
	Auth    *Auth
	// Persistent keeps connections open for reuse on drivers that pool
	Persistent bool
	Debug      bool
	// FollowRedirects is the maximum number of redirects to follow;
	// 0 returns 3xx responses as they are
	FollowRedirects int
	UserAgent       string
	// Extra keeps unrecognized settings, e.g. from config files
	Extra map[string]interface{}
}

// DefaultOptions returns the built-in defaults
func DefaultOptions() Options {
	return Options{
		Method:    "GET",
		Timeout:   DefaultTimeout,
		Retry:     DefaultRetry,
		UserAgent: DefaultUserAgent,
	}
}

// Clone returns a deep copy
func (o Options) Clone() Options {
	out := o
	out.Headers = cloneStrings(o.Headers)
	out.Cookies = cloneStrings(o.Cookies)
	if o.Proxy != nil {
		p := *o.Proxy
		out.Proxy = &p
	}
	if o.Auth != nil {
		a := *o.Auth
		out.Auth = &a
	}
	if o.Extra != nil {
		out.Extra = make(map[string]interface{}, len(o.Extra))
		for k, v := range o.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RequestOption adjusts the options of a single call
type RequestOption func(*Options)

// RequestTimeout overrides the timeout for one call
func RequestTimeout(timeout time.Duration) RequestOption {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// RequestRetry overrides the retry count for one call
func RequestRetry(retry int) RequestOption {
	return func(o *Options) {
		o.Retry = retry
	}
}

// RequestRetryNonIdempotent allows retrying non-idempotent methods
func RequestRetryNonIdempotent(enabled bool) RequestOption {
	return func(o *Options) {
		o.RetryNonIdempotent = enabled
	}
}

// RequestHeaders merges headers into the options header layer
func RequestHeaders(headers map[string]string) RequestOption {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// RequestCookie adds a cookie for one call
func RequestCookie(name, value string) RequestOption {
	return func(o *Options) {
		if o.Cookies == nil {
			o.Cookies = make(map[string]string)
		}
		o.Cookies[name] = value
	}
}

// RequestProxy routes one call through an HTTP proxy
func RequestProxy(host string, port int) RequestOption {
	return func(o *Options) {
		o.Proxy = &Proxy{Host: host, Port: port}
	}
}

// RequestAuth sets credentials for one call
func RequestAuth(user, password string, scheme AuthScheme) RequestOption {
	return func(o *Options) {
		o.Auth = &Auth{User: user, Password: password, Scheme: scheme}
	}
}

// RequestPersistent toggles connection reuse for one call
func RequestPersistent(enabled bool) RequestOption {
	return func(o *Options) {
		o.Persistent = enabled
	}
}

// RequestFollowRedirects sets the redirect limit for one call
func RequestFollowRedirects(max int) RequestOption {
	return func(o *Options) {
		o.FollowRedirects = max
	}
}

// RequestSSLVerify toggles certificate verification for one call
func RequestSSLVerify(enabled bool) RequestOption {
	return func(o *Options) {
		o.SSLVerify = enabled
	}
}

// RequestExtra stores an unrecognized setting
func RequestExtra(key string, value interface{}) RequestOption {
	return func(o *Options) {
		if o.Extra == nil {
			o.Extra = make(map[string]interface{})
		}
		o.Extra[key] = value
	}
}
