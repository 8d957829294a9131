// Package target resolves request URLs against a base URL and splits them
// into the pieces a raw socket transport needs.
package target

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

var absolutePattern = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.\-]*:)?//`)

// defaultPorts maps supported schemes to their well-known port
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
}

// Target is a fully resolved request destination
type Target struct {
	Scheme string
	Host   string
	Port   int
	Path   string
	Query  string
}

// IsAbsolute reports whether raw carries a scheme or is protocol-relative
func IsAbsolute(raw string) bool {
	return absolutePattern.MatchString(raw)
}

// Join concatenates base and path with exactly one slash between them
func Join(base, path string) string {
	if path == "" {
		return base
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Resolve joins raw onto base when raw is relative and parses the result.
// The result must be absolute with a supported scheme and a host.
// Surrounding whitespace in raw is ignored.
func Resolve(base, raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	full := raw
	if !IsAbsolute(raw) {
		if base == "" {
			return nil, httperrors.New(httperrors.InvalidURL, "invalid request url %q: relative url without a base url", raw)
		}
		full = Join(base, raw)
	}

	if !IsAbsolute(full) {
		return nil, httperrors.New(httperrors.InvalidURL, "invalid request url %q", full)
	}
	if strings.HasPrefix(full, "//") {
		full = "http:" + full
	}

	u, err := url.Parse(full)
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidURL, "parse", err)
	}
	return FromURL(u)
}

// FromURL converts an already parsed absolute URL into a Target
func FromURL(u *url.URL) (*Target, error) {
	scheme := strings.ToLower(u.Scheme)
	defaultPort, ok := defaultPorts[scheme]
	if !ok {
		return nil, httperrors.New(httperrors.InvalidURL, "unsupported url scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, httperrors.New(httperrors.InvalidURL, "invalid request url %q: missing host", u.String())
	}

	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, httperrors.New(httperrors.InvalidURL, "invalid port %q", p)
		}
		port = n
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return &Target{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   path,
		Query:  u.RawQuery,
	}, nil
}

// TLS reports whether the connection must be wrapped in TLS
func (t *Target) TLS() bool {
	return t.Scheme == "https" || t.Scheme == "wss"
}

// Address returns host:port for dialing
func (t *Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// HostHeader returns the value for the Host header. The port is omitted
// when it is the scheme default.
func (t *Target) HostHeader() string {
	if t.Port == defaultPorts[t.Scheme] {
		if strings.Contains(t.Host, ":") {
			return "[" + t.Host + "]"
		}
		return t.Host
	}
	return t.Address()
}

// RequestURI returns the origin-form request target: path plus query
func (t *Target) RequestURI() string {
	if t.Query == "" {
		return t.Path
	}
	return t.Path + "?" + t.Query
}

// String returns the absolute URL
func (t *Target) String() string {
	return t.Scheme + "://" + t.HostHeader() + t.RequestURI()
}

// WithQuery returns a copy with an encoded query string appended,
// joined with "&" when a query is already present.
func (t *Target) WithQuery(encoded string) *Target {
	out := *t
	encoded = strings.TrimLeft(encoded, "?&")
	if encoded == "" {
		return &out
	}
	if out.Query == "" {
		out.Query = encoded
	} else {
		out.Query = out.Query + "&" + encoded
	}
	return &out
}

// ResolveReference resolves a Location header value against t
func (t *Target) ResolveReference(location string) (*Target, error) {
	base, err := url.Parse(t.String())
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidURL, "parse", err)
	}
	ref, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidURL, "parse", err)
	}
	return FromURL(base.ResolveReference(ref))
}
