// Package transport moves raw HTTP/1.1 request bytes to a server and brings
// the raw response bytes back.
//
// Three drivers share one contract:
//
//   - socket: a fresh TCP (or TLS) connection per request, read until EOF
//   - stream: the same plus keep-alive connections pooled per endpoint
//   - nethttp: hands the request to net/http and dumps the response back
//
// All drivers go through the same HTTP proxy and CONNECT tunnel handling
// and report failures as typed errors from internal/errors.
package transport

import (
	"context"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ReadChunkSize is the size of each socket read
const ReadChunkSize = 4096

// Driver sends one raw request and returns the raw response
type Driver interface {
	// Name identifies the driver in logs and registries
	Name() string
	// Send writes ex.Raw and returns everything the server answered
	Send(ctx context.Context, ex *Exchange) (*Result, error)
	// Close releases pooled connections, if any
	Close() error
}

// Endpoint is the origin server of a request
type Endpoint struct {
	Host string
	Port int
	TLS  bool
	// ServerName overrides the TLS SNI name; defaults to Host
	ServerName string
}

// Address returns host:port
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) serverName() string {
	if e.ServerName != "" {
		return e.ServerName
	}
	return e.Host
}

// Proxy is an HTTP proxy. Plain requests are forwarded in absolute form,
// TLS requests go through a CONNECT tunnel.
type Proxy struct {
	Host string
	Port int
}

// Address returns host:port
func (p *Proxy) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Exchange is one request handed to a driver
type Exchange struct {
	Endpoint Endpoint
	Method   string
	// URL is the absolute request URL, used by engines that need it
	URL string
	Raw []byte

	Timeout   time.Duration
	SSLVerify bool
	Proxy     *Proxy
	// Persistent asks the driver to keep the connection for reuse
	Persistent bool
}

// Result is the raw outcome of an exchange
type Result struct {
	Raw []byte
	// StatusCode is preset by drivers that already decoded the status
	// line; 0 otherwise
	StatusCode int
	Timing     Timing
	// Reused reports whether a pooled connection carried the request
	Reused bool
}

// Timing holds the phase durations of one exchange
type Timing struct {
	StartTime           time.Time
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// Config holds driver-wide settings
type Config struct {
	Logger logrus.FieldLogger
	// Debug, when set, receives a record of every exchange
	Debug *DebugLog
	// IdleTimeout bounds how long the stream driver keeps a pooled
	// connection; defaults to 90s
	IdleTimeout time.Duration
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// deadline returns the absolute deadline for a phase starting now
func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// Persister is implemented by drivers that can keep connections open
// between requests
type Persister interface {
	SupportsPersistent() bool
}

// SupportsPersistent reports whether d reuses keep-alive connections
func SupportsPersistent(d Driver) bool {
	p, ok := d.(Persister)
	return ok && p.SupportsPersistent()
}
