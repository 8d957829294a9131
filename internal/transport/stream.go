package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/http1"
)

// DefaultIdleTimeout is how long an unused pooled connection is kept
const DefaultIdleTimeout = 90 * time.Second

// StreamDriver is a generic stream transport. Besides what the socket
// driver does it keeps persistent connections in an idle pool keyed by
// endpoint, so keep-alive requests skip the dial.
type StreamDriver struct {
	cfg  Config
	mu   sync.Mutex
	idle *cache.Cache
}

type pooledConn struct {
	net.Conn
	leased atomic.Bool
}

// NewStreamDriver creates a stream driver with an empty idle pool
func NewStreamDriver(cfg Config) *StreamDriver {
	ttl := cfg.IdleTimeout
	if ttl <= 0 {
		ttl = DefaultIdleTimeout
	}
	idle := cache.New(ttl, ttl/2)
	// Expired or flushed idle connections are closed unless taken
	idle.OnEvicted(func(_ string, v interface{}) {
		if pc, ok := v.(*pooledConn); ok && !pc.leased.Load() {
			pc.Conn.Close()
		}
	})
	return &StreamDriver{cfg: cfg, idle: idle}
}

// SupportsPersistent reports that keep-alive connections are reused
func (d *StreamDriver) SupportsPersistent() bool {
	return true
}

// Name returns "stream"
func (d *StreamDriver) Name() string {
	return "stream"
}

// Send writes the request on a pooled or fresh connection. Persistent
// exchanges read only up to the end of the framed response and hand the
// connection back to the pool when the server allows it.
func (d *StreamDriver) Send(ctx context.Context, ex *Exchange) (res *Result, err error) {
	start := time.Now()
	defer func() {
		record(d.cfg.Debug, d.Name(), ex, res, start, err)
	}()

	if ex.Persistent {
		if pc := d.take(poolKey(ex)); pc != nil {
			var started bool
			res, started, err = d.exchange(ctx, ex, pc, start)
			if err == nil {
				return res, nil
			}
			if !redialable(ex.Method, err, started) {
				return nil, err
			}
			// The server may have dropped an idle connection we still held
			d.cfg.logger().WithError(err).Debug("pooled connection failed, redialing")
		}
	}

	res = &Result{Timing: Timing{StartTime: start}}
	conn, err := dial(ctx, ex, &res.Timing)
	if err != nil {
		return nil, err
	}
	pc := &pooledConn{Conn: conn}
	pc.leased.Store(true)
	timing := res.Timing

	res, _, err = d.exchange(ctx, ex, pc, start)
	if res != nil {
		res.Reused = false
		res.Timing.DNSLookupTime = timing.DNSLookupTime
		res.Timing.TCPConnectTime = timing.TCPConnectTime
		res.Timing.TLSHandshakeTime = timing.TLSHandshakeTime
	}
	return res, err
}

// redialable reports whether a request that failed on a pooled connection
// may be sent again on a fresh one. Once response bytes have arrived the
// server has seen the request, so only idempotent methods are resent.
func redialable(method string, err error, started bool) bool {
	switch httperrors.KindOf(err) {
	case httperrors.Canceled, httperrors.TimeoutError:
		return false
	}
	if !started {
		return true
	}
	return http1.Method(strings.ToUpper(method)).Idempotent()
}

// exchange runs one request on pc. pc is either returned to the pool or
// closed before exchange returns. started reports whether any response
// bytes were read.
func (d *StreamDriver) exchange(ctx context.Context, ex *Exchange, pc *pooledConn, start time.Time) (res *Result, started bool, err error) {
	keep := false
	defer func() {
		if !keep {
			pc.Conn.Close()
		}
	}()

	res = &Result{Timing: Timing{StartTime: start}, Reused: true}
	if err := writeAll(ctx, pc, ex.Raw, ex.Timeout); err != nil {
		return nil, false, err
	}

	var done func([]byte) bool
	alive := false
	if ex.Persistent {
		head := strings.EqualFold(ex.Method, string(http1.MethodHead))
		done = func(b []byte) bool {
			complete, keepAlive := http1.Complete(b, head)
			alive = keepAlive
			return complete
		}
	}

	written := time.Now()
	var first time.Time
	raw, err := readUntil(ctx, pc, ex.Timeout, done, func(t time.Time) {
		first = t
		res.Timing.TimeToFirstByte = t.Sub(written)
	})
	started = !first.IsZero()
	if err != nil {
		return nil, started, err
	}
	if len(raw) == 0 {
		return nil, false, httperrors.New(httperrors.ReadError, "connection closed before a response arrived")
	}

	if !first.IsZero() {
		res.Timing.ContentTransferTime = time.Since(first)
	}
	res.Timing.TotalTime = time.Since(start)
	res.Raw = raw

	if ex.Persistent && alive {
		keep = d.release(poolKey(ex), pc)
	}
	return res, true, nil
}

func (d *StreamDriver) take(key string) *pooledConn {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.idle.Get(key)
	if !ok {
		return nil
	}
	pc := v.(*pooledConn)
	pc.leased.Store(true)
	d.idle.Delete(key)
	return pc
}

// release parks pc in the pool. It reports false when the slot is taken,
// leaving pc for the caller to close.
func (d *StreamDriver) release(key string, pc *pooledConn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_ = pc.Conn.SetDeadline(time.Time{})
	pc.leased.Store(false)
	if err := d.idle.Add(key, pc, cache.DefaultExpiration); err != nil {
		pc.leased.Store(true)
		return false
	}
	return true
}

// Idle returns the number of pooled connections
func (d *StreamDriver) Idle() int {
	return d.idle.ItemCount()
}

// Close closes every pooled connection
func (d *StreamDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.idle.Items() {
		// Delete fires OnEvicted, which closes the connection
		d.idle.Delete(key)
	}
	return nil
}

func poolKey(ex *Exchange) string {
	proxy := ""
	if ex.Proxy != nil {
		proxy = ex.Proxy.Address()
	}
	return fmt.Sprintf("%s|tls=%t|verify=%t|proxy=%s", ex.Endpoint.Address(), ex.Endpoint.TLS, ex.SSLVerify, proxy)
}
