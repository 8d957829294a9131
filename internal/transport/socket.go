package transport

import (
	"context"
	"runtime"
	"time"
)

// SocketDriver opens a new connection for every request and reads the
// response until the server closes it.
type SocketDriver struct {
	cfg Config
}

// NewSocketDriver creates a socket driver
func NewSocketDriver(cfg Config) *SocketDriver {
	return &SocketDriver{cfg: cfg}
}

// SocketAvailable reports whether the platform offers TCP sockets
func SocketAvailable() bool {
	return runtime.GOOS != "js" && runtime.GOOS != "wasip1"
}

// Name returns "socket"
func (d *SocketDriver) Name() string {
	return "socket"
}

// Send dials, writes the request and reads until EOF. The connection is
// closed on every path.
func (d *SocketDriver) Send(ctx context.Context, ex *Exchange) (res *Result, err error) {
	start := time.Now()
	res = &Result{Timing: Timing{StartTime: start}}
	defer func() {
		record(d.cfg.Debug, d.Name(), ex, res, start, err)
	}()

	conn, err := dial(ctx, ex, &res.Timing)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	d.cfg.logger().WithField("address", ex.Endpoint.Address()).Debug("socket connected")

	if err = writeAll(ctx, conn, ex.Raw, ex.Timeout); err != nil {
		return nil, err
	}

	written := time.Now()
	var first time.Time
	raw, err := readUntil(ctx, conn, ex.Timeout, nil, func(t time.Time) {
		first = t
		res.Timing.TimeToFirstByte = t.Sub(written)
	})
	if err != nil {
		return nil, err
	}

	if !first.IsZero() {
		res.Timing.ContentTransferTime = time.Since(first)
	}
	res.Timing.TotalTime = time.Since(start)
	res.Raw = raw
	return res, nil
}

// Close is a no-op; the socket driver keeps no connections
func (d *SocketDriver) Close() error {
	return nil
}
