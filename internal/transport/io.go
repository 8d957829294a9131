package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

// watch forces conn's deadlines into the past when ctx ends so blocked
// reads and writes return. The returned func stops watching.
func watch(ctx context.Context, conn net.Conn) func() bool {
	return context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
}

// writeAll writes the whole buffer under a write deadline
func writeAll(ctx context.Context, conn net.Conn, b []byte, timeout time.Duration) error {
	stop := watch(ctx, conn)
	defer stop()

	if err := conn.SetWriteDeadline(deadline(timeout)); err != nil {
		return httperrors.Wrap(httperrors.WriteError, "write", err)
	}
	if _, err := conn.Write(b); err != nil {
		if ctx.Err() != nil {
			return httperrors.FromContext("write", ctx.Err())
		}
		if isTimeout(err) {
			return httperrors.Wrap(httperrors.TimeoutError, "write", err)
		}
		return httperrors.Wrap(httperrors.WriteError, "write", err)
	}
	return nil
}

// readUntil reads ReadChunkSize chunks until EOF or until done reports a
// complete response. Each read gets a fresh deadline of timeout. On a
// timeout the partial bytes are discarded. firstByte, when set, is called
// once with the time the first chunk arrived.
func readUntil(ctx context.Context, conn net.Conn, timeout time.Duration, done func([]byte) bool, firstByte func(time.Time)) ([]byte, error) {
	stop := watch(ctx, conn)
	defer stop()

	var out []byte
	buf := make([]byte, ReadChunkSize)
	for {
		if err := conn.SetReadDeadline(deadline(timeout)); err != nil {
			return nil, httperrors.Wrap(httperrors.ReadError, "read", err)
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if out == nil && firstByte != nil {
				firstByte(time.Now())
			}
			out = append(out, buf[:n]...)
			if done != nil && done(out) {
				return out, nil
			}
		}
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			return out, nil
		case ctx.Err() != nil:
			return nil, httperrors.FromContext("read", ctx.Err())
		case isTimeout(err):
			return nil, httperrors.Wrap(httperrors.TimeoutError, "read", err)
		case len(out) > 0 && errors.Is(err, syscall.ECONNRESET):
			// Peer reset after answering; keep what arrived
			return out, nil
		default:
			return nil, httperrors.Wrap(httperrors.ReadError, "read", err)
		}
	}
}
