package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Retryable(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{InvalidURL, false},
		{InvalidArgument, false},
		{ConnectError, true},
		{WriteError, true},
		{ReadError, true},
		{TimeoutError, true},
		{Canceled, false},
		{Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
		})
	}
}

func TestWrap_CarriesErrno(t *testing.T) {
	err := Wrap(ConnectError, "dial", fmt.Errorf("connect: %w", syscall.ECONNREFUSED))

	assert.Equal(t, int(syscall.ECONNREFUSED), err.Errno)
	assert.Equal(t, int(syscall.ECONNREFUSED), Errno(fmt.Errorf("outer: %w", err)))
	assert.True(t, stderrors.Is(err, syscall.ECONNREFUSED))
	assert.Contains(t, err.Error(), "ConnectError (dial)")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, TimeoutError, KindOf(New(TimeoutError, "read timed out")))
	assert.Equal(t, TimeoutError, KindOf(context.DeadlineExceeded))
	assert.Equal(t, Canceled, KindOf(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.Equal(t, Unknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("call failed: %w", Wrap(WriteError, "write", syscall.EPIPE))

	assert.True(t, stderrors.Is(err, &Error{Kind: WriteError}))
	assert.False(t, stderrors.Is(err, &Error{Kind: ReadError}))
	assert.True(t, IsRetryable(err))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, TimeoutError, FromContext("read", context.DeadlineExceeded).Kind)
	assert.Equal(t, Canceled, FromContext("read", context.Canceled).Kind)
}
