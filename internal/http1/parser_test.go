package http1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NotFound(t *testing.T) {
	raw := []byte("HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\n\r\nnope")
	msg := Parse(raw)

	assert.Equal(t, 404, msg.StatusCode)
	assert.Equal(t, "nope", string(msg.Body))
	assert.Equal(t, "text/plain", msg.Header.Get("Content-Type"))
	assert.Equal(t, "1.1", msg.Header.Get(HeaderHTTPVersion))
	assert.Equal(t, "404 Not Found", msg.Header.Get(HeaderStatusMsg))
	assert.Equal(t, "Not Found", msg.Reason)
}

func TestParse_HeaderNamesCanonicalAndLastWins(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\ncontent-type: a\r\nX-DUP: 1\r\nx-dup: 2\r\n\r\n")
	msg := Parse(raw)

	assert.Equal(t, "a", msg.Header.Get("Content-Type"))
	assert.Equal(t, "2", msg.Header.Get("X-Dup"))
	assert.Contains(t, msg.Header.Keys(), "Content-Type")
	assert.Contains(t, msg.Header.Keys(), "X-Dup")
	assert.Empty(t, msg.Body)
}

func TestParse_MultipleBlocksLastWins(t *testing.T) {
	raw := []byte("HTTP/1.1 100 Continue\r\n\r\n" +
		"HTTP/1.0 200 Connection established\r\nProxy-Agent: p\r\n\r\n" +
		"HTTP/1.1 201 Created\r\nLocation: /x\r\n\r\n" +
		"created")
	msg := Parse(raw)

	assert.Equal(t, 201, msg.StatusCode)
	assert.Equal(t, "created", string(msg.Body))
	assert.Equal(t, "/x", msg.Header.Get("Location"))
	assert.False(t, msg.Header.Has("Proxy-Agent"))
	assert.Contains(t, msg.RawHeader, "100 Continue")
	assert.Contains(t, msg.RawHeader, "201 Created")
}

func TestParse_NoReasonPhrase(t *testing.T) {
	msg := Parse([]byte("HTTP/1.1 204\r\n\r\n"))
	assert.Equal(t, 204, msg.StatusCode)
	assert.Equal(t, "204", msg.Status)
	assert.Equal(t, "", msg.Reason)
}

func TestParse_LenientWithoutStatusLine(t *testing.T) {
	raw := []byte("garbage that is not http")
	msg := Parse(raw)

	assert.Equal(t, 0, msg.StatusCode)
	assert.Equal(t, raw, msg.Body)
	assert.Equal(t, 0, msg.Header.Len())
}

func TestParse_Chunked(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6;ext=1\r\n world\r\n0\r\n\r\n")
	msg := Parse(raw)

	assert.Equal(t, "hello world", string(msg.Body))
}

func TestParse_MalformedChunkedKeptRaw(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n")
	msg := Parse(raw)

	assert.Equal(t, "zz\r\n", string(msg.Body))
}

func TestParse_UnterminatedHeaderKeptAsBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"lf only", "HTTP/1.0 200 OK\n\nhello world"},
		{"truncated", "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n"},
		{"status line only", "HTTP/1.1 200 OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse([]byte(tt.raw))
			assert.Equal(t, 0, msg.StatusCode)
			assert.Equal(t, tt.raw, string(msg.Body))
			assert.Equal(t, 0, msg.Header.Len())
		})
	}
}

func TestParse_OversizedChunkDoesNotPanic(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"7fffffffffffffff\r\nabc\r\n0\r\n\r\n")

	var msg *Message
	require.NotPanics(t, func() { msg = Parse(raw) })
	assert.Equal(t, 200, msg.StatusCode)
	assert.Equal(t, "7fffffffffffffff\r\nabc\r\n0\r\n\r\n", string(msg.Body))

	partial := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n7ffffffffffffffe\r\nab")
	require.NotPanics(t, func() {
		done, keepAlive := Complete(partial, false)
		assert.False(t, done)
		assert.False(t, keepAlive)
	})
}

func TestState_ParseIsIdempotent(t *testing.T) {
	var s State
	s.SetRaw([]byte("HTTP/1.1 404 Not Found\r\nA: b\r\n\r\nbody"))

	s.Parse()
	require.True(t, s.Parsed())
	first := *s.Message

	s.Parse()
	assert.Equal(t, 404, s.StatusCode)
	assert.Equal(t, first.Body, s.Body())
	assert.Equal(t, first.Header.Map(), s.Header().Map())
}

func TestState_PresetStatusWins(t *testing.T) {
	var s State
	s.Preset(201)
	s.SetRaw([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	s.Parse()

	assert.Equal(t, 201, s.StatusCode)

	s.Reset()
	assert.Equal(t, 0, s.StatusCode)
	assert.False(t, s.Parsed())
	assert.Nil(t, s.Header())
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		head      bool
		done      bool
		keepAlive bool
	}{
		{"headers incomplete", "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n", false, false, false},
		{"content length short", "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nab", false, false, false},
		{"content length exact", "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nab", false, true, true},
		{"connection close", "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: close\r\n\r\nab", false, true, false},
		{"http 1.0 default close", "HTTP/1.0 200 OK\r\nContent-Length: 2\r\n\r\nab", false, true, false},
		{"chunked complete", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nab\r\n0\r\n\r\n", false, true, true},
		{"chunked partial", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nab\r\n", false, false, false},
		{"head ignores length", "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n", true, true, true},
		{"no content", "HTTP/1.1 204 No Content\r\n\r\n", false, true, true},
		{"interim then final", "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n", false, true, true},
		{"close delimited", "HTTP/1.1 200 OK\r\n\r\nabc", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, keepAlive := Complete([]byte(tt.raw), tt.head)
			assert.Equal(t, tt.done, done)
			assert.Equal(t, tt.keepAlive, keepAlive)
		})
	}
}
