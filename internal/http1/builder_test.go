package http1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
)

func TestBuildRequest_Get(t *testing.T) {
	h := header.New()
	h.Set("Host", "httpbin.org")
	h.Set("Connection", "close")

	raw, err := BuildRequest(MethodGet, "/get", h, "")
	require.NoError(t, err)

	assert.Equal(t, "GET /get HTTP/1.1\r\nHost: httpbin.org\r\nConnection: close\r\n\r\n", string(raw))
}

func TestBuildRequest_PostBody(t *testing.T) {
	h := header.New()
	h.Set("Host", "httpbin.org")
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Content-Length", "26")
	h.Set("Connection", "close")

	raw, err := BuildRequest(MethodPost, "/post", h, "var1=some+content&var2=doh")
	require.NoError(t, err)

	expected := "POST /post HTTP/1.1\r\n" +
		"Host: httpbin.org\r\n" +
		"Content-Type: application/x-www-form-urlencoded\r\n" +
		"Content-Length: 26\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"var1=some+content&var2=doh"
	assert.Equal(t, expected, string(raw))
}

func TestBuildRequest_NoImplicitContentLength(t *testing.T) {
	raw, err := BuildRequest(MethodDelete, "/x", header.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "DELETE /x HTTP/1.1\r\n\r\n", string(raw))
}

func TestBuildRequest_StripsControlBytes(t *testing.T) {
	h := header.New()
	h.Set("X-Injected", "a\r\nEvil: 1")

	raw, err := BuildRequest(MethodGet, "/", h, "")
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\nX-Injected: aEvil: 1\r\n\r\n", string(raw))
}

func TestBuildRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		method Method
		uri    string
	}{
		{"unknown method", Method("BREW"), "/"},
		{"empty target", MethodGet, ""},
		{"target with space", MethodGet, "/a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRequest(tt.method, tt.uri, header.New(), "")
			require.Error(t, err)
			assert.Equal(t, httperrors.InvalidArgument, httperrors.KindOf(err))
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("patch")
	require.NoError(t, err)
	assert.Equal(t, MethodPatch, m)

	_, err = ParseMethod("FETCH")
	assert.Equal(t, httperrors.InvalidArgument, httperrors.KindOf(err))
}

func TestMethod_AllowsBody(t *testing.T) {
	withBody := map[Method]bool{MethodPost: true, MethodPut: true, MethodPatch: true}
	for _, m := range []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions, MethodTrace, MethodSearch, MethodConnect} {
		assert.Equal(t, withBody[m], m.AllowsBody(), m.String())
	}
}

func TestMethod_Idempotent(t *testing.T) {
	assert.True(t, MethodGet.Idempotent())
	assert.True(t, MethodPut.Idempotent())
	assert.True(t, MethodDelete.Idempotent())
	assert.False(t, MethodPost.Idempotent())
	assert.False(t, MethodPatch.Idempotent())
}
