package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

func TestIsAbsolute(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"http://example.com", true},
		{"https://example.com/a", true},
		{"//example.com/a", true},
		{"wss://example.com", true},
		{"/get", false},
		{"get", false},
		{"example.com/get", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAbsolute(tt.url))
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		base, path, expected string
	}{
		{"http://h", "/get", "http://h/get"},
		{"http://h/", "/get", "http://h/get"},
		{"http://h//", "get", "http://h/get"},
		{"http://h/api", "v1/x", "http://h/api/v1/x"},
		{"http://h", "", "http://h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Join(tt.base, tt.path))
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		url      string
		expected Target
	}{
		{
			name:     "relative with base",
			base:     "http://httpbin.org",
			url:      "/get",
			expected: Target{Scheme: "http", Host: "httpbin.org", Port: 80, Path: "/get"},
		},
		{
			name:     "absolute ignores base",
			base:     "http://other.org",
			url:      "https://httpbin.org/anything?x=1",
			expected: Target{Scheme: "https", Host: "httpbin.org", Port: 443, Path: "/anything", Query: "x=1"},
		},
		{
			name:     "empty path defaults to slash",
			url:      "http://example.com",
			expected: Target{Scheme: "http", Host: "example.com", Port: 80, Path: "/"},
		},
		{
			name:     "explicit port",
			url:      "http://127.0.0.1:8080/x",
			expected: Target{Scheme: "http", Host: "127.0.0.1", Port: 8080, Path: "/x"},
		},
		{
			name:     "protocol relative",
			url:      "//example.com/p",
			expected: Target{Scheme: "http", Host: "example.com", Port: 80, Path: "/p"},
		},
		{
			name:     "absolute with surrounding whitespace",
			base:     "http://other.org",
			url:      "  http://h.test/x \n",
			expected: Target{Scheme: "http", Host: "h.test", Port: 80, Path: "/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.base, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name, base, url string
	}{
		{"relative without base", "", "/get"},
		{"base is relative too", "api", "get"},
		{"unsupported scheme", "", "ftp://example.com/file"},
		{"missing host", "", "http:///path"},
		{"bad port", "", "http://example.com:99999/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.base, tt.url)
			require.Error(t, err)
			assert.Equal(t, httperrors.InvalidURL, httperrors.KindOf(err))
		})
	}
}

func TestTarget_WithQuery(t *testing.T) {
	tg, err := Resolve("", "http://h/get")
	require.NoError(t, err)

	withQuery := tg.WithQuery("a=1&b=2")
	assert.Equal(t, "/get?a=1&b=2", withQuery.RequestURI())
	assert.Equal(t, "/get", tg.RequestURI(), "original target must not change")

	appended := withQuery.WithQuery("c=3")
	assert.Equal(t, "/get?a=1&b=2&c=3", appended.RequestURI())
}

func TestTarget_HostHeaderAndString(t *testing.T) {
	tg, err := Resolve("", "https://example.com/a?b=c")
	require.NoError(t, err)
	assert.True(t, tg.TLS())
	assert.Equal(t, "example.com", tg.HostHeader())
	assert.Equal(t, "example.com:443", tg.Address())
	assert.Equal(t, "https://example.com/a?b=c", tg.String())

	tg, err = Resolve("", "http://127.0.0.1:8080/")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", tg.HostHeader())
}

func TestTarget_ResolveReference(t *testing.T) {
	tg, err := Resolve("", "http://example.com/a/b")
	require.NoError(t, err)

	next, err := tg.ResolveReference("/c?d=1")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/c?d=1", next.String())

	next, err = tg.ResolveReference("https://other.org/")
	require.NoError(t, err)
	assert.Equal(t, "other.org", next.Host)
	assert.Equal(t, 443, next.Port)
}
