package http

import (
	"testing"
)

func TestRequest_WithMethods(t *testing.T) {
	req := NewRequest("POST", "/test").
		WithHeader("X-Test", "test-value").
		WithHeaders(map[string]string{"Accept": "text/plain"}).
		WithQueryParam("param1", "value1").
		WithQueryParams(map[string]string{"param2": "value2"}).
		WithBody(map[string]string{"key": "value"}).
		WithOptions(RequestTimeout(0), RequestRetry(1))

	if req.Method != "POST" {
		t.Errorf("Expected method POST, got %s", req.Method)
	}
	if req.Path != "/test" {
		t.Errorf("Expected path /test, got %s", req.Path)
	}
	if req.Headers["X-Test"] != "test-value" || req.Headers["Accept"] != "text/plain" {
		t.Errorf("Unexpected headers %v", req.Headers)
	}
	if req.QueryParams.Get("param1") != "value1" || req.QueryParams.Get("param2") != "value2" {
		t.Errorf("Unexpected query params %v", req.QueryParams)
	}
	if body, ok := req.Body.(map[string]string); !ok || body["key"] != "value" {
		t.Errorf("Unexpected body %v", req.Body)
	}
	if len(req.Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(req.Options))
	}
}

func TestOptions_CloneIsDeep(t *testing.T) {
	opts := DefaultOptions()
	RequestHeaders(map[string]string{"A": "1"})(&opts)
	RequestCookie("c", "1")(&opts)
	RequestProxy("proxy", 3128)(&opts)
	RequestAuth("u", "p", AuthBasic)(&opts)
	RequestExtra("custom", 1)(&opts)

	clone := opts.Clone()
	clone.Headers["A"] = "2"
	clone.Cookies["c"] = "2"
	clone.Proxy.Port = 8080
	clone.Auth.User = "other"
	clone.Extra["custom"] = 2

	if opts.Headers["A"] != "1" || opts.Cookies["c"] != "1" {
		t.Errorf("Clone shares maps with the original")
	}
	if opts.Proxy.Port != 3128 || opts.Auth.User != "u" {
		t.Errorf("Clone shares pointers with the original")
	}
	if opts.Extra["custom"] != 1 {
		t.Errorf("Clone shares extra settings with the original")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Timeout != DefaultTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultTimeout, opts.Timeout)
	}
	if opts.Retry != DefaultRetry {
		t.Errorf("Expected retry %d, got %d", DefaultRetry, opts.Retry)
	}
	if opts.SSLVerify {
		t.Errorf("Expected certificate verification to be off by default")
	}
	if opts.Method != "GET" {
		t.Errorf("Expected default method GET, got %s", opts.Method)
	}
}
