package config_test

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/sockhttp/config"
	"github.com/wesleyorama2/sockhttp/http"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sockhttp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewClient_FromProfile(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, "%s %s", r.URL.Path, r.Header.Get("X-Env"))
	}))
	defer server.Close()

	path := writeConfig(t, `
profiles:
  local:
    baseUrl: `+server.URL+`/{{prefix}}
    headers:
      X-Env: local
    variables:
      prefix: api
`)

	client, err := config.NewClient(path, "local", http.WithRetry(0))
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Get(context.Background(), "/ping", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/ping local", resp.GetBodyAsString())
}

func TestNewClient_Errors(t *testing.T) {
	_, err := config.NewClient(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	path := writeConfig(t, "profiles:\n  a:\n    baseUrl: http://h\n")
	_, err = config.NewClient(path, "b")
	assert.Error(t, err)
}

func TestValidateConfig_Facade(t *testing.T) {
	cfg, err := config.ParseConfig([]byte("profiles:\n  a:\n    baseUrl: http://h\n"))
	require.NoError(t, err)
	assert.Empty(t, config.ValidateConfig(cfg))
	assert.Equal(t, "x.y: bad", config.ValidationError{Path: "x.y", Message: "bad"}.Error())
}
