package http

import (
	"context"
	"sync"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

// DefaultClient holds one lazily created client and forwards requests to
// it. Construct it once and share it; there is no package-level instance.
type DefaultClient struct {
	once    sync.Once
	create  func() (ClientLike, error)
	client  ClientLike
	initErr error
}

// NewDefaultClient wraps an existing client
func NewDefaultClient(client ClientLike) *DefaultClient {
	d := &DefaultClient{client: client}
	d.once.Do(func() {})
	return d
}

// NewDefaultClientFrom creates the client through the registry on first use
func NewDefaultClientFrom(registry *Registry, driver string, options ...ClientOption) *DefaultClient {
	return &DefaultClient{
		create: func() (ClientLike, error) {
			return registry.Create(driver, options...)
		},
	}
}

// Client returns the wrapped client, creating it if needed
func (d *DefaultClient) Client() (ClientLike, error) {
	d.once.Do(func() {
		if d.create == nil {
			d.initErr = httperrors.New(httperrors.InvalidArgument, "default client has no client or registry; use NewDefaultClient or NewDefaultClientFrom")
			return
		}
		d.client, d.initErr = d.create()
	})
	return d.client, d.initErr
}

// Get forwards to the wrapped client
func (d *DefaultClient) Get(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "GET", url, data, headers, options...)
}

// Post forwards to the wrapped client
func (d *DefaultClient) Post(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "POST", url, data, headers, options...)
}

// Put forwards to the wrapped client
func (d *DefaultClient) Put(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "PUT", url, data, headers, options...)
}

// Patch forwards to the wrapped client
func (d *DefaultClient) Patch(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "PATCH", url, data, headers, options...)
}

// Delete forwards to the wrapped client
func (d *DefaultClient) Delete(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "DELETE", url, data, headers, options...)
}

// Head forwards to the wrapped client
func (d *DefaultClient) Head(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "HEAD", url, data, headers, options...)
}

// Options forwards to the wrapped client
func (d *DefaultClient) Options(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "OPTIONS", url, data, headers, options...)
}

// Trace forwards to the wrapped client
func (d *DefaultClient) Trace(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return d.Request(ctx, "TRACE", url, data, headers, options...)
}

// Request forwards to the wrapped client
func (d *DefaultClient) Request(ctx context.Context, method, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	c, err := d.Client()
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, method, url, data, headers, options...)
}
