package http

import (
	"context"
	"sort"
	"strings"
	"sync"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// ClientLike is the request surface shared by every driver-backed client
type ClientLike interface {
	Get(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Post(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Put(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Patch(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Delete(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Head(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Options(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Trace(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)
	Request(ctx context.Context, method, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error)

	StatusCode() int
	ResponseHeaders() *header.Header
	ResponseBody() []byte
	Reset()
	DriverName() string
	Close() error
}

var _ ClientLike = (*Client)(nil)

// Provider creates clients for one driver
type Provider interface {
	Name() string
	// Available reports whether the driver works in this environment
	Available() bool
	Create(options ...ClientOption) (ClientLike, error)
}

// builtinDriver describes a driver shipped with this package
type builtinDriver struct {
	name      string
	available func() bool
	persist   bool
	create    func(transport.Config) transport.Driver
}

// builtinDrivers in preference order
var builtinDrivers = []builtinDriver{
	{
		name:      "socket",
		available: transport.SocketAvailable,
		create:    func(cfg transport.Config) transport.Driver { return transport.NewSocketDriver(cfg) },
	},
	{
		name:      "stream",
		available: transport.SocketAvailable,
		persist:   true,
		create:    func(cfg transport.Config) transport.Driver { return transport.NewStreamDriver(cfg) },
	},
	{
		name:      "nethttp",
		available: func() bool { return true },
		persist:   true,
		create:    func(cfg transport.Config) transport.Driver { return transport.NewNetHTTPDriver(cfg) },
	},
}

// newBuiltinDriver creates the named driver. Without a usable name the
// first available driver is chosen, skipping drivers that cannot keep
// connections when persistence is requested.
func newBuiltinDriver(name string, opts Options, cfg transport.Config) transport.Driver {
	for _, d := range builtinDrivers {
		if d.name == strings.ToLower(name) && d.available() {
			return d.create(cfg)
		}
	}
	for _, d := range builtinDrivers {
		if d.available() && (d.persist || !opts.Persistent) {
			return d.create(cfg)
		}
	}
	return transport.NewNetHTTPDriver(cfg)
}

type driverProvider struct {
	d builtinDriver
}

func (p driverProvider) Name() string {
	return p.d.name
}

func (p driverProvider) Available() bool {
	return p.d.available()
}

func (p driverProvider) Create(options ...ClientOption) (ClientLike, error) {
	if !p.d.available() {
		return nil, httperrors.New(httperrors.InvalidArgument, "driver %q is not available", p.d.name)
	}
	return NewClient(append(options, WithDriverName(p.d.name))...), nil
}

// Registry maps driver names to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// DefaultRegistry returns a registry holding the built-in drivers in
// preference order: socket, stream, nethttp
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range builtinDrivers {
		_ = r.Register(driverProvider{d: d})
	}
	return r
}

// Register adds a provider. Names must be unique.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(p.Name())
	if _, exists := r.providers[name]; exists {
		return httperrors.New(httperrors.InvalidArgument, "driver %q already registered", name)
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get looks up a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(name)]
	return p, ok
}

// Names returns all registered names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Available returns the names of providers usable here, in order
func (r *Registry) Available() []string {
	var out []string
	for _, name := range r.Names() {
		if p, _ := r.Get(name); p.Available() {
			out = append(out, name)
		}
	}
	return out
}

// Create builds a client with the named driver. An empty name or "auto"
// picks the first available driver.
func (r *Registry) Create(name string, options ...ClientOption) (ClientLike, error) {
	if name == "" || strings.EqualFold(name, "auto") {
		available := r.Available()
		if len(available) == 0 {
			return nil, httperrors.New(httperrors.InvalidArgument, "no driver available")
		}
		name = available[0]
	}

	p, ok := r.Get(name)
	if !ok {
		names := r.Names()
		sort.Strings(names)
		return nil, httperrors.New(httperrors.InvalidArgument, "unknown driver %q (known: %s)", name, strings.Join(names, ", "))
	}
	return p.Create(options...)
}
