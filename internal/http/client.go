package http

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// Client sends HTTP/1.1 requests through a pluggable transport driver.
//
// Calls on one Client are serialized: request headers, cookies and the
// last-response accessors are per-instance state. Use one Client per
// goroutine for parallel requests.
type Client struct {
	mu sync.Mutex

	options Options
	initial Options
	headers *header.Header
	cookies *header.Cookies

	driver     transport.Driver
	driverName string
	logger     *logrus.Logger
	ownLogger  bool
	metrics    MetricsCollector
	debug      *transport.DebugLog

	state   State
	last    *Response
	lastErr error
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		options: DefaultOptions(),
		headers: header.New(),
		cookies: header.NewCookies(),
		metrics: nopMetrics{},
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	if client.logger == nil {
		client.logger = logrus.New()
		client.logger.SetOutput(os.Stderr)
		client.logger.SetLevel(logrus.WarnLevel)
		client.ownLogger = true
	}
	if client.options.Debug && client.ownLogger {
		client.logger.SetLevel(logrus.DebugLevel)
	}

	client.debug = transport.NewDebugLog(transport.DefaultDebugLimit, client.logger)
	client.debug.Enable(client.options.Debug)

	if client.driver == nil {
		client.driver = newBuiltinDriver(client.driverName, client.options, client.driverConfig())
	}
	client.driverName = client.driver.Name()
	client.initial = client.options.Clone()

	return client
}

func (c *Client) driverConfig() transport.Config {
	return transport.Config{
		Logger: c.logger.WithField("component", "transport"),
		Debug:  c.debug,
	}
}

// WithBaseURL sets the base URL for the client
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.options.BaseURL = baseURL
	}
}

// WithTimeout sets the timeout for the client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.options.Timeout = timeout
	}
}

// WithHeader adds a header to the client
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHeaders sets the options header layer
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		RequestHeaders(headers)(&c.options)
	}
}

// WithCookie adds a cookie sent with every request
func WithCookie(name, value string) ClientOption {
	return func(c *Client) {
		c.cookies.Set(name, value)
	}
}

// WithRetry sets how many times a retryable failure is attempted again
func WithRetry(retry int) ClientOption {
	return func(c *Client) {
		c.options.Retry = retry
	}
}

// WithRetryDelay sets the pause between attempts
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.options.RetryDelay = delay
	}
}

// WithRetryNonIdempotent allows retrying POST and PATCH after the request
// may have reached the server
func WithRetryNonIdempotent(enabled bool) ClientOption {
	return func(c *Client) {
		c.options.RetryNonIdempotent = enabled
	}
}

// WithSSLVerify toggles TLS certificate verification
func WithSSLVerify(enabled bool) ClientOption {
	return func(c *Client) {
		c.options.SSLVerify = enabled
	}
}

// WithProxy routes requests through an HTTP proxy
func WithProxy(host string, port int) ClientOption {
	return func(c *Client) {
		c.options.Proxy = &Proxy{Host: host, Port: port}
	}
}

// WithAuth sets request credentials
func WithAuth(user, password string, scheme AuthScheme) ClientOption {
	return func(c *Client) {
		c.options.Auth = &Auth{User: user, Password: password, Scheme: scheme}
	}
}

// WithPersistent keeps connections open between requests when the driver
// supports it
func WithPersistent(enabled bool) ClientOption {
	return func(c *Client) {
		c.options.Persistent = enabled
	}
}

// WithDebug records every exchange and logs at debug level
func WithDebug(enabled bool) ClientOption {
	return func(c *Client) {
		c.options.Debug = enabled
	}
}

// WithFollowRedirects sets the maximum number of redirects to follow
func WithFollowRedirects(max int) ClientOption {
	return func(c *Client) {
		c.options.FollowRedirects = max
	}
}

// WithUserAgent sets the default User-Agent
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.options.UserAgent = userAgent
	}
}

// WithExtra stores a setting the client does not interpret itself
func WithExtra(key string, value interface{}) ClientOption {
	return func(c *Client) {
		RequestExtra(key, value)(&c.options)
	}
}

// WithOptions replaces the whole option set
func WithOptions(options Options) ClientOption {
	return func(c *Client) {
		c.options = options.Clone()
	}
}

// WithDriver uses the given transport driver
func WithDriver(driver transport.Driver) ClientOption {
	return func(c *Client) {
		c.driver = driver
	}
}

// WithDriverName selects a built-in driver: "socket", "stream" or
// "nethttp". Empty or unknown names select the first available one.
func WithDriverName(name string) ClientOption {
	return func(c *Client) {
		c.driverName = name
	}
}

// WithLogger sets the logger used by the client and its driver
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the telemetry sink
func WithMetrics(metrics MetricsCollector) ClientOption {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

/*************************************************************************
 * request methods
 *************************************************************************/

// Get sends a GET request; data is appended as query string
func (c *Client) Get(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "GET", url, data, headers, options...)
}

// Post sends a POST request with data as body
func (c *Client) Post(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "POST", url, data, headers, options...)
}

// Put sends a PUT request with data as body
func (c *Client) Put(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "PUT", url, data, headers, options...)
}

// Patch sends a PATCH request with data as body
func (c *Client) Patch(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "PATCH", url, data, headers, options...)
}

// Delete sends a DELETE request; data is appended as query string
func (c *Client) Delete(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "DELETE", url, data, headers, options...)
}

// Head sends a HEAD request
func (c *Client) Head(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "HEAD", url, data, headers, options...)
}

// Options sends an OPTIONS request
func (c *Client) Options(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "OPTIONS", url, data, headers, options...)
}

// Trace sends a TRACE request
func (c *Client) Trace(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "TRACE", url, data, headers, options...)
}

// Search sends a SEARCH request
func (c *Client) Search(ctx context.Context, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	return c.Request(ctx, "SEARCH", url, data, headers, options...)
}

// Request sends a request with any supported method. An empty method uses
// the configured default.
func (c *Client) Request(ctx context.Context, method, url string, data interface{}, headers map[string]string, options ...RequestOption) (*Response, error) {
	req := NewRequest(method, url).
		WithHeaders(headers).
		WithBody(data).
		WithOptions(options...)
	return c.Do(ctx, req)
}

// Do executes a request, retrying retryable failures, and returns the
// parsed response. 4xx and 5xx responses are not errors.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last, c.lastErr = nil, nil
	c.state = StateBuilding

	opts := c.options.Clone()
	for _, option := range req.Options {
		option(&opts)
	}
	method := req.Method
	if method == "" {
		method = opts.Method
	}

	resp, err := c.run(ctx, call{
		method:  method,
		url:     req.Path,
		query:   req.QueryParams,
		data:    req.Body,
		headers: req.Headers,
	}, opts)
	if err != nil {
		c.lastErr = err
		if httperrors.KindOf(err) == httperrors.ConnectError {
			c.state = StateConnectFailed
		} else {
			c.state = StateFailed
		}
		return nil, err
	}

	c.last = resp
	c.state = StateIdle
	return resp, nil
}

// BuildRaw returns the exact bytes a call would write, without sending
func (c *Client) BuildRaw(method, url string, data interface{}, headers map[string]string, options ...RequestOption) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := c.options.Clone()
	for _, option := range options {
		option(&opts)
	}
	if method == "" {
		method = opts.Method
	}
	p, err := c.prepare(call{method: method, url: url, data: data, headers: headers}, opts)
	if err != nil {
		return nil, err
	}
	return p.raw, nil
}

/*************************************************************************
 * config client
 *************************************************************************/

// SetHeader sets a client header. Without override an existing value is
// kept.
func (c *Client) SetHeader(name, value string, override bool) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if override {
		c.headers.Set(name, value)
	} else {
		c.headers.Add(name, value)
	}
	return c
}

// SetHeaders replaces all client headers
func (c *Client) SetHeaders(headers map[string]string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = header.FromMap(headers)
	return c
}

// AddHeaders merges headers into the client headers
func (c *Client) AddHeaders(headers map[string]string, override bool) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Merge(header.FromMap(headers), override)
	return c
}

// DelHeader removes client headers
func (c *Client) DelHeader(names ...string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(names...)
	return c
}

// Headers returns a copy of the client headers
func (c *Client) Headers() *header.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers.Clone()
}

// ByJSON marks request bodies as JSON
func (c *Client) ByJSON() *Client {
	return c.SetHeader("Content-Type", "application/json; charset=utf-8", true)
}

// ByAjax marks requests as XMLHttpRequest
func (c *Client) ByAjax() *Client {
	return c.SetHeader("X-Requested-With", "XMLHttpRequest", true)
}

// SetUserAgent sets the User-Agent client header
func (c *Client) SetUserAgent(userAgent string) *Client {
	return c.SetHeader("User-Agent", userAgent, true)
}

// SetCookie sets a client cookie
func (c *Client) SetCookie(name, value string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies.Set(name, value)
	return c
}

// SetCookies sets several client cookies
func (c *Client) SetCookies(cookies map[string]string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies.SetAll(cookies)
	return c
}

// Cookies returns a copy of the client cookies
func (c *Client) Cookies() *header.Cookies {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookies.Clone()
}

// SetProxy routes requests through an HTTP proxy
func (c *Client) SetProxy(host string, port int) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.Proxy = &Proxy{Host: host, Port: port}
	return c
}

// SetUserAuth sets request credentials
func (c *Client) SetUserAuth(user, password string, scheme AuthScheme) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.Auth = &Auth{User: user, Password: password, Scheme: scheme}
	return c
}

// SetTimeout sets the request timeout
func (c *Client) SetTimeout(timeout time.Duration) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.Timeout = timeout
	return c
}

// SetRetry sets the retry count
func (c *Client) SetRetry(retry int) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.Retry = retry
	return c
}

// SetDebug toggles exchange recording and debug logging
func (c *Client) SetDebug(enabled bool) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.Debug = enabled
	c.debug.Enable(enabled)
	if c.ownLogger {
		if enabled {
			c.logger.SetLevel(logrus.DebugLevel)
		} else {
			c.logger.SetLevel(logrus.WarnLevel)
		}
	}
	return c
}

// SSLVerify toggles TLS certificate verification
func (c *Client) SSLVerify(enabled bool) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.SSLVerify = enabled
	return c
}

// SetBaseURL sets the base URL for relative request URLs
func (c *Client) SetBaseURL(baseURL string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options.BaseURL = baseURL
	return c
}

// BaseURL returns the base URL
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options.BaseURL
}

// CurrentOptions returns a copy of the client options
func (c *Client) CurrentOptions() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options.Clone()
}

// DriverName returns the name of the transport driver
func (c *Client) DriverName() string {
	return c.driverName
}

// DebugRecords returns the recorded exchanges when debug is on
func (c *Client) DebugRecords() []transport.Record {
	return c.debug.Records()
}

// Close releases connections held by the driver
func (c *Client) Close() error {
	return c.driver.Close()
}

/*************************************************************************
 * reset
 *************************************************************************/

// ResetOptions restores the options the client was created with
func (c *Client) ResetOptions() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = c.initial.Clone()
	c.debug.Enable(c.options.Debug)
	return c
}

// ResetRequest clears client headers and cookies
func (c *Client) ResetRequest() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = header.New()
	c.cookies = header.NewCookies()
	return c
}

// ResetHeaders clears client headers
func (c *Client) ResetHeaders() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = header.New()
	return c
}

// ResetCookies clears client cookies
func (c *Client) ResetCookies() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = header.NewCookies()
	return c
}

// ResetResponse forgets the last response and error
func (c *Client) ResetResponse() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last, c.lastErr = nil, nil
	c.state = StateIdle
	return c
}

// Reset restores options and clears request and response state
func (c *Client) Reset() {
	c.ResetOptions()
	c.ResetRequest()
	c.ResetResponse()
	c.debug.Reset()
}

/*************************************************************************
 * last response
 *************************************************************************/

// State returns the phase of the most recent call
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastResponse returns the response of the most recent successful call
func (c *Client) LastResponse() *Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// StatusCode returns the last status code, or 0
func (c *Client) StatusCode() int {
	if r := c.LastResponse(); r != nil {
		return r.StatusCode
	}
	return 0
}

// ResponseHeaders returns the last response headers
func (c *Client) ResponseHeaders() *header.Header {
	if r := c.LastResponse(); r != nil {
		return r.Headers
	}
	return header.New()
}

// ResponseHeader returns one header of the last response
func (c *Client) ResponseHeader(name string) string {
	return c.ResponseHeaders().Get(name)
}

// ResponseBody returns the last response body
func (c *Client) ResponseBody() []byte {
	if r := c.LastResponse(); r != nil {
		return r.GetBody()
	}
	return nil
}

// IsSuccess reports whether the last response was 2xx
func (c *Client) IsSuccess() bool {
	r := c.LastResponse()
	return r != nil && r.IsSuccess()
}

// IsError reports whether the last response was 4xx or 5xx
func (c *Client) IsError() bool {
	r := c.LastResponse()
	return r != nil && r.IsError()
}

// Err returns the error of the most recent call
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// HasError reports whether the most recent call failed
func (c *Client) HasError() bool {
	return c.Err() != nil
}

// ErrNo returns the OS error number of the most recent failure, or 0
func (c *Client) ErrNo() int {
	return httperrors.Errno(c.Err())
}

// ErrMessage returns the message of the most recent failure
func (c *Client) ErrMessage() string {
	if err := c.Err(); err != nil {
		return err.Error()
	}
	return ""
}
