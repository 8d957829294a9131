package http

import (
	ihttp "github.com/wesleyorama2/sockhttp/internal/http"
	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
	"github.com/wesleyorama2/sockhttp/internal/metrics"
	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// Client, request and response types
type (
	Client        = ihttp.Client
	ClientOption  = ihttp.ClientOption
	ClientLike    = ihttp.ClientLike
	DefaultClient = ihttp.DefaultClient
	Request       = ihttp.Request
	RequestOption = ihttp.RequestOption
	Response      = ihttp.Response
	Options       = ihttp.Options
	Auth          = ihttp.Auth
	AuthScheme    = ihttp.AuthScheme
	Proxy         = ihttp.Proxy
	State         = ihttp.State
	TimingInfo    = ihttp.TimingInfo
	Header        = header.Header
	Cookies       = header.Cookies
)

// Driver types, for plugging in a custom transport
type (
	Driver           = transport.Driver
	Exchange         = transport.Exchange
	Result           = transport.Result
	Endpoint         = transport.Endpoint
	Record           = transport.Record
	Provider         = ihttp.Provider
	Registry         = ihttp.Registry
	MetricsCollector = ihttp.MetricsCollector
)

// Error is returned by every failed call; Kind classifies it
type (
	Error     = httperrors.Error
	ErrorKind = httperrors.Kind
)

const (
	InvalidURL      = httperrors.InvalidURL
	InvalidArgument = httperrors.InvalidArgument
	ConnectError    = httperrors.ConnectError
	WriteError      = httperrors.WriteError
	ReadError       = httperrors.ReadError
	TimeoutError    = httperrors.TimeoutError
	Canceled        = httperrors.Canceled
)

const (
	AuthBasic  = ihttp.AuthBasic
	AuthDigest = ihttp.AuthDigest

	DefaultTimeout   = ihttp.DefaultTimeout
	DefaultRetry     = ihttp.DefaultRetry
	DefaultUserAgent = ihttp.DefaultUserAgent
)

var (
	NewClient            = ihttp.NewClient
	NewRequest           = ihttp.NewRequest
	DefaultOptions       = ihttp.DefaultOptions
	NewRegistry          = ihttp.NewRegistry
	DefaultRegistry      = ihttp.DefaultRegistry
	NewDefaultClient     = ihttp.NewDefaultClient
	NewDefaultClientFrom = ihttp.NewDefaultClientFrom

	WithBaseURL            = ihttp.WithBaseURL
	WithTimeout            = ihttp.WithTimeout
	WithHeader             = ihttp.WithHeader
	WithHeaders            = ihttp.WithHeaders
	WithCookie             = ihttp.WithCookie
	WithRetry              = ihttp.WithRetry
	WithRetryDelay         = ihttp.WithRetryDelay
	WithRetryNonIdempotent = ihttp.WithRetryNonIdempotent
	WithSSLVerify          = ihttp.WithSSLVerify
	WithProxy              = ihttp.WithProxy
	WithAuth               = ihttp.WithAuth
	WithPersistent         = ihttp.WithPersistent
	WithDebug              = ihttp.WithDebug
	WithFollowRedirects    = ihttp.WithFollowRedirects
	WithUserAgent          = ihttp.WithUserAgent
	WithExtra              = ihttp.WithExtra
	WithOptions            = ihttp.WithOptions
	WithDriver             = ihttp.WithDriver
	WithDriverName         = ihttp.WithDriverName
	WithLogger             = ihttp.WithLogger
	WithMetrics            = ihttp.WithMetrics

	RequestTimeout            = ihttp.RequestTimeout
	RequestRetry              = ihttp.RequestRetry
	RequestRetryNonIdempotent = ihttp.RequestRetryNonIdempotent
	RequestHeaders            = ihttp.RequestHeaders
	RequestCookie             = ihttp.RequestCookie
	RequestProxy              = ihttp.RequestProxy
	RequestAuth               = ihttp.RequestAuth
	RequestPersistent         = ihttp.RequestPersistent
	RequestFollowRedirects    = ihttp.RequestFollowRedirects
	RequestSSLVerify          = ihttp.RequestSSLVerify
	RequestExtra              = ihttp.RequestExtra

	// KindOf returns the kind of err, or Unknown
	KindOf = httperrors.KindOf
	// IsRetryable reports whether err may succeed on another attempt
	IsRetryable = httperrors.IsRetryable
)

// NewPrometheusMetrics returns a collector exporting client metrics on
// its own Prometheus registry
func NewPrometheusMetrics() *metrics.Collector {
	return metrics.NewCollector()
}
