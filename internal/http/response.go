package http

import (
	"encoding/json"
	"time"

	"github.com/wesleyorama2/sockhttp/internal/header"
	"github.com/wesleyorama2/sockhttp/internal/http1"
	"github.com/wesleyorama2/sockhttp/internal/transport"
)

// TimingInfo holds the phase durations of a request
type TimingInfo = transport.Timing

// Response represents the outcome of one call. It is never modified after
// the call returns.
type Response struct {
	StatusCode int
	// Status is the code with its reason phrase, e.g. "404 Not Found"
	Status string
	// Proto is the HTTP version from the status line, e.g. "1.1"
	Proto string
	// Headers includes the synthetic Http-Version and Status-Msg fields
	Headers *header.Header
	// RawHeaders holds every header block received, interim ones included
	RawHeaders   string
	Method       string
	URL          string
	Driver       string
	Attempts     int
	Redirects    int
	ResponseTime time.Duration
	Timing       TimingInfo
	rawBody      []byte
}

// newResponse builds a Response from a parsed state
func newResponse(state *http1.State, timing TimingInfo) *Response {
	msg := state.Message
	return &Response{
		StatusCode:   state.StatusCode,
		Status:       msg.Status,
		Proto:        msg.Proto,
		Headers:      msg.Header,
		RawHeaders:   msg.RawHeader,
		ResponseTime: timing.TotalTime,
		Timing:       timing,
		rawBody:      msg.Body,
	}
}

// GetBody returns the response body as a byte array
func (r *Response) GetBody() []byte {
	return r.rawBody
}

// GetBodyAsString returns the response body as a string
func (r *Response) GetBodyAsString() string {
	return string(r.rawBody)
}

// GetBodyAsJSON unmarshals the response body into the provided interface
func (r *Response) GetBodyAsJSON(v interface{}) error {
	return json.Unmarshal(r.rawBody, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsInfo returns true if the response status code is in the 1xx range
func (r *Response) IsInfo() bool {
	return r.StatusCode >= 100 && r.StatusCode < 200
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// IsError returns true for 4xx and 5xx responses
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.ResponseTime.Milliseconds()
}

// GetDNSLookupTimeMillis returns the DNS lookup time in milliseconds
func (r *Response) GetDNSLookupTimeMillis() int64 {
	return r.Timing.DNSLookupTime.Milliseconds()
}

// GetTCPConnectTimeMillis returns the TCP connect time in milliseconds
func (r *Response) GetTCPConnectTimeMillis() int64 {
	return r.Timing.TCPConnectTime.Milliseconds()
}

// GetTLSHandshakeTimeMillis returns the TLS handshake time in milliseconds
func (r *Response) GetTLSHandshakeTimeMillis() int64 {
	return r.Timing.TLSHandshakeTime.Milliseconds()
}

// GetTimeToFirstByteMillis returns the time to first byte in milliseconds
func (r *Response) GetTimeToFirstByteMillis() int64 {
	return r.Timing.TimeToFirstByte.Milliseconds()
}

// GetContentTransferTimeMillis returns the body transfer time in milliseconds
func (r *Response) GetContentTransferTimeMillis() int64 {
	return r.Timing.ContentTransferTime.Milliseconds()
}

// GetTotalTimeMillis returns the total time in milliseconds
func (r *Response) GetTotalTimeMillis() int64 {
	return r.Timing.TotalTime.Milliseconds()
}
