package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (text, json, yaml)", name)
}

// FormatProvider renders requests, responses and run summaries
type FormatProvider interface {
	FormatRequest(raw []byte) string
	FormatResponse(resp *http.Response) string
	FormatExtractions(values map[string]string) string
	FormatSummary(summary stats.Summary) string
}

// GetFormatter returns the formatter for format. Unknown formats fall back
// to text.
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// RequestData is the structured form of a raw request
type RequestData struct {
	RequestLine string            `json:"requestLine" yaml:"requestLine"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	Size        int               `json:"size" yaml:"size"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	Method       string            `json:"method" yaml:"method"`
	URL          string            `json:"url" yaml:"url"`
	StatusCode   int               `json:"statusCode" yaml:"statusCode"`
	Status       string            `json:"status" yaml:"status"`
	Proto        string            `json:"proto,omitempty" yaml:"proto,omitempty"`
	Driver       string            `json:"driver" yaml:"driver"`
	Attempts     int               `json:"attempts" yaml:"attempts"`
	Redirects    int               `json:"redirects,omitempty" yaml:"redirects,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime int64             `json:"responseTimeMs" yaml:"responseTimeMs"`
	Timing       *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp    string            `json:"timestamp" yaml:"timestamp"`
}

// SummaryData is a stats summary with durations in milliseconds
type SummaryData struct {
	Requests  int64            `json:"requests" yaml:"requests"`
	Failures  int64            `json:"failures" yaml:"failures"`
	Statuses  map[string]int64 `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Bytes     int64            `json:"bytes" yaml:"bytes"`
	ElapsedMs float64          `json:"elapsedMs" yaml:"elapsedMs"`
	RPS       float64          `json:"rps" yaml:"rps"`
	MinMs     float64          `json:"minMs" yaml:"minMs"`
	MeanMs    float64          `json:"meanMs" yaml:"meanMs"`
	P50Ms     float64          `json:"p50Ms" yaml:"p50Ms"`
	P90Ms     float64          `json:"p90Ms" yaml:"p90Ms"`
	P95Ms     float64          `json:"p95Ms" yaml:"p95Ms"`
	P99Ms     float64          `json:"p99Ms" yaml:"p99Ms"`
	MaxMs     float64          `json:"maxMs" yaml:"maxMs"`
}

// NewRequestData splits raw request bytes into their parts
func NewRequestData(raw []byte) RequestData {
	head, body, _ := strings.Cut(string(raw), "\r\n\r\n")
	lines := strings.Split(head, "\r\n")

	data := RequestData{RequestLine: lines[0], Body: body, Size: len(raw)}
	for _, line := range lines[1:] {
		if k, v, ok := strings.Cut(line, ":"); ok {
			if data.Headers == nil {
				data.Headers = make(map[string]string)
			}
			data.Headers[k] = strings.TrimSpace(v)
		}
	}
	return data
}

// NewResponseData flattens a response. Timing is included when verbose.
func NewResponseData(resp *http.Response, verbose bool) ResponseData {
	data := ResponseData{
		Method:       resp.Method,
		URL:          resp.URL,
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		Proto:        resp.Proto,
		Driver:       resp.Driver,
		Attempts:     resp.Attempts,
		Redirects:    resp.Redirects,
		Headers:      resp.Headers.Map(),
		ResponseTime: resp.GetResponseTimeMillis(),
		Timestamp:    time.Now().Format(time.RFC3339),
	}

	if body := resp.GetBody(); len(body) > 0 {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			data.Body = parsed
		} else {
			data.Body = string(body)
		}
	}

	if verbose {
		data.Timing = &TimingData{
			DNSLookup:       resp.GetDNSLookupTimeMillis(),
			TCPConnection:   resp.GetTCPConnectTimeMillis(),
			TLSHandshake:    resp.GetTLSHandshakeTimeMillis(),
			TimeToFirstByte: resp.GetTimeToFirstByteMillis(),
			ContentTransfer: resp.GetContentTransferTimeMillis(),
			Total:           resp.GetTotalTimeMillis(),
		}
	}
	return data
}

// NewSummaryData converts a stats summary
func NewSummaryData(s stats.Summary) SummaryData {
	data := SummaryData{
		Requests:  s.Requests,
		Failures:  s.Failures,
		Bytes:     s.Bytes,
		ElapsedMs: millis(s.Elapsed),
		RPS:       s.RPS,
		MinMs:     millis(s.Min),
		MeanMs:    millis(s.Mean),
		P50Ms:     millis(s.P50),
		P90Ms:     millis(s.P90),
		P95Ms:     millis(s.P95),
		P99Ms:     millis(s.P99),
		MaxMs:     millis(s.Max),
	}
	if len(s.Statuses) > 0 {
		data.Statuses = make(map[string]int64, len(s.Statuses))
		for code, n := range s.Statuses {
			data.Statuses[fmt.Sprint(code)] = n
		}
	}
	return data
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, "failed to marshal: "+err.Error())
	}
	return string(output)
}

// FormatRequest formats a raw request as JSON
func (f *JSONFormatter) FormatRequest(raw []byte) string {
	return f.marshal(NewRequestData(raw))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatExtractions formats extracted values as a JSON object
func (f *JSONFormatter) FormatExtractions(values map[string]string) string {
	return f.marshal(values)
}

// FormatSummary formats a run summary as JSON
func (f *JSONFormatter) FormatSummary(summary stats.Summary) string {
	return f.marshal(NewSummaryData(summary))
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: failed to marshal: %s\n", err)
	}
	return string(output)
}

// FormatRequest formats a raw request as YAML
func (f *YAMLFormatter) FormatRequest(raw []byte) string {
	return f.marshal(NewRequestData(raw))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(NewResponseData(resp, f.Verbose))
}

// FormatExtractions formats extracted values as a YAML mapping
func (f *YAMLFormatter) FormatExtractions(values map[string]string) string {
	return f.marshal(values)
}

// FormatSummary formats a run summary as YAML
func (f *YAMLFormatter) FormatSummary(summary stats.Summary) string {
	return f.marshal(NewSummaryData(summary))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
