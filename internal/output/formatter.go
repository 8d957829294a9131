package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/stats"
)

// Formatter renders requests and responses as human-readable text
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatRequest shows the request line and, when verbose, the exact bytes
// written to the connection
func (f *Formatter) FormatRequest(raw []byte) string {
	var buf strings.Builder
	data := NewRequestData(raw)

	method, target, _ := strings.Cut(data.RequestLine, " ")
	target, _, _ = strings.Cut(target, " ")
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s (%d bytes)\n",
		f.colors.Method.Sprint(method), f.colors.URL.Sprint(target), data.Size))

	if f.Verbose {
		head, body, _ := strings.Cut(string(raw), "\r\n\r\n")
		for _, line := range strings.Split(head, "\r\n") {
			buf.WriteString(f.colors.Wire.Sprint("  > " + line))
			buf.WriteString("\n")
		}
		if body != "" {
			buf.WriteString("  Body: ")
			buf.WriteString(formatJSONString(body))
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	status := resp.Status
	if status == "" {
		status = fmt.Sprint(resp.StatusCode)
	}
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms, %s",
		f.colors.Status(resp.StatusCode).Sprint(status),
		resp.GetResponseTimeMillis(),
		resp.Driver))
	if resp.Attempts > 1 {
		buf.WriteString(fmt.Sprintf(", %d attempts", resp.Attempts))
	}
	if resp.Redirects > 0 {
		buf.WriteString(fmt.Sprintf(", %d redirects", resp.Redirects))
	}
	buf.WriteString(")\n")

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.GetDNSLookupTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.GetTCPConnectTimeMillis()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.GetTLSHandshakeTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.GetContentTransferTimeMillis()))
		buf.WriteString(fmt.Sprintf("    Total:              %dms\n", resp.GetTotalTimeMillis()))

		buf.WriteString("  Headers:\n")
		resp.Headers.Each(func(name, value string) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(name), value))
		})
	}

	if body := resp.GetBodyAsString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatExtractions lists extracted values sorted by name
func (f *Formatter) FormatExtractions(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString(f.colors.Label.Sprint("Extracted:"))
	buf.WriteString("\n")
	for _, name := range sortedKeys(values) {
		buf.WriteString(fmt.Sprintf("  %s = %s\n", name, values[name]))
	}
	return buf.String()
}

// FormatSummary renders latency percentiles and status counts
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder

	buf.WriteString(f.colors.Label.Sprint("Summary:"))
	buf.WriteString(fmt.Sprintf(" %d requests, %d failed, %.1f req/s over %s\n",
		s.Requests, s.Failures, s.RPS, s.Elapsed.Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("  Latency: min %s  mean %s  p50 %s  p90 %s  p95 %s  p99 %s  max %s\n",
		s.Min, s.Mean, s.P50, s.P90, s.P95, s.P99, s.Max))

	if len(s.Statuses) > 0 {
		codes := make([]int, 0, len(s.Statuses))
		for code := range s.Statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, fmt.Sprintf("%s×%d", f.colors.Status(code).Sprint(code), s.Statuses[code]))
		}
		buf.WriteString("  Status:  " + strings.Join(parts, "  ") + "\n")
	}

	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
