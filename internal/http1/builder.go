package http1

import (
	"bytes"
	"strings"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
)

// BuildRequest serializes an HTTP/1.1 request. uri is the request target
// (origin-form, or absolute-form when talking to a proxy). Header fields are
// written in insertion order and the body is appended verbatim.
func BuildRequest(method Method, uri string, h *header.Header, body string) ([]byte, error) {
	if !method.Supported() {
		return nil, httperrors.New(httperrors.InvalidArgument, "unsupported request method %q", method)
	}
	if uri == "" || strings.ContainsAny(uri, " \r\n") {
		return nil, httperrors.New(httperrors.InvalidArgument, "invalid request target %q", uri)
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(body))

	// Request line
	buf.WriteString(string(method))
	buf.WriteByte(' ')
	buf.WriteString(uri)
	buf.WriteString(" HTTP/1.1\r\n")

	// Header fields
	h.Each(func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(sanitizeValue(value))
		buf.WriteString("\r\n")
	})

	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// sanitizeValue drops CR, LF and other control bytes so a value can never
// start a new header line. Horizontal tab is allowed.
func sanitizeValue(v string) string {
	clean := true
	for i := 0; i < len(v); i++ {
		if c := v[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return v
	}
	b := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if c := v[i]; (c >= 0x20 || c == '\t') && c != 0x7f {
			b = append(b, c)
		}
	}
	return string(b)
}
