package http1

import (
	"strings"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
)

// Method is an HTTP request method
type Method string

// Supported methods
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodSearch  Method = "SEARCH"
	MethodConnect Method = "CONNECT"
)

var methods = map[Method]struct {
	body       bool
	idempotent bool
}{
	MethodGet:     {false, true},
	MethodPost:    {true, false},
	MethodPut:     {true, true},
	MethodPatch:   {true, false},
	MethodDelete:  {false, true},
	MethodHead:    {false, true},
	MethodOptions: {false, true},
	MethodTrace:   {false, true},
	MethodSearch:  {false, true},
	MethodConnect: {false, false},
}

// ParseMethod upper-cases s and checks it against the supported set
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := methods[m]; !ok {
		return "", httperrors.New(httperrors.InvalidArgument, "unsupported request method %q", s)
	}
	return m, nil
}

// Supported reports whether m is a known method
func (m Method) Supported() bool {
	_, ok := methods[m]
	return ok
}

// AllowsBody reports whether data for m travels in the request body.
// For every other method data is appended to the query string.
func (m Method) AllowsBody() bool {
	return methods[m].body
}

// Idempotent reports whether m may be repeated without side effects
func (m Method) Idempotent() bool {
	return methods[m].idempotent
}

func (m Method) String() string {
	return string(m)
}
