// Package body turns request data into an encoded payload or query string.
package body

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	httperrors "github.com/wesleyorama2/sockhttp/internal/errors"
	"github.com/wesleyorama2/sockhttp/internal/header"
)

// Content types recognized by the encoder
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// Encode serializes data for a request body and records Content-Type and
// Content-Length on h.
//
// Scalars (string, []byte, numbers, booleans) are sent as they are.
// Structured data is JSON-encoded when the declared Content-Type mentions
// json and form-encoded otherwise. A missing Content-Type defaults to form.
func Encode(h *header.Header, data interface{}) (string, error) {
	var payload string

	if s, ok := scalar(data); ok {
		payload = s
		h.Add("Content-Type", ContentTypeForm)
	} else {
		contentType := strings.ToLower(h.Get("Content-Type"))
		switch {
		case strings.Contains(contentType, "json"):
			b, err := json.Marshal(data)
			if err != nil {
				return "", httperrors.Wrap(httperrors.InvalidArgument, "encode json", err)
			}
			payload = string(b)
		default:
			values, err := Values(data)
			if err != nil {
				return "", err
			}
			payload = values.Encode()
			h.Add("Content-Type", ContentTypeForm)
		}
	}

	h.Set("Content-Length", strconv.Itoa(len(payload)))
	return payload, nil
}

// Query encodes data for appending to a URL. Scalars are taken as already
// encoded.
func Query(data interface{}) (string, error) {
	if data == nil {
		return "", nil
	}
	if s, ok := scalar(data); ok {
		return s, nil
	}
	values, err := Values(data)
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

// IsEmpty reports whether data carries nothing to send
func IsEmpty(data interface{}) bool {
	if data == nil {
		return true
	}
	if s, ok := scalar(data); ok {
		return s == ""
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func scalar(data interface{}) (string, bool) {
	switch v := data.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// Values flattens structured data into url.Values. Nested maps become
// "parent[child]" keys and slices become "parent[0]", "parent[1]".
// Structs are converted through their JSON form.
func Values(data interface{}) (url.Values, error) {
	switch v := data.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return v, nil
	case map[string][]string:
		return url.Values(v), nil
	case map[string]string:
		out := make(url.Values, len(v))
		for k, val := range v {
			out.Set(k, val)
		}
		return out, nil
	case map[string]interface{}:
		out := make(url.Values, len(v))
		flatten(out, "", v)
		return out, nil
	}

	// Anything else goes through its JSON representation
	b, err := json.Marshal(data)
	if err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidArgument, "encode form", err)
	}
	var generic interface{}
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, httperrors.Wrap(httperrors.InvalidArgument, "encode form", err)
	}
	m, ok := generic.(map[string]interface{})
	if !ok {
		return nil, httperrors.New(httperrors.InvalidArgument, "cannot form-encode %T", data)
	}
	out := make(url.Values, len(m))
	flatten(out, "", m)
	return out, nil
}

func flatten(out url.Values, prefix string, value interface{}) {
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "[" + k + "]"
	}

	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(out, key(k), v[k])
		}
	case map[string]string:
		for k, s := range v {
			out.Add(key(k), s)
		}
	case []interface{}:
		for i, item := range v {
			flatten(out, key(strconv.Itoa(i)), item)
		}
	case []string:
		for i, item := range v {
			out.Add(key(strconv.Itoa(i)), item)
		}
	case nil:
		out.Add(prefix, "")
	default:
		if s, ok := scalar(v); ok {
			out.Add(prefix, s)
			return
		}
		out.Add(prefix, fmt.Sprint(v))
	}
}
