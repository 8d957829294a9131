// Package inspect pulls values out of response bodies and checks them
// against JSON schemas.
package inspect

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extraction names one value to pull from a JSON body
type Extraction struct {
	Name string
	Path string
}

// ParseExtraction parses a "name=path" pair. A bare path is named after
// its last segment.
func ParseExtraction(spec string) (Extraction, error) {
	name, path, ok := strings.Cut(spec, "=")
	if !ok {
		path = spec
		name = lastSegment(spec)
	}
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if path == "" {
		return Extraction{}, fmt.Errorf("empty path in extraction %q", spec)
	}
	if name == "" {
		return Extraction{}, fmt.Errorf("empty name in extraction %q", spec)
	}
	return Extraction{Name: name, Path: path}, nil
}

// Extract returns the value at a JSONPath-style path ($.items[0].id) in
// body. Strings come back unquoted, null as "null", objects and arrays as
// raw JSON.
func Extract(body []byte, path string) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty body")
	}
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("body is not valid JSON")
	}

	result := gjson.GetBytes(body, toGJSON(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractAll runs every extraction. Values that were found are returned
// even when others fail; the error lists the failures.
func ExtractAll(body []byte, extractions []Extraction) (map[string]string, error) {
	values := make(map[string]string, len(extractions))
	var failed []string
	for _, e := range extractions {
		v, err := Extract(body, e.Path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", e.Name, err))
			continue
		}
		values[e.Name] = v
	}
	if len(failed) > 0 {
		return values, fmt.Errorf("extraction failed: %s", strings.Join(failed, "; "))
	}
	return values, nil
}

// toGJSON rewrites $.a['b'][0] into gjson's a.b.0
func toGJSON(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	var sb strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c != '[' {
			sb.WriteByte(c)
			continue
		}
		end := strings.IndexByte(path[i:], ']')
		if end < 0 {
			sb.WriteString(path[i:])
			break
		}
		key := strings.Trim(path[i+1:i+end], `'"`)
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(key)
		i += end
	}
	return sb.String()
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "]'\"")
	if i := strings.LastIndexAny(path, ".['\""); i >= 0 {
		return path[i+1:]
	}
	return strings.TrimPrefix(path, "$")
}
