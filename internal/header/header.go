// Package header keeps request and response header fields in insertion
// order under canonical title-case names.
package header

import (
	"sort"
	"strings"
)

// CanonicalKey title-cases a field name: the first letter and every letter
// after a hyphen or space become upper case, the rest lower case.
// "content-type", "CONTENT-TYPE" and "Content-type" all map to "Content-Type".
func CanonicalKey(name string) string {
	name = strings.TrimSpace(name)
	b := []byte(name)
	upper := true
	for i, c := range b {
		switch {
		case upper && 'a' <= c && c <= 'z':
			b[i] = c - ('a' - 'A')
		case !upper && 'A' <= c && c <= 'Z':
			b[i] = c + ('a' - 'A')
		}
		upper = c == '-' || c == ' '
	}
	return string(b)
}

// Header is an ordered, case-insensitive header map. The zero value is
// ready to use.
type Header struct {
	keys   []string
	values map[string]string
}

// New returns an empty Header
func New() *Header {
	return &Header{values: make(map[string]string)}
}

// FromMap builds a Header from a plain map. Keys are inserted in sorted
// order so the result is deterministic.
func FromMap(m map[string]string) *Header {
	h := New()
	for _, k := range sortedKeys(m) {
		h.Set(k, m[k])
	}
	return h
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under name, replacing any previous value. A replaced
// field keeps its original position.
func (h *Header) Set(name, value string) {
	key := CanonicalKey(name)
	if key == "" {
		return
	}
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Add stores value only when name is not present yet. It reports whether
// the value was stored.
func (h *Header) Add(name, value string) bool {
	if h.Has(name) {
		return false
	}
	h.Set(name, value)
	return true
}

// Get returns the value for name or ""
func (h *Header) Get(name string) string {
	if h == nil {
		return ""
	}
	return h.values[CanonicalKey(name)]
}

// Lookup returns the value for name and whether it was present
func (h *Header) Lookup(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	v, ok := h.values[CanonicalKey(name)]
	return v, ok
}

// Has reports whether name is present
func (h *Header) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Del removes the named fields
func (h *Header) Del(names ...string) {
	if h == nil {
		return
	}
	for _, name := range names {
		key := CanonicalKey(name)
		if _, ok := h.values[key]; !ok {
			continue
		}
		delete(h.values, key)
		for i, k := range h.keys {
			if k == key {
				h.keys = append(h.keys[:i], h.keys[i+1:]...)
				break
			}
		}
	}
}

// Len returns the number of fields
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Keys returns the canonical names in insertion order
func (h *Header) Keys() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Each calls fn for every field in insertion order
func (h *Header) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}

// Clone returns a deep copy
func (h *Header) Clone() *Header {
	out := New()
	h.Each(out.Set)
	return out
}

// Merge copies every field of src into h. With override false, fields
// already present in h are kept.
func (h *Header) Merge(src *Header, override bool) {
	src.Each(func(name, value string) {
		if override {
			h.Set(name, value)
		} else {
			h.Add(name, value)
		}
	})
}

// Map returns the fields as a plain map
func (h *Header) Map() map[string]string {
	out := make(map[string]string, h.Len())
	h.Each(func(name, value string) {
		out[name] = value
	})
	return out
}
