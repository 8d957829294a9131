package header

import (
	"net/url"
	"strings"
)

// Cookies is an ordered name/value set serialized into one Cookie header
type Cookies struct {
	names  []string
	values map[string]string
}

// NewCookies returns an empty cookie set
func NewCookies() *Cookies {
	return &Cookies{values: make(map[string]string)}
}

// Set stores a cookie, replacing an existing one with the same name
func (c *Cookies) Set(name, value string) {
	if name == "" {
		return
	}
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = value
}

// SetAll stores every cookie of m in sorted name order
func (c *Cookies) SetAll(m map[string]string) {
	for _, k := range sortedKeys(m) {
		c.Set(k, m[k])
	}
}

// Get returns the value of a cookie
func (c *Cookies) Get(name string) string {
	if c == nil {
		return ""
	}
	return c.values[name]
}

// Len returns the number of cookies
func (c *Cookies) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Clone returns a deep copy
func (c *Cookies) Clone() *Cookies {
	out := NewCookies()
	if c == nil {
		return out
	}
	for _, n := range c.names {
		out.Set(n, c.values[n])
	}
	return out
}

// String serializes the set as "name1=value1; name2=value2"
func (c *Cookies) String() string {
	if c.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.names))
	for _, n := range c.names {
		parts = append(parts, url.QueryEscape(n)+"="+url.QueryEscape(c.values[n]))
	}
	return strings.Join(parts, "; ")
}
