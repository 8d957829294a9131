package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/http1"
)

// Config is a client configuration file. JSON files are accepted too.
type Config struct {
	Defaults  Profile            `yaml:"defaults"`
	Profiles  map[string]Profile `yaml:"profiles"`
	Variables map[string]string  `yaml:"variables,omitempty"`
}

// Profile holds the client settings for one target service. Unset fields
// fall back to the defaults section, then to the client defaults.
type Profile struct {
	Method             string            `yaml:"method,omitempty"`
	BaseURL            string            `yaml:"baseUrl,omitempty"`
	Driver             string            `yaml:"driver,omitempty"`
	Timeout            Duration          `yaml:"timeout,omitempty"`
	Retry              *int              `yaml:"retry,omitempty"`
	RetryDelay         Duration          `yaml:"retryDelay,omitempty"`
	RetryNonIdempotent *bool             `yaml:"retryNonIdempotent,omitempty"`
	SSLVerify          *bool             `yaml:"sslVerify,omitempty"`
	Persistent         *bool             `yaml:"persistent,omitempty"`
	FollowRedirects    *int              `yaml:"followRedirects,omitempty"`
	UserAgent          *string           `yaml:"userAgent,omitempty"`
	Proxy              ProxyAddress      `yaml:"proxy,omitempty"`
	Auth               *Auth             `yaml:"auth,omitempty"`
	Debug              *bool             `yaml:"debug,omitempty"`
	Headers            map[string]string `yaml:"headers,omitempty"`
	Cookies            map[string]string `yaml:"cookies,omitempty"`
	Variables          map[string]string `yaml:"variables,omitempty"`

	// Extra collects keys this version does not recognize
	Extra map[string]interface{} `yaml:",inline"`
}

// Auth holds request credentials
type Auth struct {
	User     string `yaml:"user"`
	Password string `yaml:"pwd"`
	Scheme   string `yaml:"scheme,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler. "password" is accepted as a
// spelling of "pwd"; pwd wins when both are set.
func (a *Auth) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		User     string `yaml:"user"`
		Pwd      string `yaml:"pwd"`
		Password string `yaml:"password"`
		Scheme   string `yaml:"scheme"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	a.User, a.Scheme = raw.User, raw.Scheme
	a.Password = raw.Pwd
	if a.Password == "" {
		a.Password = raw.Password
	}
	return nil
}

// Duration accepts Go durations ("1.5s"), spelled units ("2 minutes") or
// a plain number of seconds
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if secs, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := parseDurationString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// ProxyAddress is "host:port". Files may also spell it as a mapping with
// host and port keys.
type ProxyAddress string

// UnmarshalYAML implements yaml.Unmarshaler
func (a *ProxyAddress) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = ProxyAddress(node.Value)
		return nil
	case yaml.MappingNode:
		var hp struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
		}
		if err := node.Decode(&hp); err != nil {
			return err
		}
		if hp.Host == "" {
			return fmt.Errorf("line %d: proxy host is required", node.Line)
		}
		*a = ProxyAddress(net.JoinHostPort(hp.Host, strconv.Itoa(hp.Port)))
		return nil
	}
	return fmt.Errorf("line %d: proxy must be \"host:port\" or {host, port}", node.Line)
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LoadConfig loads and validates a configuration file
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates configuration data
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if errs := ValidateConfig(&config); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	return &config, nil
}

// Profile returns the named profile merged over the defaults, with
// {{variable}} references expanded. An empty name returns the defaults.
func (c *Config) Profile(name string) (Profile, error) {
	merged := c.Defaults
	if name != "" {
		p, ok := c.Profiles[name]
		if !ok {
			return Profile{}, fmt.Errorf("profile not found: %s", name)
		}
		merged = mergeProfiles(c.Defaults, p)
	}

	vars := MergeVariables(c.Variables, merged.Variables)
	merged.BaseURL = ProcessVariables(merged.BaseURL, vars)
	merged.Proxy = ProxyAddress(ProcessVariables(string(merged.Proxy), vars))
	merged.Headers = ProcessVariablesInMap(merged.Headers, vars)
	merged.Cookies = ProcessVariablesInMap(merged.Cookies, vars)
	if merged.Auth != nil {
		auth := *merged.Auth
		auth.User = ProcessVariables(auth.User, vars)
		auth.Password = ProcessVariables(auth.Password, vars)
		merged.Auth = &auth
	}
	return merged, nil
}

// ClientOptions turns the profile into client options
func (p Profile) ClientOptions() ([]http.ClientOption, error) {
	var opts []http.ClientOption

	if p.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(p.BaseURL))
	}
	if p.Driver != "" {
		opts = append(opts, http.WithDriverName(p.Driver))
	}
	if p.Timeout > 0 {
		opts = append(opts, http.WithTimeout(time.Duration(p.Timeout)))
	}
	if p.Retry != nil {
		opts = append(opts, http.WithRetry(*p.Retry))
	}
	if p.RetryDelay > 0 {
		opts = append(opts, http.WithRetryDelay(time.Duration(p.RetryDelay)))
	}
	if p.RetryNonIdempotent != nil {
		opts = append(opts, http.WithRetryNonIdempotent(*p.RetryNonIdempotent))
	}
	if p.SSLVerify != nil {
		opts = append(opts, http.WithSSLVerify(*p.SSLVerify))
	}
	if p.Persistent != nil {
		opts = append(opts, http.WithPersistent(*p.Persistent))
	}
	if p.FollowRedirects != nil {
		opts = append(opts, http.WithFollowRedirects(*p.FollowRedirects))
	}
	if p.UserAgent != nil {
		opts = append(opts, http.WithUserAgent(*p.UserAgent))
	}
	if p.Debug != nil {
		opts = append(opts, http.WithDebug(*p.Debug))
	}
	if len(p.Headers) > 0 {
		opts = append(opts, http.WithHeaders(p.Headers))
	}
	for _, name := range sortedKeys(p.Cookies) {
		opts = append(opts, http.WithCookie(name, p.Cookies[name]))
	}
	if p.Proxy != "" {
		host, port, err := ParseProxy(string(p.Proxy))
		if err != nil {
			return nil, err
		}
		opts = append(opts, http.WithProxy(host, port))
	}
	for _, key := range sortedKeys(p.Extra) {
		opts = append(opts, http.WithExtra(key, p.Extra[key]))
	}
	if p.Auth != nil {
		scheme, err := ParseAuthScheme(p.Auth.Scheme)
		if err != nil {
			return nil, err
		}
		opts = append(opts, http.WithAuth(p.Auth.User, p.Auth.Password, scheme))
	}

	return opts, nil
}

// RequestMethod returns the profile's method, GET when unset
func (p Profile) RequestMethod() (http1.Method, error) {
	if p.Method == "" {
		return http1.MethodGet, nil
	}
	return http1.ParseMethod(p.Method)
}

// ParseProxy splits "host:port"
func ParseProxy(proxy string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(proxy, "http://"))
	if err != nil {
		return "", 0, fmt.Errorf("invalid proxy %q: %w", proxy, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid proxy port in %q", proxy)
	}
	if host == "" {
		return "", 0, fmt.Errorf("invalid proxy %q: empty host", proxy)
	}
	return host, port, nil
}

// ParseAuthScheme maps "basic" (or empty) and "digest" to a scheme
func ParseAuthScheme(scheme string) (http.AuthScheme, error) {
	switch strings.ToLower(scheme) {
	case "", "basic":
		return http.AuthBasic, nil
	case "digest":
		return http.AuthDigest, nil
	}
	return http.AuthBasic, fmt.Errorf("unknown auth scheme %q", scheme)
}

// mergeProfiles overlays p on base field by field. Maps are merged with
// p's entries winning.
func mergeProfiles(base, p Profile) Profile {
	out := base
	if p.Method != "" {
		out.Method = p.Method
	}
	if p.BaseURL != "" {
		out.BaseURL = p.BaseURL
	}
	if p.Driver != "" {
		out.Driver = p.Driver
	}
	if p.Timeout != 0 {
		out.Timeout = p.Timeout
	}
	if p.Retry != nil {
		out.Retry = p.Retry
	}
	if p.RetryDelay != 0 {
		out.RetryDelay = p.RetryDelay
	}
	if p.RetryNonIdempotent != nil {
		out.RetryNonIdempotent = p.RetryNonIdempotent
	}
	if p.SSLVerify != nil {
		out.SSLVerify = p.SSLVerify
	}
	if p.Persistent != nil {
		out.Persistent = p.Persistent
	}
	if p.FollowRedirects != nil {
		out.FollowRedirects = p.FollowRedirects
	}
	if p.UserAgent != nil {
		out.UserAgent = p.UserAgent
	}
	if p.Proxy != "" {
		out.Proxy = p.Proxy
	}
	if p.Auth != nil {
		out.Auth = p.Auth
	}
	if p.Debug != nil {
		out.Debug = p.Debug
	}
	out.Headers = MergeVariables(base.Headers, p.Headers)
	out.Cookies = MergeVariables(base.Cookies, p.Cookies)
	out.Variables = MergeVariables(base.Variables, p.Variables)
	if len(base.Extra)+len(p.Extra) > 0 {
		out.Extra = make(map[string]interface{}, len(base.Extra)+len(p.Extra))
		for k, v := range base.Extra {
			out.Extra[k] = v
		}
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// parseDurationString parses duration strings like "30s", "5m", "1 minute"
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ToLower(strings.ReplaceAll(duration, " ", ""))

	// Longest words first so "seconds" is not left as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"milliseconds", "ms"},
		{"millisecond", "ms"},
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}
	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

// ProcessVariables replaces {{name}} references in input
func ProcessVariables(input string, vars map[string]string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	result := input
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessVariablesInMap replaces {{name}} references in every value
func ProcessVariablesInMap(input map[string]string, vars map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessVariables(value, vars)
	}
	return result
}

// MergeVariables merges two maps, with the second taking precedence
func MergeVariables(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
