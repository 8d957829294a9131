package config

import (
	"fmt"
	"sort"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/target"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the defaults and every profile. Errors come
// back in a stable order.
func ValidateConfig(config *Config) []ValidationError {
	errors := validateProfile("defaults", config.Defaults, config.Variables)
	for _, name := range sortedKeys(config.Profiles) {
		if name == "" {
			errors = append(errors, ValidationError{
				Path:    "profiles",
				Message: "profile name cannot be empty",
			})
			continue
		}
		p := mergeProfiles(config.Defaults, config.Profiles[name])
		errors = append(errors, validateProfile("profiles."+name, p, config.Variables)...)
	}
	return errors
}

func validateProfile(path string, p Profile, vars map[string]string) []ValidationError {
	var errors []ValidationError
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Path: path + "." + field, Message: msg})
	}

	vars = MergeVariables(vars, p.Variables)
	if p.BaseURL != "" {
		base := ProcessVariables(p.BaseURL, vars)
		if !target.IsAbsolute(base) {
			add("baseUrl", fmt.Sprintf("must be an absolute http(s) URL: %s", base))
		} else if _, err := target.Resolve("", base); err != nil {
			add("baseUrl", err.Error())
		}
	}

	if p.Driver != "" && p.Driver != "auto" {
		if _, ok := http.DefaultRegistry().Get(p.Driver); !ok {
			add("driver", fmt.Sprintf("unknown driver: %s", p.Driver))
		}
	}

	if p.Method != "" {
		if _, err := p.RequestMethod(); err != nil {
			add("method", err.Error())
		}
	}

	if p.Timeout < 0 {
		add("timeout", "cannot be negative")
	}
	if p.RetryDelay < 0 {
		add("retryDelay", "cannot be negative")
	}
	if p.Retry != nil && *p.Retry < 0 {
		add("retry", "cannot be negative")
	}
	if p.FollowRedirects != nil && *p.FollowRedirects < 0 {
		add("followRedirects", "cannot be negative")
	}

	if p.Proxy != "" {
		if _, _, err := ParseProxy(ProcessVariables(string(p.Proxy), vars)); err != nil {
			add("proxy", err.Error())
		}
	}

	if p.Auth != nil {
		if p.Auth.User == "" {
			add("auth.user", "user is required")
		}
		if _, err := ParseAuthScheme(p.Auth.Scheme); err != nil {
			add("auth.scheme", err.Error())
		}
	}

	for _, name := range sortedKeys(p.Headers) {
		if name == "" {
			add("headers", "header name cannot be empty")
		}
	}

	return errors
}

// ValidateProfile validates that a profile exists
func ValidateProfile(config *Config, name string) error {
	if _, ok := config.Profiles[name]; !ok {
		return fmt.Errorf("profile not found: %s", name)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
