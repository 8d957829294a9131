package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/wesleyorama2/sockhttp/internal/config"
	"github.com/wesleyorama2/sockhttp/internal/http"
)

// requestFlags holds every flag shared by the request commands
type requestFlags struct {
	headers    []string
	data       string
	json       string
	cookies    []string
	timeout    time.Duration
	retry      int
	proxy      string
	user       string
	digest     bool
	location   int
	persistent bool
	insecure   bool
	driver     string
	configPath string
	profile    string
	extract    []string
	schema     string
	repeat     int
	rate       float64
	dryRun     bool
	verbose    bool
	debug      bool
	noColor    bool
	format     string
	metrics    bool

	set *pflag.FlagSet
}

func (f *requestFlags) bind(fs *pflag.FlagSet) {
	f.set = fs
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "HTTP header to include, \"Name: value\" (repeatable)")
	fs.StringVarP(&f.data, "data", "d", "", "Request data, sent as form body or query string")
	fs.StringVarP(&f.json, "json", "j", "", "JSON request body")
	fs.StringArrayVarP(&f.cookies, "cookie", "b", nil, "Cookie to send, \"name=value\" (repeatable)")
	fs.DurationVarP(&f.timeout, "timeout", "t", http.DefaultTimeout, "Connect and read timeout")
	fs.IntVar(&f.retry, "retry", http.DefaultRetry, "Retries after a retryable failure")
	fs.StringVar(&f.proxy, "proxy", "", "HTTP proxy as host:port")
	fs.StringVarP(&f.user, "user", "u", "", "Credentials as user:password")
	fs.BoolVar(&f.digest, "digest", false, "Use digest instead of basic authentication")
	fs.IntVarP(&f.location, "location", "L", 0, "Follow up to N redirects")
	fs.BoolVar(&f.persistent, "persistent", false, "Keep the connection open between repeated requests")
	fs.BoolVar(&f.insecure, "insecure", false, "Skip TLS certificate verification")
	fs.StringVar(&f.driver, "driver", "", "Transport driver: socket, stream, nethttp or auto")
	fs.StringVar(&f.configPath, "config", "", "Configuration file (YAML or JSON)")
	fs.StringVar(&f.profile, "profile", "", "Profile from the configuration file")
	fs.StringArrayVar(&f.extract, "extract", nil, "Extract a JSON value, name=$.path (repeatable)")
	fs.StringVar(&f.schema, "schema", "", "Validate the JSON body against a schema file")
	fs.IntVar(&f.repeat, "repeat", 1, "Send the request N times and print latency statistics")
	fs.Float64Var(&f.rate, "rate", 0, "Requests per second when repeating (0 = unlimited)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the raw request without sending it")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Show the raw request, timing and headers")
	fs.BoolVar(&f.debug, "debug", false, "Log transport activity to stderr")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.format, "format", "text", "Output format: text, json or yaml")
	fs.BoolVar(&f.metrics, "metrics", false, "Print Prometheus metrics to stderr when done")
}

// changed reports whether a flag was given on the command line
func (f *requestFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// clientOptions layers the command line over the configuration profile
// loadProfile returns the selected config profile, or nil without --config
func (f *requestFlags) loadProfile() (*config.Profile, error) {
	if f.configPath == "" {
		if f.profile != "" {
			return nil, fmt.Errorf("--profile requires --config")
		}
		return nil, nil
	}
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Profile(f.profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// defaultMethod is the profile's method, or GET
func (f *requestFlags) defaultMethod() (string, error) {
	profile, err := f.loadProfile()
	if err != nil || profile == nil {
		return "GET", err
	}
	method, err := profile.RequestMethod()
	return string(method), err
}

func (f *requestFlags) clientOptions(logOut io.Writer) ([]http.ClientOption, error) {
	var opts []http.ClientOption

	profile, err := f.loadProfile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		profileOpts, err := profile.ClientOptions()
		if err != nil {
			return nil, err
		}
		opts = append(opts, profileOpts...)
	}

	if f.configPath == "" || f.changed("timeout") {
		opts = append(opts, http.WithTimeout(f.timeout))
	}
	if f.configPath == "" || f.changed("retry") {
		opts = append(opts, http.WithRetry(f.retry))
	}
	if f.configPath == "" || f.changed("insecure") {
		opts = append(opts, http.WithSSLVerify(!f.insecure))
	}
	if f.changed("location") {
		opts = append(opts, http.WithFollowRedirects(f.location))
	}
	if f.changed("persistent") {
		opts = append(opts, http.WithPersistent(f.persistent))
	}
	if f.driver != "" {
		opts = append(opts, http.WithDriverName(f.driver))
	}
	if f.debug {
		opts = append(opts, http.WithDebug(true))
	}

	if f.proxy != "" {
		host, port, err := config.ParseProxy(f.proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, http.WithProxy(host, port))
	}

	if f.user != "" {
		user, password, _ := strings.Cut(f.user, ":")
		scheme := http.AuthBasic
		if f.digest {
			scheme = http.AuthDigest
		}
		opts = append(opts, http.WithAuth(user, password, scheme))
	}

	for _, c := range f.cookies {
		name, value, ok := strings.Cut(c, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid cookie %q, expected name=value", c)
		}
		opts = append(opts, http.WithCookie(strings.TrimSpace(name), value))
	}

	logger := logrus.New()
	logger.SetOutput(logOut)
	logger.SetLevel(logrus.WarnLevel)
	if f.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	opts = append(opts, http.WithLogger(logger))

	return opts, nil
}

// callHeaders parses -H values. A JSON body adds its Content-Type unless
// one was given.
func (f *requestFlags) callHeaders() (map[string]string, error) {
	headers := make(map[string]string, len(f.headers)+1)
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if f.json != "" {
		hasType := false
		for name := range headers {
			if strings.EqualFold(name, "Content-Type") {
				hasType = true
			}
		}
		if !hasType {
			headers["Content-Type"] = "application/json"
		}
	}
	return headers, nil
}

// payload returns the request data, JSON taking precedence
func (f *requestFlags) payload() (interface{}, error) {
	if f.json != "" && f.data != "" {
		return nil, fmt.Errorf("--data and --json cannot be combined")
	}
	if f.json != "" {
		return f.json, nil
	}
	if f.data != "" {
		return f.data, nil
	}
	return nil, nil
}
