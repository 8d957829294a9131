package config

import (
	"github.com/wesleyorama2/sockhttp/http"
	iconfig "github.com/wesleyorama2/sockhttp/internal/config"
)

type (
	Config          = iconfig.Config
	Profile         = iconfig.Profile
	Auth            = iconfig.Auth
	Duration        = iconfig.Duration
	ValidationError = iconfig.ValidationError
)

var (
	LoadConfig      = iconfig.LoadConfig
	ParseConfig     = iconfig.ParseConfig
	ValidateConfig  = iconfig.ValidateConfig
	ValidateProfile = iconfig.ValidateProfile
	ParseProxy      = iconfig.ParseProxy
	ParseAuthScheme = iconfig.ParseAuthScheme

	ProcessVariables      = iconfig.ProcessVariables
	ProcessVariablesInMap = iconfig.ProcessVariablesInMap
	MergeVariables        = iconfig.MergeVariables
)

// NewClient loads path and builds a client from the named profile.
// An empty name selects the defaults block.
func NewClient(path, profile string, extra ...http.ClientOption) (*http.Client, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	p, err := cfg.Profile(profile)
	if err != nil {
		return nil, err
	}
	options, err := p.ClientOptions()
	if err != nil {
		return nil, err
	}
	return http.NewClient(append(options, extra...)...), nil
}
