// Package config provides centralized configuration management for the application.
//
// Configuration is resolved once per process from environment variables and
// carried as an immutable value; adapters receive it by handle and never
// consult the environment again. Validation never performs network I/O.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// ServiceConfig holds the credential/endpoint bundle for one backend.
type ServiceConfig struct {
	// Service is the backend name: "jira", "confluence", or "bitbucket".
	Service string
	// BaseURL is the instance base URL, e.g. https://company.atlassian.net.
	BaseURL string
	// Username and APIToken authenticate Cloud instances (basic auth).
	Username string
	APIToken string
	// PATToken authenticates Data Center instances (bearer header).
	// When set it takes precedence over the basic pair.
	PATToken string
	// APIVersion overrides REST API version detection ("2" or "3").
	APIVersion string
}

// Config holds the bundles for all three backends.
type Config struct {
	Jira       ServiceConfig
	Confluence ServiceConfig
	Bitbucket  ServiceConfig
}

// LoadConfig reads configuration from environment variables. It never
// fails: per-service validation happens when a service is first used, so a
// process configured for only one backend still starts.
func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	load := func(service, prefix string) ServiceConfig {
		v.BindEnv(strings.ToLower(service)+".url", prefix+"_URL")
		v.BindEnv(strings.ToLower(service)+".username", prefix+"_USERNAME")
		v.BindEnv(strings.ToLower(service)+".api_token", prefix+"_API_TOKEN")
		v.BindEnv(strings.ToLower(service)+".pat_token", prefix+"_PAT_TOKEN")
		v.BindEnv(strings.ToLower(service)+".api_version", prefix+"_API_VERSION")

		key := strings.ToLower(service)
		return ServiceConfig{
			Service:    service,
			BaseURL:    strings.TrimRight(v.GetString(key+".url"), "/"),
			Username:   v.GetString(key + ".username"),
			APIToken:   v.GetString(key + ".api_token"),
			PATToken:   v.GetString(key + ".pat_token"),
			APIVersion: v.GetString(key + ".api_version"),
		}
	}

	return &Config{
		Jira:       load("jira", "JIRA"),
		Confluence: load("confluence", "CONFLUENCE"),
		Bitbucket:  load("bitbucket", "BITBUCKET"),
	}
}

// envPrefix returns the environment variable prefix for the service.
func (s ServiceConfig) envPrefix() string {
	return strings.ToUpper(s.Service)
}

// AuthMode resolves the authentication variant once. A personal access
// token wins over the basic pair when both are present.
func (s ServiceConfig) AuthMode() (atlassian.AuthMode, error) {
	switch {
	case s.PATToken != "":
		return atlassian.AuthBearerPAT, nil
	case s.Username != "" && s.APIToken != "":
		return atlassian.AuthBasicAPIToken, nil
	default:
		return "", s.missingAuthError()
	}
}

func (s ServiceConfig) missingAuthError() error {
	prefix := s.envPrefix()
	return atlassian.Configurationf(
		"Missing authentication credentials for %s. Provide either %s_PAT_TOKEN (Data Center/Server) or %s_USERNAME and %s_API_TOKEN (Cloud)",
		prefix, prefix, prefix, prefix)
}

// Validate checks that the bundle is complete. It returns a
// ConfigurationError naming the missing environment variables and performs
// no network I/O.
func (s ServiceConfig) Validate() error {
	if s.BaseURL == "" {
		return atlassian.Configurationf(
			"Missing required configuration: %s_URL. Please set this environment variable",
			s.envPrefix())
	}
	if _, err := s.AuthMode(); err != nil {
		return err
	}
	return nil
}

// IsCloud reports whether the base URL points at an Atlassian Cloud
// instance.
func (s ServiceConfig) IsCloud() bool {
	return strings.Contains(strings.ToLower(s.BaseURL), "atlassian.net")
}

// DetectAPIVersion picks the REST API version: an explicit override wins,
// Cloud instances use v3, Data Center/Server defaults to v2.
func (s ServiceConfig) DetectAPIVersion() string {
	if s.APIVersion != "" {
		return s.APIVersion
	}
	if s.IsCloud() {
		return "3"
	}
	return "2"
}

// ClientOptions converts the bundle into options for the shared HTTP
// client. Validate should be called first.
func (s ServiceConfig) ClientOptions() atlassian.Options {
	mode, _ := s.AuthMode()
	return atlassian.Options{
		Service:    s.Service,
		BaseURL:    s.BaseURL,
		APIVersion: s.DetectAPIVersion(),
		AuthMode:   mode,
		Username:   s.Username,
		APIToken:   s.APIToken,
		PATToken:   s.PATToken,
	}
}

// Service returns the bundle for the named backend.
func (c *Config) Service(name string) (ServiceConfig, error) {
	switch strings.ToLower(name) {
	case "jira":
		return c.Jira, nil
	case "confluence":
		return c.Confluence, nil
	case "bitbucket":
		return c.Bitbucket, nil
	default:
		return ServiceConfig{}, atlassian.Configurationf("Unknown service: %s", name)
	}
}

// AvailableServices lists the backends whose configuration is complete.
func (c *Config) AvailableServices() []string {
	var available []string
	for _, s := range []ServiceConfig{c.Jira, c.Confluence, c.Bitbucket} {
		if s.Validate() == nil {
			available = append(available, s.Service)
		}
	}
	return available
}

// UnavailableServices maps each incompletely configured backend to the
// reason it cannot be used.
func (c *Config) UnavailableServices() map[string]string {
	unavailable := make(map[string]string)
	for _, s := range []ServiceConfig{c.Jira, c.Confluence, c.Bitbucket} {
		if err := s.Validate(); err != nil {
			if s.BaseURL == "" {
				unavailable[s.Service] = fmt.Sprintf("Missing %s_URL", s.envPrefix())
			} else {
				unavailable[s.Service] = fmt.Sprintf("Missing authentication for %s", s.envPrefix())
			}
		}
	}
	return unavailable
}
