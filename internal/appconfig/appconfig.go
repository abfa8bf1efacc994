package appconfig

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Portal PortalConfig `yaml:"portal"`
}

// PortalConfig defines the Portal connection and session settings
type PortalConfig struct {
	URL               string  `yaml:"url"`
	Username          string  `yaml:"username"`
	Password          string  `yaml:"password"`
	Referer           string  `yaml:"referer"`
	TokenExpiration   int     `yaml:"tokenExpirationMinutes"`
	Timeout           int     `yaml:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// TokenLifetime returns the configured token lifetime as a duration.
func (p PortalConfig) TokenLifetime() time.Duration {
	return time.Duration(p.TokenExpiration) * time.Minute
}

// RequestTimeout returns the per-call timeout as a duration.
func (p PortalConfig) RequestTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

// LoadConfig loads and parses the configuration from a given file path.
// The file is run through text/template with the environment variables as
// data, so secrets can be referenced as {{.PORTAL_PASSWORD}}.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Error().Err(err).Msg("config file not provided")
		return nil, err
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, envVars)
	if err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	return &config, nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
