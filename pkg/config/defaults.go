package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Built-in defaults. default.yml carries the same values; a test keeps them in sync.
const (
	// DefaultConfigFile is the config file looked up in the working directory.
	DefaultConfigFile = ".depfloor.yml"

	// DefaultManifest is the manifest read when --file is not given.
	DefaultManifest = "pyproject.toml"

	// DefaultDropMonths is the length of the support window.
	DefaultDropMonths = 24.0

	// DefaultCooldownMonths is the trailing grace period.
	DefaultCooldownMonths = 12.0

	// DefaultRegistryURL is the PyPI index root.
	DefaultRegistryURL = "https://pypi.org"

	// DefaultRegistryAPI selects the PEP 691 Simple JSON API.
	DefaultRegistryAPI = "simple"

	// DefaultTimeoutSeconds is the per-request registry timeout.
	DefaultTimeoutSeconds = 30

	// DefaultRetries is zero: a failed fetch ends the run.
	DefaultRetries = 0

	// DefaultUserAgent is sent with every registry request.
	DefaultUserAgent = "depfloor"

	// PersistModeCommand hands requirements to a package manager command.
	PersistModeCommand = "command"

	// PersistModeInPlace rewrites the manifest's dependency array directly.
	PersistModeInPlace = "inplace"

	// DefaultPersistMode hands requirements to a package manager.
	DefaultPersistMode = PersistModeCommand

	// DefaultPersistCommand re-adds every requirement with uv without syncing
	// the environment.
	DefaultPersistCommand = "uv add --no-sync {{requirements}}"

	// DefaultPersistTimeoutSeconds bounds the persist command.
	DefaultPersistTimeoutSeconds = 300

	// DefaultMaxConfigFileSize is the default maximum config file size (10MB).
	DefaultMaxConfigFileSize = 10 * 1024 * 1024
)

// Valid enumeration values.
var (
	RegistryAPIs = []string{"simple", "json"}
	PersistModes = []string{PersistModeCommand, PersistModeInPlace}
)

//go:embed default.yml
var defaultConfigYAML string

//go:embed template.yml
var templateConfigYAML string

// loadDefaultConfig parses the embedded default configuration.
//
// Returns:
//   - *Config: the default configuration
//   - error: when the embedded YAML is broken
func loadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		return nil, fmt.Errorf("invalid built-in configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
//
// Returns:
//   - *Config: the default configuration with WorkingDir "."
func Default() *Config {
	cfg, err := loadDefaultConfig()
	if err != nil {
		panic(err)
	}
	cfg.WorkingDir = "."
	cfg.SetRootConfig(true)
	return cfg
}

// GetDefaultConfig returns the embedded default configuration YAML.
//
// Returns:
//   - string: the default configuration as YAML
func GetDefaultConfig() string {
	return defaultConfigYAML
}

// GetTemplateConfig returns the embedded template configuration YAML.
//
// The template is a commented starter file written by "depfloor config --init".
//
// Returns:
//   - string: the template configuration as YAML
func GetTemplateConfig() string {
	return templateConfigYAML
}
