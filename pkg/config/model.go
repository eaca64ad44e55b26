package config

import (
	"time"

	"github.com/ajxudir/depfloor/pkg/floor"
)

// Config is the root configuration structure.
type Config struct {
	Extends        []string     `yaml:"extends,omitempty"`
	Manifest       string       `yaml:"manifest"`
	ContinueOnFail bool         `yaml:"continue_on_fail"`
	Window         WindowCfg    `yaml:"window"`
	Registry       RegistryCfg  `yaml:"registry"`
	Persist        PersistCfg   `yaml:"persist"`
	Security       *SecurityCfg `yaml:"security,omitempty"`

	// WorkingDir is the directory relative paths are resolved against.
	// It is set by LoadConfig and never read from YAML.
	WorkingDir string `yaml:"-"`

	// Source is the path of the root config file, empty for built-in defaults.
	Source string `yaml:"-"`

	// isRootConfig is set to true only for the root config file (not extended configs).
	// Security settings can only be enabled from the root config.
	isRootConfig bool `yaml:"-"`
}

// WindowCfg is the retention window in months.
type WindowCfg struct {
	DropMonths     float64 `yaml:"drop_months"`
	CooldownMonths float64 `yaml:"cooldown_months"`
}

// RegistryCfg configures access to the package index.
//
// Fields:
//   - BaseURL: Index root, e.g. https://pypi.org
//   - API: "simple" (PEP 691 JSON) or "json" (legacy per-project JSON)
//   - TimeoutSeconds: Per-request timeout
//   - Retries: Retries on 429 and 5xx; 0 makes every failed fetch final
//   - UserAgent: User-Agent header sent with every request
//   - SkipYanked: Ignore files the index marks as yanked
type RegistryCfg struct {
	BaseURL        string `yaml:"base_url"`
	API            string `yaml:"api"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
	SkipYanked     bool   `yaml:"skip_yanked"`
}

// PersistCfg configures how updated requirements are written back.
//
// Fields:
//   - Mode: "command" runs Command, "inplace" edits the manifest directly
//   - Command: Command template; {{requirements}} and {{manifest}} are expanded
//   - Env: Extra environment for Command
//   - TimeoutSeconds: Timeout for each command group, 0 for none
type PersistCfg struct {
	Mode           string            `yaml:"mode"`
	Command        string            `yaml:"command"`
	Env            map[string]string `yaml:"env,omitempty"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// SecurityCfg holds security-related configuration options.
// These settings can ONLY be enabled from the root config file, not from extended configs.
type SecurityCfg struct {
	// AllowPathTraversal permits the use of ".." in extends paths.
	// Default: false (paths with ".." are rejected).
	AllowPathTraversal bool `yaml:"allow_path_traversal,omitempty"`

	// AllowAbsolutePaths permits absolute paths in extends.
	// Default: false (only relative paths are allowed).
	AllowAbsolutePaths bool `yaml:"allow_absolute_paths,omitempty"`

	// MaxConfigFileSize overrides the default 10MB limit for config files (in bytes).
	// Set to 0 to use default.
	MaxConfigFileSize int64 `yaml:"max_config_file_size,omitempty"`
}

// IsRootConfig returns true if this is the root configuration (not an extended config).
//
// Returns:
//   - bool: true if this is the root config, false otherwise
func (c *Config) IsRootConfig() bool {
	return c.isRootConfig
}

// SetRootConfig marks this config as the root config.
//
// Parameters:
//   - isRoot: true to mark as root config, false otherwise
func (c *Config) SetRootConfig(isRoot bool) {
	c.isRootConfig = isRoot
}

// GetMaxConfigFileSize returns the configured max file size or the default.
//
// Returns:
//   - int64: maximum allowed config file size in bytes
func (c *Config) GetMaxConfigFileSize() int64 {
	if c.Security != nil && c.Security.MaxConfigFileSize > 0 {
		return c.Security.MaxConfigFileSize
	}
	return DefaultMaxConfigFileSize
}

// AllowsPathTraversal returns true if path traversal is allowed in extends.
func (c *Config) AllowsPathTraversal() bool {
	return c.Security != nil && c.Security.AllowPathTraversal
}

// AllowsAbsolutePaths returns true if absolute paths are allowed in extends.
func (c *Config) AllowsAbsolutePaths() bool {
	return c.Security != nil && c.Security.AllowAbsolutePaths
}

// FloorWindow returns the configured retention window.
func (c *Config) FloorWindow() floor.Window {
	return floor.Window{
		DropMonths:     c.Window.DropMonths,
		CooldownMonths: c.Window.CooldownMonths,
	}
}

// Timeout returns the per-request registry timeout.
func (r RegistryCfg) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Timeout returns the per-group command timeout, 0 when unlimited.
func (p PersistCfg) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
