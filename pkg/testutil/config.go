package testutil

import (
	"github.com/ajxudir/depfloor/pkg/config"
)

// ConfigBuilder provides a fluent API for building test configurations.
//
// It starts from the built-in defaults, so only the fields a test cares
// about need to be set.
type ConfigBuilder struct {
	cfg *config.Config
}

// NewConfig creates a new ConfigBuilder seeded with the default configuration.
func NewConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: config.Default()}
}

// WithWorkingDir sets the working directory for the configuration.
func (b *ConfigBuilder) WithWorkingDir(dir string) *ConfigBuilder {
	b.cfg.WorkingDir = dir
	return b
}

// WithWindow sets the retention window.
//
// Parameters:
//   - drop: Support window in months
//   - cooldown: Cooldown period in months
//
// Returns:
//   - *ConfigBuilder: Self for method chaining
func (b *ConfigBuilder) WithWindow(drop, cooldown float64) *ConfigBuilder {
	b.cfg.Window.DropMonths = drop
	b.cfg.Window.CooldownMonths = cooldown
	return b
}

// WithRegistry points the configuration at an index.
//
// Parameters:
//   - baseURL: Index root, e.g. a FakeIndex URL
//   - api: "simple" or "json"
//
// Returns:
//   - *ConfigBuilder: Self for method chaining
func (b *ConfigBuilder) WithRegistry(baseURL, api string) *ConfigBuilder {
	b.cfg.Registry.BaseURL = baseURL
	b.cfg.Registry.API = api
	return b
}

// WithPersistCommand selects command persistence with the given template.
func (b *ConfigBuilder) WithPersistCommand(command string) *ConfigBuilder {
	b.cfg.Persist.Mode = "command"
	b.cfg.Persist.Command = command
	return b
}

// WithInPlacePersist selects rewriting the manifest directly.
func (b *ConfigBuilder) WithInPlacePersist() *ConfigBuilder {
	b.cfg.Persist.Mode = "inplace"
	return b
}

// WithContinueOnFail sets whether failing requirements are kept unchanged.
func (b *ConfigBuilder) WithContinueOnFail(v bool) *ConfigBuilder {
	b.cfg.ContinueOnFail = v
	return b
}

// Build returns the built configuration.
func (b *ConfigBuilder) Build() *config.Config {
	return b.cfg
}
