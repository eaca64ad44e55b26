package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajxudir/depfloor/pkg/config"
	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/floor"
	"github.com/ajxudir/depfloor/pkg/manifest"
	"github.com/ajxudir/depfloor/pkg/output"
	"github.com/ajxudir/depfloor/pkg/registry"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

// newGetterFunc builds the HTTP layer under the registry client. Tests
// replace it to count or fail requests.
var newGetterFunc = func(cfg *config.Config) registry.Getter {
	return registry.NewBreakerGetter(registry.NewFetcher(
		registry.WithUserAgent(cfg.Registry.UserAgent),
		registry.WithMaxRetries(cfg.Registry.Retries),
		registry.WithTimeout(cfg.Registry.Timeout()),
	))
}

// windowFlags holds the --drop-months and --cooldown-months values of a command.
type windowFlags struct {
	drop     float64
	cooldown float64
}

// register adds the window flags to cmd, with the defaults in the help text.
func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&w.drop, "drop-months", config.DefaultDropMonths, "Support window in months; series older than this are dropped")
	cmd.Flags().Float64Var(&w.cooldown, "cooldown-months", config.DefaultCooldownMonths, "Cooldown in months; series newer than this are never the floor")
}

// resolve returns the configured window with the flags set on the command
// line applied on top.
//
// Returns:
//   - floor.Window: Effective window
//   - error: ExitError with ExitConfigError when the window is invalid
func (w *windowFlags) resolve(cmd *cobra.Command, cfg *config.Config) (floor.Window, error) {
	win := cfg.FloorWindow()
	if cmd.Flags().Changed("drop-months") {
		win.DropMonths = w.drop
	}
	if cmd.Flags().Changed("cooldown-months") {
		win.CooldownMonths = w.cooldown
	}
	if err := win.Validate(); err != nil {
		return win, errors.NewExitError(errors.ExitConfigError, err)
	}
	return win, nil
}

// windowInfo describes win as evaluated at now for output.
func windowInfo(win floor.Window, now time.Time) output.WindowInfo {
	drop, cooldown := win.Dates(now)
	return output.WindowInfo{
		DropMonths:     win.DropMonths,
		CooldownMonths: win.CooldownMonths,
		DropDate:       drop,
		CooldownDate:   cooldown,
	}
}

// newRegistryClient creates the index client described by cfg.
//
// Returns:
//   - *registry.Client: Client for the configured index and API
//   - error: ExitError with ExitConfigError when the API is unknown
func newRegistryClient(cfg *config.Config) (*registry.Client, error) {
	client, err := registry.New(newGetterFunc(cfg), registry.Options{
		BaseURL:    cfg.Registry.BaseURL,
		API:        registry.API(cfg.Registry.API),
		SkipYanked: cfg.Registry.SkipYanked,
	})
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, err)
	}
	verbose.Printf("Registry: %s (api: %s, retries: %d, timeout: %s)",
		cfg.Registry.BaseURL, cfg.Registry.API, cfg.Registry.Retries, cfg.Registry.Timeout())
	return client, nil
}

// newPersister returns the persister for the given mode.
//
// Parameters:
//   - mode: "command" or "inplace"
//   - cfg: Configuration supplying the command template, environment and timeout
//
// Returns:
//   - manifest.Persister: The persister
//   - error: ExitError with ExitConfigError for an unknown mode
func newPersister(mode string, cfg *config.Config) (manifest.Persister, error) {
	switch mode {
	case config.PersistModeCommand:
		return &manifest.CommandPersister{
			Command: cfg.Persist.Command,
			Env:     cfg.Persist.Env,
			Timeout: cfg.Persist.Timeout(),
		}, nil
	case config.PersistModeInPlace:
		return manifest.InPlacePersister{}, nil
	default:
		return nil, errors.NewExitError(errors.ExitConfigError,
			fmt.Errorf("invalid persist mode %q (valid: %v)", mode, config.PersistModes))
	}
}
