package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajxudir/depfloor/pkg/config"
	"github.com/ajxudir/depfloor/pkg/constants"
	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

var (
	configShowDefaultsFlag  bool
	configShowEffectiveFlag bool
	configInitFlag          bool
	configValidateFlag      bool
)

var (
	loadConfigFunc = config.LoadConfig
	writeFileFunc  = os.WriteFile
	readFileFunc   = os.ReadFile
	getwdFunc      = os.Getwd
)

// loadConfig loads the configuration named by --config, or the local
// .depfloor.yml, layered over the built-in defaults.
//
// Returns:
//   - *config.Config: Loaded and validated configuration
//   - error: ExitError with ExitConfigError when the file is invalid
func loadConfig() (*config.Config, error) {
	workDir, err := getwdFunc()
	if err != nil {
		workDir = "."
	}
	cfg, err := loadConfigFunc(configFlag, workDir)
	if err != nil {
		verbose.Printf("Exit code %d (config error): %v", errors.ExitConfigError, err)
		return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, validate or create configuration",
	Long:  `Show the default or effective configuration, validate a configuration file, or create a .depfloor.yml template.`,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowDefaultsFlag, "show-defaults", false, "Show default configuration")
	configCmd.Flags().BoolVar(&configShowEffectiveFlag, "show-effective", false, "Show effective configuration")
	configCmd.Flags().BoolVar(&configInitFlag, "init", false, "Create "+config.DefaultConfigFile+" template")
	configCmd.Flags().BoolVar(&configValidateFlag, "validate", false, "Validate configuration file (rejects unknown fields)")
}

// runConfig executes the config command with the specified flags.
//
// Behavior depends on flags:
//   - --init: Creates a .depfloor.yml template file
//   - --validate: Validates the configuration file for schema errors
//   - --show-defaults: Displays the default configuration
//   - --show-effective: Displays the effective layered configuration
func runConfig(cmd *cobra.Command, args []string) error {
	if configInitFlag {
		return createConfigTemplate()
	}

	if configValidateFlag {
		return validateConfigFile()
	}

	if configShowDefaultsFlag {
		fmt.Println("Default configuration:")
		fmt.Println()
		fmt.Print(config.GetDefaultConfig())
		return nil
	}

	if configShowEffectiveFlag {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		source := cfg.Source
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Println("Effective configuration:")
		fmt.Printf("# source: %s\n", source)
		fmt.Printf("# working directory: %s\n\n", cfg.WorkingDir)
		fmt.Print(string(data))
		return nil
	}

	return cmd.Help()
}

// validateConfigFile validates the file given by --config, or .depfloor.yml
// in the current working directory.
//
// Returns:
//   - error: ExitError with ExitConfigError on validation failure
func validateConfigFile() error {
	configPath := configFlag
	if configPath == "" {
		workDir, _ := getwdFunc()
		configPath = filepath.Join(workDir, config.DefaultConfigFile)
	}

	data, err := readFileFunc(configPath)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read config file '%s': %w", configPath, err))
	}

	result := config.ValidateConfigFile(data)

	if result.HasErrors() {
		fmt.Printf("%s Configuration validation failed for: %s\n\n", constants.IconError, configPath)

		for _, e := range result.Errors {
			if verbose.IsEnabled() {
				fmt.Printf("  ERROR: %s\n", e.VerboseError())
			} else {
				fmt.Printf("  ERROR: %s\n", e.Error())
			}
		}

		if len(result.Warnings) > 0 {
			fmt.Println()
			for _, w := range result.Warnings {
				fmt.Printf("  WARNING: %s\n", w)
			}
		}
		fmt.Println()
		if !verbose.IsEnabled() {
			fmt.Printf("%s Run with --verbose for detailed schema information\n", constants.IconLightbulb)
		}
		fmt.Printf("%s Run 'depfloor config --show-defaults' to see every option\n", constants.IconLightbulb)
		verbose.Printf("Exit code %d (config error): configuration validation failed for %s", errors.ExitConfigError, configPath)
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("configuration validation failed"))
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("%s Configuration valid with warnings: %s\n\n", constants.IconWarn, configPath)
		for _, w := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", w)
		}
		fmt.Println()
	} else {
		fmt.Printf("%s Configuration valid: %s\n", constants.IconCheckmarkBox, configPath)
	}

	return nil
}

// createConfigTemplate creates a new .depfloor.yml template file in the
// current directory. Fails if a config file already exists there.
func createConfigTemplate() error {
	configPath := config.DefaultConfigFile
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := writeFileFunc(configPath, []byte(config.GetTemplateConfig()), 0o600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created configuration template: %s\n", configPath)
	return nil
}
