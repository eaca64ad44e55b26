// Package config handles configuration loading and validation for depfloor.
//
// Configuration is YAML. The embedded default.yml provides every value; a
// .depfloor.yml in the working directory (or the file given with --config)
// overrides the keys it sets. Files may extend other files, which are applied
// first, in order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/warnings"
)

// LoadConfig loads configuration from the specified path or defaults.
//
// If configPath is provided, it loads that specific config file.
// Otherwise, it looks for .depfloor.yml in the working directory.
// If no config is found, it returns the built-in default configuration.
//
// Parameters:
//   - configPath: path to the config file, or empty to look in workDir
//   - workDir: working directory for the configuration
//
// Returns:
//   - *Config: the loaded configuration layered over the defaults
//   - error: read failures, or a *errors.ValidationError for invalid content
func LoadConfig(configPath, workDir string) (*Config, error) {
	cfg, err := loadDefaultConfig()
	if err != nil {
		return nil, err
	}
	cfg.SetRootConfig(true)

	path := configPath
	if path == "" {
		local := filepath.Join(workDir, DefaultConfigFile)
		if _, statErr := os.Stat(local); statErr == nil {
			verbose.Printf("Found local config: %s", local)
			path = local
		}
	}

	if path == "" {
		verbose.Info("Using built-in default configuration")
	} else {
		if err := applyRootFile(cfg, path); err != nil {
			return nil, err
		}
		cfg.Source = path
		verbose.ConfigLoaded(path)
	}

	cfg.WorkingDir = workDir
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "."
	}

	result := cfg.Validate()
	for _, w := range result.Warnings {
		warnings.Warnf("config: %s", w)
	}
	if result.HasErrors() {
		return nil, result.Err(path)
	}
	return cfg, nil
}

// applyRootFile layers the root config file and everything it extends onto cfg.
//
// Security settings are taken from the root file only, so an extended file
// can never widen the policy that allowed it to be read.
func applyRootFile(cfg *Config, path string) error {
	data, err := readConfigFile(path, DefaultMaxConfigFileSize)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	root, err := decodeStrict(path, data)
	if err != nil {
		return err
	}
	root.SetRootConfig(true)

	if err := applyFile(cfg, path, data, make(map[string]bool), root); err != nil {
		return err
	}
	cfg.Security = root.Security
	cfg.Extends = nil
	return nil
}

// applyFile applies the files extended by data, then data itself, onto cfg.
//
// It performs the following operations:
//   - Step 1: Decode data strictly to find its extends list
//   - Step 2: Check each extend path against the root security policy
//   - Step 3: Apply each extended file recursively, detecting cycles
//   - Step 4: Decode data onto cfg; keys it omits keep their current values
//
// Parameters:
//   - cfg: configuration being built
//   - path: path of data, used to resolve relative extends
//   - data: file content
//   - stack: files currently being applied, for cycle detection
//   - rootCfg: the root configuration holding security settings
func applyFile(cfg *Config, path string, data []byte, stack map[string]bool, rootCfg *Config) error {
	file, err := decodeStrict(path, data)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path '%s': %w", path, err)
	}
	stack[absPath] = true
	defer delete(stack, absPath)

	baseDir := filepath.Dir(path)
	for _, extend := range file.Extends {
		if extend == "default" {
			verbose.Printf("Extended from built-in defaults")
			continue
		}
		if err := validateExtendPath(extend, rootCfg); err != nil {
			return err
		}

		extendPath := extend
		if !filepath.IsAbs(extendPath) {
			extendPath = filepath.Join(baseDir, extend)
		}
		extendAbs, err := filepath.Abs(extendPath)
		if err != nil {
			return fmt.Errorf("failed to resolve extend path '%s': %w", extend, err)
		}
		if stack[extendAbs] {
			return fmt.Errorf("cyclic extends detected at %s", extendPath)
		}

		extendData, err := readConfigFile(extendPath, rootCfg.GetMaxConfigFileSize())
		if err != nil {
			return fmt.Errorf("failed to load extend '%s': %w", extend, err)
		}
		if err := applyFile(cfg, extendPath, extendData, stack, rootCfg); err != nil {
			return err
		}
		verbose.Printf("Extended from %q", extend)
	}

	return decodeOnto(cfg, data)
}

// validateExtendPath checks if an extend path is allowed based on security settings.
//
// Path traversal (..) and absolute paths are blocked unless the root config
// enables them.
//
// Parameters:
//   - extend: the extend path to validate
//   - rootCfg: the root configuration containing security settings
//
// Returns:
//   - error: error if path violates security policy, nil if allowed
func validateExtendPath(extend string, rootCfg *Config) error {
	if strings.Contains(extend, "..") && !rootCfg.AllowsPathTraversal() {
		return fmt.Errorf("path traversal not allowed in extends: '%s' - "+
			"to allow, add security.allow_path_traversal: true to your root config",
			extend)
	}
	if filepath.IsAbs(extend) && !rootCfg.AllowsAbsolutePaths() {
		return fmt.Errorf("absolute paths not allowed in extends: '%s' - "+
			"to allow, add security.allow_absolute_paths: true to your root config",
			extend)
	}
	return nil
}

// readConfigFile reads a config file, refusing files larger than maxSize.
//
// Parameters:
//   - path: path to the config file
//   - maxSize: maximum allowed file size in bytes
//
// Returns:
//   - []byte: file content
//   - error: error if file is too large or cannot be read
func readConfigFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d bytes)\n\n"+
			"💡 To increase this limit, add to your root config:\n"+
			"   security:\n"+
			"     max_config_file_size: %d  # or larger value in bytes",
			info.Size(), maxSize, info.Size()*2)
	}
	return os.ReadFile(path)
}

// decodeStrict parses data into a fresh Config, rejecting unknown keys.
func decodeStrict(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := newDecoder(data).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		result := &ValidationResult{}
		result.addDecodeError(err)
		return nil, result.Err(path)
	}
	return &cfg, nil
}

// decodeOnto overlays data onto cfg.
func decodeOnto(cfg *Config, data []byte) error {
	if err := newDecoder(data).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

func newDecoder(data []byte) *yaml.Decoder {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder
}
