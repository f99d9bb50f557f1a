package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "contractd"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".contractdrc.yaml", ".contractdrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches for .contractdrc.yaml or .contractdrc.yml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findIn(cwd, LocalConfigFileNames), nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // no config dir means no global config
		return "", nil
	}
	return findIn(filepath.Join(configDir, GlobalConfigDir), GlobalConfigFileNames), nil
}

func findIn(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a CLIConfig from a YAML file. The keys present in the
// file are recorded in SetFields.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, configError(path, err)
	}

	var cfg CLIConfig
	if node.Kind != 0 {
		if err := node.Decode(&cfg); err != nil {
			return nil, configError(path, err)
		}
	}

	cfg.Sources = make(map[string]string)
	cfg.SetFields = make(map[string]bool)
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
		doc := node.Content[0]
		for i := 0; i+1 < len(doc.Content); i += 2 {
			cfg.SetFields[doc.Content[i].Value] = true
		}
	}
	return &cfg, nil
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(path string, err error) *ConfigError {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		return &ConfigError{Path: path, Message: typeErr.Errors[0], Err: err}
	}
	return &ConfigError{Path: path, Message: err.Error(), Err: err}
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > local (or explicit) config > global config > defaults.
// explicit, or CONTRACTD_CONFIG when explicit is empty, names a config file
// that replaces local discovery. Flags are applied by the caller. A config
// file that exists but cannot be read is an error.
func LoadAll(explicit string) (*CLIConfig, error) {
	// Start with defaults
	cfg := NewDefault()

	// Load global config
	if globalPath, _ := FindGlobalConfig(); globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, globalCfg, SourceGlobal)
	}

	// An explicit config file replaces local discovery
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		fileCfg, err := LoadConfigFile(explicit)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		MergeConfig(cfg, fileCfg, SourceFile)
		cfg.ConfigFile = explicit
	} else if localPath, err := FindLocalConfig(); err == nil && localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, localCfg, SourceLocal)
	}

	// Load environment variables
	LoadEnvConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
