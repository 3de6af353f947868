package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/levkk/kvstore/internal/cli/output"
	"github.com/levkk/kvstore/internal/infra/confloader"
	"github.com/levkk/kvstore/internal/server/kvserver"
)

// EnvPrefix is the environment variable prefix for CLI settings.
const EnvPrefix = "KVSTORE_CLI_"

// CLIConfig is the configuration for kvstore-cli.
type CLIConfig struct {
	Server      string        `koanf:"server"`
	Output      string        `koanf:"output"`
	Timeout     time.Duration `koanf:"timeout"`
	HistoryFile string        `koanf:"history_file"`
}

// DefaultConfigPath returns ~/.kvstore/cli.yaml.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".kvstore", "cli.yaml")
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	cfg := &CLIConfig{
		Server:  kvserver.DefaultAddress,
		Output:  string(output.FormatText),
		Timeout: 5 * time.Second,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".kvstore", "history")
	}
	return cfg
}

// Load merges defaults, the file at path, the environment and overrides.
// A missing file is not an error; an empty path uses DefaultConfigPath.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithOverrides(overrides),
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			opts = append(opts, confloader.WithConfigFile(path))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Verify checks that the configuration is usable.
func (c *CLIConfig) Verify() error {
	if c.Server == "" {
		return errors.New("server address is required")
	}
	if !output.ValidFormat(c.Output) {
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
