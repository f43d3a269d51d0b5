package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CLIConfig is the finctl configuration file.
type CLIConfig struct {
	Store      StoreConfig      `toml:"store"`
	Simulation SimulationConfig `toml:"simulation"`
}

// StoreConfig locates the local database.
type StoreConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// SimulationConfig holds defaults for `finctl simulate`.
type SimulationConfig struct {
	Strategy          string `toml:"strategy"`
	PayMinimums       bool   `toml:"pay_minimums"`
	PauseRenegotiated bool   `toml:"pause_renegotiated"`
}

// DefaultCLIConfig returns the defaults used when no file exists.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Store: StoreConfig{SQLitePath: filepath.Join(CLIConfigDir(), "finance.db")},
		Simulation: SimulationConfig{
			Strategy:    "AVALANCHE",
			PayMinimums: true,
		},
	}
}

// CLIConfigDir returns the XDG-compliant config directory.
func CLIConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finctl")
}

// CLIConfigPath returns the full path to the config file.
func CLIConfigPath() string {
	return filepath.Join(CLIConfigDir(), "config.toml")
}

// LoadCLI reads path (CLIConfigPath when empty), returning defaults if it
// doesn't exist.
func LoadCLI(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()
	if path == "" {
		path = CLIConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// SaveCLI writes cfg to path (CLIConfigPath when empty).
func SaveCLI(path string, cfg CLIConfig) error {
	if path == "" {
		path = CLIConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
