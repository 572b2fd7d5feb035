package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - B2B_CONFIG_PATH: config file location (default: ~/.config/b2b.toml)
//   - B2B_HOME: base directory for b2b data (default: ~/.local/share/b2b)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking B2B_CONFIG_PATH env var first,
// then falling back to the default ~/.config/b2b.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("B2B_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "b2b.toml"), nil
}

// getBaseDir returns the base directory for b2b data, checking B2B_HOME env var first,
// then falling back to the XDG default ~/.local/share/b2b.
func getBaseDir() (string, error) {
	if path := os.Getenv("B2B_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "b2b"), nil
}
