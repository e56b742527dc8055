package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the editor cannot work with.
func (c *Config) Validate() error {
	switch c.Editor.DefaultShading {
	case "flat", "smooth":
	default:
		return fmt.Errorf("config: editor.default_shading must be flat or smooth, got %q", c.Editor.DefaultShading)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Editor.MergeDistance < 0 {
		return fmt.Errorf("config: editor.merge_distance must not be negative, got %g", c.Editor.MergeDistance)
	}
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("config: editor.history_limit must not be negative, got %d", c.Editor.HistoryLimit)
	}
	if c.Kernel.MeshCells <= 0 {
		return fmt.Errorf("config: kernel.mesh_cells must be positive, got %d", c.Kernel.MeshCells)
	}
	if c.Engine.EvalTimeout <= 0 {
		return fmt.Errorf("config: engine.eval_timeout must be positive, got %s", c.Engine.EvalTimeout)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./facet.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Facet")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Facet")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "facet")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "facet")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
