package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to UserConfigPath.
func (c *Config) Save() error {
	return c.SaveTo(UserConfigPath())
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RememberExportDir stores dir as the export folder in the per-user config.
// Only the saved file is updated; flag overrides and project-local config
// of the running command are not written back.
func RememberExportDir(dir string) error {
	cfg := Default()
	path := UserConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	cfg.Export.Dir = dir
	return cfg.Save()
}
