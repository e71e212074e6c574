package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file.
// The -config flag wins over it.
const EnvConfig = "FXMESH_CONFIG"

// Load builds the effective configuration: defaults, then the first config
// file found, then command-line flags.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolvePath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// resolvePath picks the config file to read, or "" for none. Explicit
// sources are returned even if missing so the error names them.
func resolvePath() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// findConfigFile returns the first existing file among the project-local
// config and the per-user config.
func findConfigFile() string {
	for _, path := range []string{"fxmesh.yaml", UserConfigPath()} {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user fxmesh directory under the OS config root.
func ConfigDir() string {
	root, err := os.UserConfigDir()
	if err != nil {
		// No HOME or APPDATA: fall back to the working directory.
		root, _ = filepath.Abs(".")
	}

	name := "fxmesh"
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		name = "FXMesh"
	}
	return filepath.Join(root, name)
}

// UserConfigPath returns the per-user config file written by Save.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// loadFromFile decodes a YAML file over cfg. Keys that do not map to a
// setting are rejected; an empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
