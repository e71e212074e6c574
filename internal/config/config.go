// Package config handles fxmesh configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Generation GenerationConfig `yaml:"generation"`
	Export     ExportConfig     `yaml:"export"`
	Library    LibraryConfig    `yaml:"library"`
	Stream     StreamConfig     `yaml:"stream"`
	Watch      WatchConfig      `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// GenerationConfig holds mesh generation settings.
type GenerationConfig struct {
	Preset    string `yaml:"preset"`     // Preset used when a command gets none
	CacheSize int    `yaml:"cache_size"` // Max meshes kept by the mesh cache
}

// ExportConfig holds file export settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`    // Remembered export folder
	Format string `yaml:"format"` // obj or fxm
}

// LibraryConfig holds mesh library settings.
type LibraryConfig struct {
	Path string `yaml:"path"` // SQLite database file
}

// StreamConfig holds websocket streaming settings.
type StreamConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// WatchConfig holds preset watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Generation: GenerationConfig{
			Preset:    "",
			CacheSize: 64,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "obj",
		},
		Library: LibraryConfig{
			Path: "fxmesh.db",
		},
		Stream: StreamConfig{
			Addr: "127.0.0.1:8765",
			Path: "/ws",
		},
		Watch: WatchConfig{
			Debounce: 150 * time.Millisecond,
		},
	}
}
