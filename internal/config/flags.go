package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Write logs to this file")
	flagCacheSize = flag.Int("cache-size", 0, "Mesh cache capacity")
	flagExportDir = flag.String("export-dir", "", "Directory for exported meshes")
	flagLibrary   = flag.String("library", "", "Mesh library database path")
	flagAddr      = flag.String("addr", "", "Stream listen address")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags (command and its arguments).
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagCacheSize > 0 {
		cfg.Generation.CacheSize = *flagCacheSize
	}
	if *flagExportDir != "" {
		cfg.Export.Dir = *flagExportDir
	}
	if *flagLibrary != "" {
		cfg.Library.Path = *flagLibrary
	}
	if *flagAddr != "" {
		cfg.Stream.Addr = *flagAddr
	}
}
