// fxmesh generates ring meshes from preset files and exports, stores or
// streams them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/fxmesh/internal/config"
	"github.com/Faultbox/fxmesh/internal/logger"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: true, JSON: cfg.Logging.JSON}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]

	switch command {
	case "init":
		err = cmdInit(cfg, rest)
	case "info":
		err = cmdInfo(cfg, rest)
	case "generate", "gen":
		err = cmdGenerate(cfg, rest)
	case "export":
		err = cmdExport(cfg, rest)
	case "library", "lib":
		err = cmdLibrary(cfg, rest)
	case "watch":
		err = cmdWatch(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(os.Stderr, "Usage: fxmesh %s\n", string(usage))
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

// usageError carries the usage line of a command invoked with bad arguments.
type usageError string

func (u usageError) Error() string {
	return "usage: fxmesh " + string(u)
}

func printUsage() {
	fmt.Println(`fxmesh - ring mesh generator

Usage:
  fxmesh [global flags] <command> [options]

Commands:
  init <preset>                              Write a default preset (.yaml, .yml or .toml)
  info <preset>                              Show mesh statistics for a preset
  generate <preset> [-o file|dir] [-format fmt] [-f]
                                             Export the mesh as obj or fxm; a -o directory
                                             becomes the remembered export folder
  export <preset> [name]                     Store the mesh in the library
  library list                               List stored meshes
  library show <name>                        Show one stored mesh
  library delete <name>                      Remove a stored mesh
  watch <preset> [-serve]                    Rebuild on every save, optionally stream frames

Global flags:`)
	flag.PrintDefaults()
	fmt.Println(`
Examples:
  fxmesh init ripple.yaml
  fxmesh generate ripple.yaml -format fxm
  fxmesh -library meshes.db export ripple.yaml ripple-v2
  fxmesh -addr :8765 watch ripple.yaml -serve`)
}
