package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/fxmesh/internal/config"
	"github.com/Faultbox/fxmesh/internal/export"
	"github.com/Faultbox/fxmesh/internal/library"
	"github.com/Faultbox/fxmesh/internal/logger"
	"github.com/Faultbox/fxmesh/internal/meshcache"
	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/internal/stream"
	"github.com/Faultbox/fxmesh/internal/watch"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// parseArgs parses fs allowing flags before, between and after positional
// arguments, and returns the positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// presetPath returns the preset argument, falling back to the configured preset.
func presetPath(cfg *config.Config, positional []string) string {
	if len(positional) > 0 {
		return positional[0]
	}
	return cfg.Generation.Preset
}

func newCache(cfg *config.Config) (*meshcache.Cache, error) {
	return meshcache.New(cfg.Generation.CacheSize, meshcache.WithLogger(logger.Named("cache")))
}

func loadMesh(cfg *config.Config, path string) (*preset.Preset, *ringmesh.Mesh, error) {
	p, err := preset.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cache, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := cache.Get(p, false)
	if err != nil {
		return nil, nil, err
	}
	return p, m, nil
}

func cmdInit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("f", false, "Overwrite an existing preset")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	path := presetPath(cfg, positional)
	if path == "" {
		return usageError("init [-f] <preset>")
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", path)
	}

	p := preset.Default()
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := p.Save(path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	path := presetPath(cfg, positional)
	if path == "" {
		return usageError("info <preset>")
	}

	p, m, err := loadMesh(cfg, path)
	if err != nil {
		return err
	}

	printInfo(os.Stdout, p, m)
	return nil
}

func printInfo(w io.Writer, p *preset.Preset, m *ringmesh.Mesh) {
	fmt.Fprintf(w, "Preset:      %s\n", p.Name)
	fmt.Fprintf(w, "Fingerprint: %s\n", p.Fingerprint())
	fmt.Fprintf(w, "Grid:        %d loops x %d rings\n", p.Topology.Loops, p.Topology.Rings)
	fmt.Fprintf(w, "Vertices:    %d\n", m.VertexCount())
	fmt.Fprintf(w, "Triangles:   %d\n", m.TriangleCount())
	fmt.Fprintf(w, "Bounds:      min %.3f  max %.3f\n", m.Bounds.Min, m.Bounds.Max)
	fmt.Fprintf(w, "Normals:     %t\n", m.Normals != nil)

	var channels []string
	for _, slot := range ringmesh.Slots {
		if ch := p.Channels.Slot(slot); ch.Enabled() {
			channels = append(channels, fmt.Sprintf("%s=%s", slot, ch.Mode))
		}
	}
	if len(channels) == 0 {
		channels = append(channels, "none")
	}
	fmt.Fprintf(w, "Channels:    %s\n", strings.Join(channels, ", "))
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("o", "", "Output file or directory (default <export dir>/<name>.<format>)")
	formatName := fs.String("format", "", "obj or fxm (default from config)")
	force := fs.Bool("f", false, "Overwrite an existing export")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	path := presetPath(cfg, positional)
	if path == "" {
		return usageError("generate <preset> [-o file|dir] [-format obj|fxm] [-f]")
	}

	if *formatName == "" {
		*formatName = cfg.Export.Format
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	p, m, err := loadMesh(cfg, path)
	if err != nil {
		return err
	}

	target, folder := exportTarget(cfg, *out, p.Name, format)
	if _, err := os.Stat(target); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", target)
	}
	if err := export.WriteFile(target, format, p.Name, p.Fingerprint(), m); err != nil {
		return err
	}

	logger.Info("mesh exported", zap.String("path", target), zap.String("format", string(format)))
	fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", target, m.VertexCount(), m.TriangleCount())

	if folder != "" {
		if abs, err := filepath.Abs(folder); err == nil {
			folder = abs
		}
		if err := config.RememberExportDir(folder); err != nil {
			logger.Warn("failed to remember export folder", zap.String("dir", folder), zap.Error(err))
		} else {
			logger.Debug("export folder remembered", zap.String("dir", folder))
		}
	}
	return nil
}

// exportTarget resolves the output file. When out names a directory the
// file goes there under the preset name, and that directory is returned as
// the folder to remember.
func exportTarget(cfg *config.Config, out, name string, format export.Format) (target, folder string) {
	file := name + format.Ext()
	if out == "" {
		return filepath.Join(cfg.Export.Dir, file), ""
	}

	isDir := strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator))
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		isDir = true
	}
	if isDir {
		return filepath.Join(out, file), out
	}
	return out, ""
}

func openLibrary(cfg *config.Config) (*library.Library, error) {
	return library.Open(cfg.Library.Path, library.WithLogger(logger.Named("library")))
}

func cmdExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	path := presetPath(cfg, positional)
	if path == "" {
		return usageError("export <preset> [name]")
	}

	p, m, err := loadMesh(cfg, path)
	if err != nil {
		return err
	}

	name := p.Name
	if len(positional) > 1 {
		name = positional[1]
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	rec, updated, err := lib.Save(name, p, m)
	if err != nil {
		return err
	}

	action := "Stored"
	if updated {
		action = "Updated"
	}
	fmt.Printf("%s %s (%s)\n", action, rec.Name, rec.ID)
	return nil
}

func cmdLibrary(cfg *config.Config, args []string) error {
	const usage = "library list | show <name> | delete <name>"
	if len(args) < 1 {
		return usageError(usage)
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	switch args[0] {
	case "list", "ls":
		recs, err := lib.List()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("Library is empty")
			return nil
		}
		fmt.Printf("%-24s %9s %9s  %s\n", "NAME", "VERTICES", "INDICES", "UPDATED")
		for _, r := range recs {
			fmt.Printf("%-24s %9d %9d  %s\n", r.Name, r.VertexCount, r.IndexCount, r.UpdatedAt.Format(time.DateTime))
		}
		return nil

	case "show":
		if len(args) < 2 {
			return usageError("library show <name>")
		}
		rec, err := lib.Get(args[1])
		if err != nil {
			return err
		}
		p, err := rec.LoadPreset()
		if err != nil {
			return err
		}
		m, err := rec.Mesh()
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\n", rec.ID)
		fmt.Printf("Stored:      %s\n", rec.CreatedAt.Format(time.DateTime))
		fmt.Printf("Updated:     %s\n", rec.UpdatedAt.Format(time.DateTime))
		printInfo(os.Stdout, p, m)
		return nil

	case "delete", "rm":
		if len(args) < 2 {
			return usageError("library delete <name>")
		}
		if err := lib.Delete(args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[1])
		return nil
	}

	return usageError(usage)
}

func cmdWatch(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serve := fs.Bool("serve", false, "Stream frames to websocket clients")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	path := presetPath(cfg, positional)
	if path == "" {
		return usageError("watch <preset> [-serve]")
	}

	p, err := preset.Load(path)
	if err != nil {
		return err
	}
	cache, err := newCache(cfg)
	if err != nil {
		return err
	}
	handle := cache.Track(p)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onMesh := func(m *ringmesh.Mesh) {
		fmt.Printf("%s: %d vertices, %d triangles\n", handle.Preset().Name, m.VertexCount(), m.TriangleCount())
	}

	if *serve {
		hub := stream.NewHub(stream.WithLogger(logger.Named("stream")))
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle(cfg.Stream.Path, hub.Handler())
		srv := &http.Server{Addr: cfg.Stream.Addr, Handler: mux}

		go func() {
			logger.Info("streaming frames", zap.String("addr", cfg.Stream.Addr), zap.String("path", cfg.Stream.Path))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("stream server failed", zap.Error(err))
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("stream server shutdown failed", zap.Error(err))
			}
		}()

		report := onMesh
		onMesh = func(m *ringmesh.Mesh) {
			report(m)
			cur := handle.Preset()
			hub.Publish(export.EncodeFrame(cur.Name, cur.Fingerprint(), m))
		}
	}

	m, err := handle.Mesh(false)
	if err != nil {
		logger.Warn("initial build failed, waiting for changes", zap.Error(err))
	} else {
		onMesh(m)
	}

	w, err := watch.New(path, handle,
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithLogger(logger.Named("watch")))
	if err != nil {
		return err
	}
	return w.Run(ctx, onMesh)
}
