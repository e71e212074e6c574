// Package watch rebuilds a mesh whenever its preset file changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/fxmesh/internal/meshcache"
	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// DefaultDebounce is the quiet period after the last write before a reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads one preset file into a mesh handle.
type Watcher struct {
	path     string
	handle   *meshcache.Handle
	debounce time.Duration
	log      *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values reload on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for reload events.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// New creates a watcher for the preset at path. The file's directory must exist.
func New(path string, h *meshcache.Handle, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := preset.FormatOf(abs); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(filepath.Dir(abs)); err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", filepath.Dir(abs))
	}

	w := &Watcher{
		path:     abs,
		handle:   h,
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled, calling onMesh after every
// successful rebuild. Load and build failures are logged and skipped.
func (w *Watcher) Run(ctx context.Context, onMesh func(*ringmesh.Mesh)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace the file, so the directory is watched.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching preset", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.debounce <= 0 {
				w.reload(onMesh)
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			w.reload(onMesh)
		}
	}
}

func (w *Watcher) reload(onMesh func(*ringmesh.Mesh)) {
	p, err := preset.Load(w.path)
	if err != nil {
		w.log.Warn("preset reload failed", zap.Error(err))
		return
	}

	w.handle.Replace(p)
	m, err := w.handle.Mesh(false)
	if err != nil {
		w.log.Warn("mesh rebuild failed", zap.String("preset", p.Name), zap.Error(err))
		return
	}

	w.log.Info("mesh rebuilt",
		zap.String("preset", p.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	if onMesh != nil {
		onMesh(m)
	}
}
