package meshcache

import (
	"sync"

	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// Handle is one edited preset and the last mesh built from it. Edits mark
// the handle dirty; the next Mesh call rebuilds.
type Handle struct {
	mu     sync.Mutex
	cache  *Cache
	preset *preset.Preset
	mesh   *ringmesh.Mesh
	dirty  bool
}

// Track starts a handle on a snapshot of p. Later changes to p are not seen.
func (c *Cache) Track(p *preset.Preset) *Handle {
	return &Handle{
		cache:  c,
		preset: p.Clone(),
		dirty:  true,
	}
}

// Update applies fn to the tracked preset and marks the handle dirty.
func (h *Handle) Update(fn func(p *preset.Preset)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.preset)
	h.dirty = true
}

// Replace swaps in a snapshot of p and marks the handle dirty.
func (h *Handle) Replace(p *preset.Preset) {
	snap := p.Clone()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.preset = snap
	h.dirty = true
}

// Mesh returns the current mesh, rebuilding when the handle is dirty, has
// no mesh yet, or force is set. On failure the previous mesh and the dirty
// flag are kept.
func (h *Handle) Mesh(force bool) (*ringmesh.Mesh, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mesh != nil && !h.dirty && !force {
		return h.mesh, nil
	}

	m, err := h.cache.Get(h.preset, force)
	if err != nil {
		return nil, err
	}
	h.mesh = m
	h.dirty = false
	return m, nil
}

// Last returns the most recent successfully built mesh, or nil.
func (h *Handle) Last() *ringmesh.Mesh {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mesh
}

// Dirty reports whether the preset changed since the last build.
func (h *Handle) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty
}

// Preset returns a copy of the tracked preset.
func (h *Handle) Preset() *preset.Preset {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.preset.Clone()
}
