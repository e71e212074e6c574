// Package meshcache keeps generated meshes keyed by preset fingerprint so
// unchanged settings are never rebuilt.
package meshcache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// DefaultSize is the number of meshes kept when no size is given.
const DefaultSize = 64

// Cache maps preset fingerprints to generated meshes. Returned meshes are
// shared between callers and must not be modified.
type Cache struct {
	mu      sync.Mutex
	builder *ringmesh.Builder
	meshes  *lru.Cache[string, *ringmesh.Mesh]
	log     *zap.Logger

	hits   uint64
	misses uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for build events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// New creates a cache holding at most size meshes.
func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}

	meshes, err := lru.New[string, *ringmesh.Mesh](size)
	if err != nil {
		return nil, fmt.Errorf("creating mesh cache: %w", err)
	}

	c := &Cache{
		builder: ringmesh.NewBuilder(),
		meshes:  meshes,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the mesh for p, generating it on a miss or when force is set.
func (c *Cache) Get(p *preset.Preset, force bool) (*ringmesh.Mesh, error) {
	fp := p.Fingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !force {
		if m, ok := c.meshes.Get(fp); ok {
			c.hits++
			return m, nil
		}
	}
	c.misses++

	params, err := p.Parameters()
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}

	m, err := c.builder.Build(params)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}

	c.meshes.Add(fp, m)
	c.log.Debug("mesh generated",
		zap.String("preset", p.Name),
		zap.String("fingerprint", fp[:12]),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Bool("forced", force))
	return m, nil
}

// Invalidate drops the mesh cached for p and reports whether one was present.
func (c *Cache) Invalidate(p *preset.Preset) bool {
	fp := p.Fingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meshes.Remove(fp)
}

// Purge drops every cached mesh.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes.Purge()
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meshes.Len()
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
