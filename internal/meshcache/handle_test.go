package meshcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fxmesh/internal/preset"
)

func TestHandleLifecycle(t *testing.T) {
	c := newCache(t, 4)
	h := c.Track(preset.Default())
	assert.True(t, h.Dirty(), "new handle has no mesh")
	assert.Nil(t, h.Last())

	m1, err := h.Mesh(false)
	require.NoError(t, err)
	assert.False(t, h.Dirty())

	m2, err := h.Mesh(false)
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	h.Update(func(p *preset.Preset) { p.Topology.Loops = 16 })
	assert.True(t, h.Dirty())

	m3, err := h.Mesh(false)
	require.NoError(t, err)
	assert.Equal(t, 17*4, m3.VertexCount())
	assert.Same(t, m3, h.Last())
}

func TestHandleSnapshot(t *testing.T) {
	c := newCache(t, 4)
	p := preset.Default()
	h := c.Track(p)

	p.Topology.Loops = 20
	assert.Equal(t, 8, h.Preset().Topology.Loops)

	got := h.Preset()
	got.Topology.Rings = 9
	assert.Equal(t, 3, h.Preset().Topology.Rings)
}

func TestHandleFailedRebuildKeepsMesh(t *testing.T) {
	c := newCache(t, 4)
	h := c.Track(preset.Default())

	good, err := h.Mesh(false)
	require.NoError(t, err)

	bad := preset.Default()
	bad.Radius.End = -1
	h.Replace(bad)

	_, err = h.Mesh(false)
	require.Error(t, err)
	assert.True(t, h.Dirty())
	assert.Same(t, good, h.Last())

	h.Update(func(p *preset.Preset) { p.Radius.End = 5 })
	m, err := h.Mesh(false)
	require.NoError(t, err)
	assert.False(t, h.Dirty())
	assert.NotSame(t, good, m)
}

func TestHandleForce(t *testing.T) {
	c := newCache(t, 4)
	h := c.Track(preset.Default())

	m1, err := h.Mesh(false)
	require.NoError(t, err)
	m2, err := h.Mesh(true)
	require.NoError(t, err)
	assert.NotSame(t, m1, m2)
}
