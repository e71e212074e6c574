// Package ringmesh builds ring-shaped meshes (revolved, twisted and
// heightened annuli) from curve and gradient driven parameters.
//
// Generation is a pure function of Parameters: the same parameters and
// deterministic evaluators always produce identical buffers. Caching and
// persistence are left to the caller.
package ringmesh

import (
	"fmt"

	"github.com/Faultbox/fxmesh/pkg/curve"
	"github.com/go-gl/mathgl/mgl32"
)

// Parameter ranges accepted by Validate.
const (
	MinLoops     = 3
	MaxLoops     = 128
	MinRings     = 2
	MaxRings     = 128
	MaxAngle     = 360
	MinEndRadius = 0.001
)

// Slot identifies a per-vertex attribute channel.
type Slot int

// Attribute slots.
const (
	SlotColor Slot = iota
	SlotUV0
	SlotUV1
	SlotUV2
	SlotUV3

	NumSlots = 5
)

// Slots lists every attribute slot in buffer order.
var Slots = [NumSlots]Slot{SlotColor, SlotUV0, SlotUV1, SlotUV2, SlotUV3}

// String returns the slot name ("color", "uv0".."uv3").
func (s Slot) String() string {
	switch s {
	case SlotColor:
		return "color"
	case SlotUV0, SlotUV1, SlotUV2, SlotUV3:
		return fmt.Sprintf("uv%d", int(s-SlotUV0))
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Parameters configures one generation pass.
// The generator only reads it; callers own it and may mutate it between calls.
type Parameters struct {
	StartRadius float32
	EndRadius   float32
	MaxAngle    float32 // angular extent in degrees, (0, 360]

	Loops       int // angular subdivisions
	Rings       int // radial subdivisions
	RingProfile curve.Curve

	Height        float32
	HeightProfile curve.Curve

	Twist        float32
	TwistProfile curve.Curve

	ComputeNormals bool

	Channels [NumSlots]ChannelInfo
}

// DefaultParameters returns a flat eight-sided disc of radius 5.
func DefaultParameters() *Parameters {
	return &Parameters{
		StartRadius:   0,
		EndRadius:     10,
		MaxAngle:      360,
		Loops:         8,
		Rings:         3,
		RingProfile:   curve.Linear(0, 0, 1, 1),
		HeightProfile: curve.Linear(0, 0, 1, 1),
		TwistProfile:  curve.Linear(0, 0, 0, 0),
	}
}

// Polar identifies a grid point. Loop is not wrapped modulo Loops, so
// a full ring has an extra unwelded column at Loop == Loops.
type Polar struct {
	Ring, Loop int
}

func (p Polar) String() string {
	return fmt.Sprintf("%d;%d", p.Ring, p.Loop)
}

// Mesh holds the generated buffers ready for upload or export.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // nil unless normals were computed
	Colors    []mgl32.Vec4 // nil when the color channel is disabled
	UVs       [4][]mgl32.Vec4
	Indices   []uint32
	Bounds    Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// VertexCount returns the number of unique vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Channel returns the attribute buffer for a slot, or nil if it was not generated.
func (m *Mesh) Channel(s Slot) []mgl32.Vec4 {
	switch s {
	case SlotColor:
		return m.Colors
	case SlotUV0, SlotUV1, SlotUV2, SlotUV3:
		return m.UVs[s-SlotUV0]
	}
	return nil
}

func (m *Mesh) setChannel(s Slot, buf []mgl32.Vec4) {
	switch s {
	case SlotColor:
		m.Colors = buf
	case SlotUV0, SlotUV1, SlotUV2, SlotUV3:
		m.UVs[s-SlotUV0] = buf
	}
}
