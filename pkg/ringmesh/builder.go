package ringmesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/fxmesh/pkg/curve"
)

// Generate builds a mesh with a fresh scratch Builder.
func Generate(p *Parameters) (*Mesh, error) {
	return NewBuilder().Build(p)
}

// Builder is a reusable scratch area for mesh generation: the polar
// dedup table and the working buffers survive between builds to avoid
// reallocation. A Builder is not safe for concurrent use.
type Builder struct {
	p *Parameters

	lut       map[Polar]uint32
	positions []mgl32.Vec3
	channels  [NumSlots][]mgl32.Vec4
	indices   []uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{lut: make(map[Polar]uint32)}
}

// Build generates the mesh described by p.
// On error nothing is returned and the previous outputs of the builder
// are unaffected; the returned Mesh never aliases the scratch buffers.
func (b *Builder) Build(p *Parameters) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b.reset(p)
	defer func() { b.p = nil }()

	for ring := 0; ring < p.Rings; ring++ {
		for loop := 0; loop < p.Loops; loop++ {
			if err := b.addQuad(ring, loop); err != nil {
				b.discard()
				return nil, err
			}
		}
	}

	m := b.mesh()
	if p.ComputeNormals {
		ComputeNormals(m)
	}
	return m, nil
}

// Lookup reports the vertex index the most recent Build assigned to c.
// A Build that fails during the walk leaves the table empty.
func (b *Builder) Lookup(c Polar) (uint32, bool) {
	idx, ok := b.lut[c]
	return idx, ok
}

// discard drops the partial walk of a failed build.
func (b *Builder) discard() {
	b.reset(nil)
}

func (b *Builder) reset(p *Parameters) {
	b.p = p
	clear(b.lut)
	b.positions = b.positions[:0]
	b.indices = b.indices[:0]
	for i := range b.channels {
		b.channels[i] = b.channels[i][:0]
	}
}

// addQuad emits the cell between (ring, loop) and (ring+1, loop+1).
// loop+1 is intentionally not wrapped back to zero.
func (b *Builder) addQuad(ring, loop int) error {
	nextRing := ring + 1
	nextLoop := loop + 1

	corners := [4]Polar{
		{nextRing, loop},
		{ring, loop},
		{ring, nextLoop},
		{nextRing, nextLoop},
	}

	var idx [4]uint32
	for i, c := range corners {
		v, err := b.vertex(c)
		if err != nil {
			return err
		}
		idx[i] = v
	}

	b.indices = append(b.indices,
		idx[0], idx[1], idx[2],
		idx[0], idx[2], idx[3],
	)
	return nil
}

// vertex resolves a grid point to its vertex index, inserting it on first use.
func (b *Builder) vertex(c Polar) (uint32, error) {
	if idx, ok := b.lut[c]; ok {
		return idx, nil
	}

	p := b.p
	vertical := float32(c.Ring) / float32(p.Rings)
	horizontal := float32(c.Loop) / float32(p.Loops)

	twist, err := b.eval("twistProfile", p.TwistProfile, vertical, c)
	if err != nil {
		return 0, err
	}
	step := p.MaxAngle / float32(p.Loops)
	angle := math32.Mod(step*float32(c.Loop), p.MaxAngle+step) + twist*p.Twist
	theta := mgl32.DegToRad(angle)
	dir := mgl32.Vec3{math32.Cos(theta), 0, math32.Sin(theta)}

	length, err := b.eval("ringProfile", p.RingProfile, vertical, c)
	if err != nil {
		return 0, err
	}
	pos := dir.Mul(p.StartRadius).Add(dir.Mul(length * (p.EndRadius / 2)))

	height, err := b.eval("heightProfile", p.HeightProfile, (pos.Len()-p.StartRadius)/p.EndRadius, c)
	if err != nil {
		return 0, err
	}
	pos[1] += height * p.Height

	// Sample every channel before appending so the parallel buffers stay aligned.
	var attrs [NumSlots]mgl32.Vec4
	for _, slot := range Slots {
		ch := p.Channels[slot]
		if !Enabled(ch) {
			continue
		}
		v := ch.sample(horizontal, vertical)
		for i, comp := range v {
			if !finite(comp) {
				return 0, &EvaluatorError{Source: slot.String() + "." + componentName(slot, i), At: c, Value: comp}
			}
		}
		attrs[slot] = v
	}

	idx := uint32(len(b.positions))
	b.positions = append(b.positions, pos)
	for _, slot := range Slots {
		if Enabled(p.Channels[slot]) {
			b.channels[slot] = append(b.channels[slot], attrs[slot])
		}
	}
	b.lut[c] = idx
	return idx, nil
}

func (b *Builder) eval(source string, c curve.Curve, t float32, at Polar) (float32, error) {
	v := c.Evaluate(t)
	if !finite(v) {
		return 0, &EvaluatorError{Source: source, At: at, Value: v}
	}
	return v, nil
}

// mesh copies the scratch buffers into a new Mesh.
func (b *Builder) mesh() *Mesh {
	m := &Mesh{
		Positions: append([]mgl32.Vec3(nil), b.positions...),
		Indices:   append([]uint32(nil), b.indices...),
	}
	for _, slot := range Slots {
		if Enabled(b.p.Channels[slot]) {
			m.setChannel(slot, append(make([]mgl32.Vec4, 0, len(b.channels[slot])), b.channels[slot]...))
		}
	}
	m.Bounds = computeBounds(m.Positions)
	return m
}
