package ringmesh

import "github.com/go-gl/mathgl/mgl32"

// ComputeNormals sets m.Normals from the triangle topology. Each vertex
// accumulates the area-weighted normals of its faces; vertices whose
// faces are all degenerate get +Y.
func ComputeNormals(m *Mesh) {
	normals := make([]mgl32.Vec3, len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		edge1 := m.Positions[b].Sub(m.Positions[a])
		edge2 := m.Positions[c].Sub(m.Positions[a])
		// Not normalized: the cross product length weights by face area.
		n := edge1.Cross(edge2)

		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	for i := range normals {
		normals[i] = normalize(normals[i])
	}
	m.Normals = normals
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Mul(1 / l)
}

func computeBounds(positions []mgl32.Vec3) Bounds {
	if len(positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		updateBounds(&b, p)
	}
	return b
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// UpdateBounds recomputes m.Bounds from the positions.
func (m *Mesh) UpdateBounds() {
	m.Bounds = computeBounds(m.Positions)
}
