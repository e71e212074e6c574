// Package export writes generated meshes to Wavefront OBJ and to the
// binary frame format shared by the library and the preview stream.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// WriteOBJ writes m as a single OBJ object. Vertex colors are appended to
// the v records when present, UV0.xy becomes vt and normals become vn.
func WriteOBJ(w io.Writer, name string, m *ringmesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# fxmesh %d vertices %d triangles\n", m.VertexCount(), m.TriangleCount())
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}

	for i, p := range m.Positions {
		if m.Colors != nil {
			c := m.Colors[i]
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p[0], p[1], p[2], c[0], c[1], c[2])
		} else {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
	}

	uv := m.UVs[0]
	for _, t := range uv {
		fmt.Fprintf(bw, "vt %g %g\n", t[0], t[1])
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
	}

	hasUV, hasNormal := uv != nil, m.Normals != nil
	for i := 0; i+2 < len(m.Indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range m.Indices[i : i+3] {
			// OBJ indices are 1-based.
			n := idx + 1
			switch {
			case hasUV && hasNormal:
				fmt.Fprintf(bw, " %d/%d/%d", n, n, n)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", n, n)
			case hasNormal:
				fmt.Fprintf(bw, " %d//%d", n, n)
			default:
				fmt.Fprintf(bw, " %d", n)
			}
		}
		bw.WriteString("\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}
