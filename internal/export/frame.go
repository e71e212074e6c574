package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// Frame errors.
var (
	ErrTruncatedFrame = errors.New("truncated frame")
	ErrMalformedFrame = errors.New("malformed frame")
)

// Frame field numbers.
const (
	fieldName        protowire.Number = 1
	fieldFingerprint protowire.Number = 2
	fieldPositions   protowire.Number = 3
	fieldIndices     protowire.Number = 4
	fieldNormals     protowire.Number = 5
	fieldColors      protowire.Number = 6
	fieldUV0         protowire.Number = 7 // UV1..UV3 follow
)

// Frame is a decoded mesh message.
type Frame struct {
	Name        string
	Fingerprint string
	Mesh        *ringmesh.Mesh
}

// EncodeFrame serializes a mesh in protobuf wire format. Float buffers are
// packed fixed32, indices packed varints. Absent channels are omitted.
func EncodeFrame(name, fingerprint string, m *ringmesh.Mesh) []byte {
	size := 16 + len(name) + len(fingerprint) + len(m.Positions)*12 + len(m.Indices)*2 +
		len(m.Normals)*12 + len(m.Colors)*16
	for _, uv := range m.UVs {
		size += len(uv) * 16
	}
	b := make([]byte, 0, size)

	if name != "" {
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	if fingerprint != "" {
		b = protowire.AppendTag(b, fieldFingerprint, protowire.BytesType)
		b = protowire.AppendString(b, fingerprint)
	}

	b = appendVec3s(b, fieldPositions, m.Positions)

	var idx []byte
	for _, i := range m.Indices {
		idx = protowire.AppendVarint(idx, uint64(i))
	}
	b = protowire.AppendTag(b, fieldIndices, protowire.BytesType)
	b = protowire.AppendBytes(b, idx)

	if m.Normals != nil {
		b = appendVec3s(b, fieldNormals, m.Normals)
	}
	if m.Colors != nil {
		b = appendVec4s(b, fieldColors, m.Colors)
	}
	for i, uv := range m.UVs {
		if uv != nil {
			b = appendVec4s(b, fieldUV0+protowire.Number(i), uv)
		}
	}
	return b
}

func appendVec3s(b []byte, num protowire.Number, vs []mgl32.Vec3) []byte {
	payload := make([]byte, 0, len(vs)*12)
	for _, v := range vs {
		for _, c := range v {
			payload = protowire.AppendFixed32(payload, math32.Float32bits(c))
		}
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func appendVec4s(b []byte, num protowire.Number, vs []mgl32.Vec4) []byte {
	payload := make([]byte, 0, len(vs)*16)
	for _, v := range vs {
		for _, c := range v {
			payload = protowire.AppendFixed32(payload, math32.Float32bits(c))
		}
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// DecodeFrame parses a frame produced by EncodeFrame. Unknown fields are
// skipped; buffers whose lengths disagree with the vertex count and
// out-of-range indices are rejected.
func DecodeFrame(b []byte) (*Frame, error) {
	f := &Frame{Mesh: &ringmesh.Mesh{}}
	m := f.Mesh

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireError(n)
		}
		b = b[n:]

		if num < fieldName || num > fieldUV0+3 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, wireError(n)
			}
			b = b[n:]
			continue
		}

		if typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: field %d has wire type %d", ErrMalformedFrame, num, typ)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, wireError(n)
		}
		b = b[n:]

		var err error
		switch num {
		case fieldName:
			f.Name = string(v)
		case fieldFingerprint:
			f.Fingerprint = string(v)
		case fieldPositions:
			m.Positions, err = decodeVec3s(v)
		case fieldIndices:
			m.Indices, err = decodeIndices(v)
		case fieldNormals:
			m.Normals, err = decodeVec3s(v)
		case fieldColors:
			m.Colors, err = decodeVec4s(v)
		default:
			m.UVs[num-fieldUV0], err = decodeVec4s(v)
		}
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", num, err)
		}
	}

	if err := check(m); err != nil {
		return nil, err
	}
	m.UpdateBounds()
	return f, nil
}

func wireError(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncatedFrame, err)
	}
	return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
}

func decodeFloats(v []byte, width int) ([]float32, error) {
	if len(v)%(4*width) != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedFrame, len(v), 4*width)
	}
	out := make([]float32, 0, len(v)/4)
	for len(v) > 0 {
		bits, n := protowire.ConsumeFixed32(v)
		if n < 0 {
			return nil, wireError(n)
		}
		out = append(out, math32.Float32frombits(bits))
		v = v[n:]
	}
	return out, nil
}

func decodeVec3s(v []byte) ([]mgl32.Vec3, error) {
	fs, err := decodeFloats(v, 3)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, len(fs)/3)
	for i := range out {
		copy(out[i][:], fs[i*3:])
	}
	return out, nil
}

func decodeVec4s(v []byte) ([]mgl32.Vec4, error) {
	fs, err := decodeFloats(v, 4)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec4, len(fs)/4)
	for i := range out {
		copy(out[i][:], fs[i*4:])
	}
	return out, nil
}

func decodeIndices(v []byte) ([]uint32, error) {
	var out []uint32
	for len(v) > 0 {
		x, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return nil, wireError(n)
		}
		if x > uint64(^uint32(0)) {
			return nil, fmt.Errorf("%w: index %d overflows uint32", ErrMalformedFrame, x)
		}
		out = append(out, uint32(x))
		v = v[n:]
	}
	return out, nil
}

func check(m *ringmesh.Mesh) error {
	n := len(m.Positions)
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrMalformedFrame, len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= n {
			return fmt.Errorf("%w: index %d out of range for %d vertices", ErrMalformedFrame, i, n)
		}
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrMalformedFrame, len(m.Normals), n)
	}
	for _, slot := range ringmesh.Slots {
		if buf := m.Channel(slot); buf != nil && len(buf) != n {
			return fmt.Errorf("%w: %d %s values for %d vertices", ErrMalformedFrame, len(buf), slot, n)
		}
	}
	return nil
}
