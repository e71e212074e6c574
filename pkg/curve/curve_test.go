package curve

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear(t *testing.T) {
	c := Linear(0, 0, 1, 1)
	tests := []struct {
		at   float32
		want float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{0.75, 0.75},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.Evaluate(tt.at), 1e-6, "Evaluate(%v)", tt.at)
	}
}

func TestLinearDegenerate(t *testing.T) {
	// Both keys share a time: behaves as a constant.
	c := Linear(0, 0, 0, 0)
	for _, at := range []float32{-1, 0, 0.5, 1} {
		assert.Equal(t, float32(0), c.Evaluate(at))
	}

	c = Linear(0, 3, 0, 7)
	assert.Equal(t, float32(3), c.Evaluate(0))
	assert.Equal(t, float32(7), c.Evaluate(1))
}

func TestConstant(t *testing.T) {
	c := Constant(2.5)
	for _, at := range []float32{0, 0.3, 1} {
		assert.Equal(t, float32(2.5), c.Evaluate(at))
	}
}

func TestKeyedEdgeCases(t *testing.T) {
	assert.Equal(t, float32(0), (&Keyed{}).Evaluate(0.5), "empty curve")

	single := NewKeyed(Keyframe{Time: 0.5, Value: 4})
	assert.Equal(t, float32(4), single.Evaluate(0))
	assert.Equal(t, float32(4), single.Evaluate(1))
}

func TestKeyedHermite(t *testing.T) {
	// Ease in/out with flat tangents.
	c := NewKeyed(
		Keyframe{Time: 0, Value: 0},
		Keyframe{Time: 1, Value: 1},
	)
	assert.InDelta(t, 0.5, c.Evaluate(0.5), 1e-6)
	assert.InDelta(t, 0.15625, c.Evaluate(0.25), 1e-6)
	assert.Less(t, c.Evaluate(0.1), float32(0.1))
}

func TestKeyedMultipleSegments(t *testing.T) {
	c := NewKeyed(
		Keyframe{Time: 1, Value: 0, InTangent: -2, OutTangent: -2},
		Keyframe{Time: 0, Value: 0, InTangent: 2, OutTangent: 2},
		Keyframe{Time: 0.5, Value: 1},
	)
	require.NoError(t, c.Validate())
	assert.Equal(t, float32(0), c.Keys[0].Time, "keys are sorted")
	assert.InDelta(t, 1, c.Evaluate(0.5), 1e-6)
	assert.InDelta(t, c.Evaluate(0.25), c.Evaluate(0.75), 1e-6, "symmetric peak")
}

func TestKeyedSteppedTangent(t *testing.T) {
	inf := math32.Inf(1)
	c := NewKeyed(
		Keyframe{Time: 0, Value: 1, OutTangent: inf},
		Keyframe{Time: 1, Value: 5, InTangent: inf},
	)
	require.NoError(t, c.Validate())
	assert.Equal(t, float32(1), c.Evaluate(0.9))
	assert.Equal(t, float32(5), c.Evaluate(1))
}

func TestValidate(t *testing.T) {
	var zero float32
	nan := zero / zero

	tests := []struct {
		name    string
		keys    []Keyframe
		wantErr error
	}{
		{"empty", nil, nil},
		{"sorted", []Keyframe{{Time: 0}, {Time: 1}}, nil},
		{"unsorted", []Keyframe{{Time: 1}, {Time: 0}}, ErrUnsortedKeys},
		{"nan value", []Keyframe{{Time: 0, Value: nan}}, ErrNonFiniteKey},
		{"nan tangent", []Keyframe{{Time: 0, InTangent: nan}}, ErrNonFiniteKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Keyed{Keys: tt.keys}).Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFunc(t *testing.T) {
	var c Curve = Func(func(t float32) float32 { return t * 2 })
	assert.Equal(t, float32(1), c.Evaluate(0.5))
}

func TestClone(t *testing.T) {
	c := Identity()
	cp := c.Clone()
	cp.Keys[1].Value = 9
	assert.Equal(t, float32(1), c.Keys[1].Value)
}
