package gradient

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func assertColor(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestConstant(t *testing.T) {
	g := Constant(White)
	for _, at := range []float32{0, 0.5, 1} {
		assert.Equal(t, White, g.Evaluate(at))
	}
}

func TestKeyedEmpty(t *testing.T) {
	assert.Equal(t, White, (&Keyed{}).Evaluate(0.3))
}

func TestKeyedBlend(t *testing.T) {
	g := Ramp(mgl32.Vec4{0, 0, 0, 0}, mgl32.Vec4{1, 0.5, 0, 1})

	tests := []struct {
		at   float32
		want mgl32.Vec4
	}{
		{-1, mgl32.Vec4{0, 0, 0, 0}},
		{0, mgl32.Vec4{0, 0, 0, 0}},
		{0.5, mgl32.Vec4{0.5, 0.25, 0, 0.5}},
		{1, mgl32.Vec4{1, 0.5, 0, 1}},
		{3, mgl32.Vec4{1, 0.5, 0, 1}},
	}
	for _, tt := range tests {
		assertColor(t, tt.want, g.Evaluate(tt.at))
	}
}

func TestKeyedFixed(t *testing.T) {
	g := &Keyed{
		Mode: Fixed,
		Colors: []ColorKey{
			{Time: 0, R: 1},
			{Time: 0.5, G: 1},
			{Time: 1, B: 1},
		},
	}
	assertColor(t, mgl32.Vec4{0, 1, 0, 1}, g.Evaluate(0.25))
	assertColor(t, mgl32.Vec4{0, 1, 0, 1}, g.Evaluate(0.5))
	assertColor(t, mgl32.Vec4{0, 0, 1, 1}, g.Evaluate(0.75))
	assertColor(t, mgl32.Vec4{1, 0, 0, 1}, g.Evaluate(0))
}

func TestKeyedIndependentAlpha(t *testing.T) {
	g := &Keyed{
		Colors: []ColorKey{{Time: 0, R: 1, G: 1, B: 1}},
		Alphas: []AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 0}},
	}
	assertColor(t, mgl32.Vec4{1, 1, 1, 0.75}, g.Evaluate(0.25))
}

func TestSolid(t *testing.T) {
	c := mgl32.Vec4{0.2, 0.4, 0.6, 0.8}
	g := Solid(c)
	assertColor(t, c, g.Evaluate(0))
	assertColor(t, c, g.Evaluate(1))
}

func TestValidate(t *testing.T) {
	tooMany := &Keyed{}
	for i := 0; i <= MaxKeys; i++ {
		tooMany.Colors = append(tooMany.Colors, ColorKey{Time: float32(i) / MaxKeys})
	}

	tests := []struct {
		name    string
		g       *Keyed
		wantErr error
	}{
		{"ramp", Ramp(White, White), nil},
		{"too many", tooMany, ErrTooManyKeys},
		{"unsorted", &Keyed{Alphas: []AlphaKey{{Time: 1}, {Time: 0}}}, ErrUnsortedKeys},
		{"bad mode", &Keyed{Mode: Mode(7)}, ErrUnknownMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestModeYAML(t *testing.T) {
	data, err := yaml.Marshal(&Keyed{Mode: Fixed})
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: fixed")

	var g Keyed
	require.NoError(t, yaml.Unmarshal([]byte("mode: blend\ncolors:\n  - {time: 0, r: 1, g: 0, b: 0}\n"), &g))
	assert.Equal(t, Blend, g.Mode)
	require.Len(t, g.Colors, 1)
	assert.Equal(t, float32(1), g.Colors[0].R)

	err = yaml.Unmarshal([]byte("mode: wavy\n"), &g)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestClone(t *testing.T) {
	g := Ramp(White, White)
	cp := g.Clone()
	cp.Colors[0].R = 0
	assert.Equal(t, float32(1), g.Colors[0].R)
}
