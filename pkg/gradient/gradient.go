// Package gradient provides color gradients sampled over normalized progress.
package gradient

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxKeys is the maximum number of color keys and of alpha keys in a Keyed gradient.
const MaxKeys = 8

// Gradient errors.
var (
	ErrTooManyKeys  = errors.New("too many gradient keys")
	ErrUnknownMode  = errors.New("unknown gradient mode")
	ErrUnsortedKeys = errors.New("gradient keys are not sorted by time")
)

// White is opaque white.
var White = mgl32.Vec4{1, 1, 1, 1}

// Gradient maps a progress value (usually in [0,1]) to an RGBA color.
type Gradient interface {
	Evaluate(t float32) mgl32.Vec4
}

// Func adapts a plain function to the Gradient interface.
type Func func(t float32) mgl32.Vec4

// Evaluate calls f(t).
func (f Func) Evaluate(t float32) mgl32.Vec4 {
	return f(t)
}

// Constant is a gradient with a single color.
type Constant mgl32.Vec4

// Evaluate returns the constant color.
func (c Constant) Evaluate(float32) mgl32.Vec4 {
	return mgl32.Vec4(c)
}

// Mode selects how Keyed gradients interpolate between keys.
type Mode int

const (
	// Blend interpolates linearly between neighbouring keys.
	Blend Mode = iota
	// Fixed takes the color of the first key at or after t.
	Fixed
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Blend:
		return "blend"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != Blend && m != Fixed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "blend", "":
		*m = Blend
	case "fixed":
		*m = Fixed
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, text)
	}
	return nil
}

// ColorKey is an RGB control point.
type ColorKey struct {
	Time float32 `yaml:"time" toml:"time"`
	R    float32 `yaml:"r" toml:"r"`
	G    float32 `yaml:"g" toml:"g"`
	B    float32 `yaml:"b" toml:"b"`
}

// AlphaKey is an alpha control point.
type AlphaKey struct {
	Time  float32 `yaml:"time" toml:"time"`
	Alpha float32 `yaml:"alpha" toml:"alpha"`
}

// Keyed is a gradient with independent color and alpha keys.
// No color keys evaluates to white, no alpha keys to opaque.
type Keyed struct {
	Mode   Mode       `yaml:"mode" toml:"mode"`
	Colors []ColorKey `yaml:"colors" toml:"colors"`
	Alphas []AlphaKey `yaml:"alphas" toml:"alphas"`
}

// Evaluate samples the gradient at t.
func (g *Keyed) Evaluate(t float32) mgl32.Vec4 {
	out := White

	if n := len(g.Colors); n > 0 {
		i, frac := g.locate(n, func(i int) float32 { return g.Colors[i].Time }, t)
		a := g.Colors[i]
		if frac > 0 {
			b := g.Colors[i+1]
			out[0] = lerp(a.R, b.R, frac)
			out[1] = lerp(a.G, b.G, frac)
			out[2] = lerp(a.B, b.B, frac)
		} else {
			out[0], out[1], out[2] = a.R, a.G, a.B
		}
	}

	if n := len(g.Alphas); n > 0 {
		i, frac := g.locate(n, func(i int) float32 { return g.Alphas[i].Time }, t)
		if frac > 0 {
			out[3] = lerp(g.Alphas[i].Alpha, g.Alphas[i+1].Alpha, frac)
		} else {
			out[3] = g.Alphas[i].Alpha
		}
	}

	return out
}

// locate returns the key index to sample and, in Blend mode, the fraction
// towards the next key. A zero fraction means "use key i as is".
func (g *Keyed) locate(n int, timeAt func(int) float32, t float32) (int, float32) {
	if t <= timeAt(0) {
		return 0, 0
	}
	if t >= timeAt(n-1) {
		return n - 1, 0
	}

	// First key at or after t.
	next := sort.Search(n, func(i int) bool { return timeAt(i) >= t })
	if g.Mode == Fixed || timeAt(next) == t {
		return next, 0
	}

	prev := next - 1
	span := timeAt(next) - timeAt(prev)
	if span <= 0 {
		return next, 0
	}
	return prev, (t - timeAt(prev)) / span
}

// Validate checks key counts, ordering and mode.
func (g *Keyed) Validate() error {
	if g.Mode != Blend && g.Mode != Fixed {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(g.Mode))
	}
	if len(g.Colors) > MaxKeys {
		return fmt.Errorf("%w: %d color keys (max %d)", ErrTooManyKeys, len(g.Colors), MaxKeys)
	}
	if len(g.Alphas) > MaxKeys {
		return fmt.Errorf("%w: %d alpha keys (max %d)", ErrTooManyKeys, len(g.Alphas), MaxKeys)
	}
	for i := 1; i < len(g.Colors); i++ {
		if g.Colors[i].Time < g.Colors[i-1].Time {
			return fmt.Errorf("%w: color key %d", ErrUnsortedKeys, i)
		}
	}
	for i := 1; i < len(g.Alphas); i++ {
		if g.Alphas[i].Time < g.Alphas[i-1].Time {
			return fmt.Errorf("%w: alpha key %d", ErrUnsortedKeys, i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (g *Keyed) Clone() *Keyed {
	return &Keyed{
		Mode:   g.Mode,
		Colors: append([]ColorKey(nil), g.Colors...),
		Alphas: append([]AlphaKey(nil), g.Alphas...),
	}
}

// Solid returns a keyed gradient holding a single color.
func Solid(c mgl32.Vec4) *Keyed {
	return &Keyed{
		Colors: []ColorKey{{Time: 0, R: c[0], G: c[1], B: c[2]}},
		Alphas: []AlphaKey{{Time: 0, Alpha: c[3]}},
	}
}

// Ramp returns a two-key blend from a at 0 to b at 1.
func Ramp(a, b mgl32.Vec4) *Keyed {
	return &Keyed{
		Colors: []ColorKey{
			{Time: 0, R: a[0], G: a[1], B: a[2]},
			{Time: 1, R: b[0], G: b[1], B: b[2]},
		},
		Alphas: []AlphaKey{
			{Time: 0, Alpha: a[3]},
			{Time: 1, Alpha: b[3]},
		},
	}
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
