// Package curve provides scalar curves sampled over normalized progress.
package curve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// Curve errors.
var (
	ErrUnsortedKeys = errors.New("curve keys are not sorted by time")
	ErrNonFiniteKey = errors.New("curve key is not finite")
)

// Curve maps a progress value (usually in [0,1]) to a scalar.
type Curve interface {
	Evaluate(t float32) float32
}

// Func adapts a plain function to the Curve interface.
type Func func(t float32) float32

// Evaluate calls f(t).
func (f Func) Evaluate(t float32) float32 {
	return f(t)
}

// Keyframe is a single control point of a keyed curve.
// Tangents are slopes (value units per time unit).
type Keyframe struct {
	Time       float32 `yaml:"time" toml:"time"`
	Value      float32 `yaml:"value" toml:"value"`
	InTangent  float32 `yaml:"in" toml:"in"`
	OutTangent float32 `yaml:"out" toml:"out"`
}

// Keyed is a piecewise cubic Hermite curve defined by keyframes.
// Outside the key range the curve holds the first/last value.
type Keyed struct {
	Keys []Keyframe `yaml:"keys" toml:"keys"`
}

// NewKeyed returns a curve over the given keys, sorted by time.
func NewKeyed(keys ...Keyframe) *Keyed {
	k := &Keyed{Keys: append([]Keyframe(nil), keys...)}
	sort.SliceStable(k.Keys, func(i, j int) bool {
		return k.Keys[i].Time < k.Keys[j].Time
	})
	return k
}

// Linear returns a straight line from (t0,v0) to (t1,v1).
// With t0 == t1 the curve is constant at v0.
func Linear(t0, v0, t1, v1 float32) *Keyed {
	var slope float32
	if t1 != t0 {
		slope = (v1 - v0) / (t1 - t0)
	}
	return NewKeyed(
		Keyframe{Time: t0, Value: v0, InTangent: slope, OutTangent: slope},
		Keyframe{Time: t1, Value: v1, InTangent: slope, OutTangent: slope},
	)
}

// Constant returns a flat curve.
func Constant(v float32) *Keyed {
	return Linear(0, v, 1, v)
}

// Identity returns the ramp from (0,0) to (1,1).
func Identity() *Keyed {
	return Linear(0, 0, 1, 1)
}

// Evaluate samples the curve at t.
func (k *Keyed) Evaluate(t float32) float32 {
	n := len(k.Keys)
	switch {
	case n == 0:
		return 0
	case n == 1 || t <= k.Keys[0].Time:
		return k.Keys[0].Value
	case t >= k.Keys[n-1].Time:
		return k.Keys[n-1].Value
	}

	// First key strictly after t; the segment is [i-1, i].
	i := sort.Search(n, func(i int) bool { return k.Keys[i].Time > t })
	return hermite(k.Keys[i-1], k.Keys[i], t)
}

// Validate checks that keys are finite and ordered by time.
// Infinite tangents are allowed and produce stepped segments.
func (k *Keyed) Validate() error {
	for i, key := range k.Keys {
		if !finite(key.Time) || !finite(key.Value) || math32.IsNaN(key.InTangent) || math32.IsNaN(key.OutTangent) {
			return fmt.Errorf("%w: key %d", ErrNonFiniteKey, i)
		}
		if i > 0 && key.Time < k.Keys[i-1].Time {
			return fmt.Errorf("%w: key %d at %g precedes %g", ErrUnsortedKeys, i, key.Time, k.Keys[i-1].Time)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (k *Keyed) Clone() *Keyed {
	return &Keyed{Keys: append([]Keyframe(nil), k.Keys...)}
}

func hermite(a, b Keyframe, t float32) float32 {
	dt := b.Time - a.Time
	if dt == 0 {
		return a.Value
	}
	if math32.IsInf(a.OutTangent, 0) || math32.IsInf(b.InTangent, 0) {
		return a.Value
	}

	s := (t - a.Time) / dt
	s2 := s * s
	s3 := s2 * s

	m0 := a.OutTangent * dt
	m1 := b.InTangent * dt

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	return h00*a.Value + h10*m0 + h01*b.Value + h11*m1
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
