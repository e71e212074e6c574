package ringmesh

import (
	"github.com/Faultbox/fxmesh/pkg/curve"
	"github.com/Faultbox/fxmesh/pkg/gradient"
	"github.com/go-gl/mathgl/mgl32"
)

// ChannelMode is the sampling strategy of an attribute channel.
type ChannelMode int

// Channel modes.
const (
	ModeNone ChannelMode = iota
	ModeGradient
	ModeCurves
)

func (m ChannelMode) String() string {
	switch m {
	case ModeGradient:
		return "gradient"
	case ModeCurves:
		return "curves"
	default:
		return "none"
	}
}

// ChannelInfo configures one attribute channel. A nil ChannelInfo
// disables the channel; otherwise it is a GradientChannel or a CurvesChannel.
type ChannelInfo interface {
	Mode() ChannelMode
	sample(horizontal, vertical float32) mgl32.Vec4
	validate(slot Slot) error
}

// Enabled reports whether a channel produces an attribute buffer.
func Enabled(ch ChannelInfo) bool {
	return ch != nil && ch.Mode() != ModeNone
}

// GradientChannel samples one gradient along a single axis.
type GradientChannel struct {
	Gradient   gradient.Gradient
	Horizontal bool // sample by loop progress instead of ring progress
}

// Mode returns ModeGradient.
func (GradientChannel) Mode() ChannelMode { return ModeGradient }

func (g GradientChannel) sample(horizontal, vertical float32) mgl32.Vec4 {
	return g.Gradient.Evaluate(pick(g.Horizontal, horizontal, vertical))
}

func (g GradientChannel) validate(slot Slot) error {
	if g.Gradient == nil {
		return invalid(slot.String()+".gradient", nil, "missing gradient")
	}
	return nil
}

// AxisCurve is one component curve of a CurvesChannel.
type AxisCurve struct {
	Curve      curve.Curve
	Horizontal bool
}

func (a AxisCurve) sample(horizontal, vertical float32) float32 {
	return a.Curve.Evaluate(pick(a.Horizontal, horizontal, vertical))
}

// CurvesChannel samples four independent curves, packed as R/X, G/Y, B/Z, A/W.
type CurvesChannel struct {
	R, G, B, A AxisCurve
}

// Mode returns ModeCurves.
func (CurvesChannel) Mode() ChannelMode { return ModeCurves }

func (c CurvesChannel) sample(horizontal, vertical float32) mgl32.Vec4 {
	return mgl32.Vec4{
		c.R.sample(horizontal, vertical),
		c.G.sample(horizontal, vertical),
		c.B.sample(horizontal, vertical),
		c.A.sample(horizontal, vertical),
	}
}

func (c CurvesChannel) validate(slot Slot) error {
	for i, a := range [4]AxisCurve{c.R, c.G, c.B, c.A} {
		if a.Curve == nil {
			return invalid(slot.String()+"."+componentName(slot, i), nil, "missing curve")
		}
	}
	return nil
}

func pick(horizontal bool, h, v float32) float32 {
	if horizontal {
		return h
	}
	return v
}

func componentName(slot Slot, i int) string {
	if slot == SlotColor {
		return string("rgba"[i])
	}
	return string("xyzw"[i])
}
