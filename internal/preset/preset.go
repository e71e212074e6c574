// Package preset holds the serializable mesh settings record: the values
// a user edits, their defaults and input ranges, and the conversion to
// generator parameters.
package preset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/fxmesh/pkg/curve"
	"github.com/Faultbox/fxmesh/pkg/gradient"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

// Preset errors.
var (
	ErrInvalidChannel = errors.New("invalid channel")
	ErrInvalidCurve   = errors.New("invalid curve")
)

// Mode is the channel mode as written in preset files.
type Mode string

// Channel modes.
const (
	ModeNone     Mode = "none"
	ModeGradient Mode = "gradient"
	ModeCurves   Mode = "curves"
)

// Preset is one mesh settings record.
type Preset struct {
	Name           string   `yaml:"name" toml:"name"`
	Radius         Radius   `yaml:"radius" toml:"radius"`
	Topology       Topology `yaml:"topology" toml:"topology"`
	Height         Profiled `yaml:"height" toml:"height"`
	Twist          Profiled `yaml:"twist" toml:"twist"`
	ComputeNormals bool     `yaml:"compute_normals" toml:"compute_normals"`
	Channels       Channels `yaml:"channels" toml:"channels"`
}

// Radius holds the ring extent.
type Radius struct {
	Start    float32 `yaml:"start" toml:"start"`
	End      float32 `yaml:"end" toml:"end"`
	MaxAngle float32 `yaml:"max_angle" toml:"max_angle"`
}

// Topology holds the grid resolution and radial profile.
type Topology struct {
	Loops   int         `yaml:"loops" toml:"loops"`
	Rings   int         `yaml:"rings" toml:"rings"`
	Profile curve.Keyed `yaml:"profile" toml:"profile"`
}

// Profiled is an amount shaped by a curve over radial progress.
type Profiled struct {
	Amount  float32     `yaml:"amount" toml:"amount"`
	Profile curve.Keyed `yaml:"profile" toml:"profile"`
}

// Channels holds the five attribute channels.
type Channels struct {
	Color Channel `yaml:"color" toml:"color"`
	UV0   Channel `yaml:"uv0" toml:"uv0"`
	UV1   Channel `yaml:"uv1" toml:"uv1"`
	UV2   Channel `yaml:"uv2" toml:"uv2"`
	UV3   Channel `yaml:"uv3" toml:"uv3"`
}

// Channel is the file form of one attribute channel. Which fields are
// used depends on Mode.
type Channel struct {
	Mode       Mode            `yaml:"mode" toml:"mode"`
	Gradient   *gradient.Keyed `yaml:"gradient,omitempty" toml:"gradient,omitempty"`
	Horizontal bool            `yaml:"horizontal,omitempty" toml:"horizontal,omitempty"`
	R          *AxisConfig     `yaml:"r,omitempty" toml:"r,omitempty"`
	G          *AxisConfig     `yaml:"g,omitempty" toml:"g,omitempty"`
	B          *AxisConfig     `yaml:"b,omitempty" toml:"b,omitempty"`
	A          *AxisConfig     `yaml:"a,omitempty" toml:"a,omitempty"`
}

// AxisConfig is one component curve of a curves channel.
type AxisConfig struct {
	Curve      curve.Keyed `yaml:"curve" toml:"curve"`
	Horizontal bool        `yaml:"horizontal" toml:"horizontal"`
}

// Default returns the settings of a newly created preset.
func Default() *Preset {
	return &Preset{
		Name: "FXMesh",
		Radius: Radius{
			Start:    0,
			End:      10,
			MaxAngle: 360,
		},
		Topology: Topology{
			Loops:   8,
			Rings:   3,
			Profile: *curve.Linear(0, 0, 1, 1),
		},
		Height: Profiled{
			Amount:  0,
			Profile: *curve.Linear(0, 0, 1, 1),
		},
		Twist: Profiled{
			Amount:  0,
			Profile: *curve.Linear(0, 0, 0, 0),
		},
		Channels: Channels{
			Color: Channel{Mode: ModeNone},
			UV0:   Channel{Mode: ModeNone},
			UV1:   Channel{Mode: ModeNone},
			UV2:   Channel{Mode: ModeNone},
			UV3:   Channel{Mode: ModeNone},
		},
	}
}

// Clamp forces the numeric fields into their editable ranges. Decode
// applies it; presets built in code are validated as they are.
func (p *Preset) Clamp() {
	p.Radius.Start = max(p.Radius.Start, 0)
	p.Radius.End = max(p.Radius.End, ringmesh.MinEndRadius)
	p.Radius.MaxAngle = min(max(p.Radius.MaxAngle, 0.001), ringmesh.MaxAngle)
	p.Topology.Loops = min(max(p.Topology.Loops, ringmesh.MinLoops), ringmesh.MaxLoops)
	p.Topology.Rings = min(max(p.Topology.Rings, ringmesh.MinRings), ringmesh.MaxRings)
}

// Slot returns the channel stored for a mesh attribute slot.
func (c *Channels) Slot(s ringmesh.Slot) *Channel {
	switch s {
	case ringmesh.SlotColor:
		return &c.Color
	case ringmesh.SlotUV0:
		return &c.UV0
	case ringmesh.SlotUV1:
		return &c.UV1
	case ringmesh.SlotUV2:
		return &c.UV2
	case ringmesh.SlotUV3:
		return &c.UV3
	}
	return nil
}

// Enabled reports whether the channel produces an attribute buffer.
func (c *Channel) Enabled() bool {
	return c.Mode != ModeNone && c.Mode != ""
}

// Parameters converts the preset to generator parameters. Curves and
// gradients are validated; ranges are left to ringmesh.
func (p *Preset) Parameters() (*ringmesh.Parameters, error) {
	profiles := []struct {
		name string
		c    *curve.Keyed
	}{
		{"topology.profile", &p.Topology.Profile},
		{"height.profile", &p.Height.Profile},
		{"twist.profile", &p.Twist.Profile},
	}
	for _, pr := range profiles {
		if err := pr.c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCurve, pr.name, err)
		}
	}

	params := &ringmesh.Parameters{
		StartRadius:    p.Radius.Start,
		EndRadius:      p.Radius.End,
		MaxAngle:       p.Radius.MaxAngle,
		Loops:          p.Topology.Loops,
		Rings:          p.Topology.Rings,
		RingProfile:    p.Topology.Profile.Clone(),
		Height:         p.Height.Amount,
		HeightProfile:  p.Height.Profile.Clone(),
		Twist:          p.Twist.Amount,
		TwistProfile:   p.Twist.Profile.Clone(),
		ComputeNormals: p.ComputeNormals,
	}

	for _, slot := range ringmesh.Slots {
		ch, err := p.Channels.Slot(slot).info(slot)
		if err != nil {
			return nil, err
		}
		params.Channels[slot] = ch
	}
	return params, nil
}

func (c *Channel) info(slot ringmesh.Slot) (ringmesh.ChannelInfo, error) {
	switch c.Mode {
	case ModeNone, "":
		return nil, nil

	case ModeGradient:
		if c.Gradient == nil {
			return nil, fmt.Errorf("%w: %s: gradient mode without a gradient", ErrInvalidChannel, slot)
		}
		if err := c.Gradient.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidChannel, slot, err)
		}
		return ringmesh.GradientChannel{Gradient: c.Gradient.Clone(), Horizontal: c.Horizontal}, nil

	case ModeCurves:
		var axes [4]ringmesh.AxisCurve
		for i, a := range [4]*AxisConfig{c.R, c.G, c.B, c.A} {
			if a == nil {
				return nil, fmt.Errorf("%w: %s: curves mode without a %c curve", ErrInvalidChannel, slot, "rgba"[i])
			}
			if err := a.Curve.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s.%c: %w", ErrInvalidChannel, slot, "rgba"[i], err)
			}
			axes[i] = ringmesh.AxisCurve{Curve: a.Curve.Clone(), Horizontal: a.Horizontal}
		}
		return ringmesh.CurvesChannel{R: axes[0], G: axes[1], B: axes[2], A: axes[3]}, nil
	}

	return nil, fmt.Errorf("%w: %s: unknown mode %q", ErrInvalidChannel, slot, c.Mode)
}

// Fingerprint identifies the preset by value: two presets with the same
// settings share a fingerprint regardless of their names.
func (p *Preset) Fingerprint() string {
	anon := *p
	anon.Name = ""
	data, err := yaml.Marshal(&anon)
	if err != nil {
		// Only an out-of-range gradient mode fails to marshal.
		data = []byte(fmt.Sprintf("%#v", anon))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy that shares no slices or pointers with p.
func (p *Preset) Clone() *Preset {
	var cp Preset
	if err := copier.CopyWithOption(&cp, p, copier.Option{DeepCopy: true}); err != nil {
		// copier only rejects nil or mismatched arguments.
		panic(fmt.Sprintf("preset: clone: %v", err))
	}
	return &cp
}
