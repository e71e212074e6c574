package ringmesh

import "github.com/chewxy/math32"

// Validate checks every field against its documented range.
// Build calls it before touching any buffer.
func (p *Parameters) Validate() error {
	if p == nil {
		return invalid("parameters", nil, "nil")
	}

	for _, f := range []struct {
		name  string
		value float32
	}{
		{"startRadius", p.StartRadius},
		{"endRadius", p.EndRadius},
		{"maxAngle", p.MaxAngle},
		{"height", p.Height},
		{"twist", p.Twist},
	} {
		if !finite(f.value) {
			return invalid(f.name, f.value, "not finite")
		}
	}

	switch {
	case p.StartRadius < 0:
		return invalid("startRadius", p.StartRadius, "must be >= 0")
	case p.EndRadius <= 0:
		return invalid("endRadius", p.EndRadius, "must be > 0")
	case p.MaxAngle <= 0 || p.MaxAngle > MaxAngle:
		return invalid("maxAngle", p.MaxAngle, "must be in (0, 360]")
	case p.Loops < MinLoops || p.Loops > MaxLoops:
		return invalid("loops", p.Loops, "must be in [3, 128]")
	case p.Rings < MinRings || p.Rings > MaxRings:
		return invalid("rings", p.Rings, "must be in [2, 128]")
	case p.RingProfile == nil:
		return invalid("ringProfile", nil, "missing curve")
	case p.HeightProfile == nil:
		return invalid("heightProfile", nil, "missing curve")
	case p.TwistProfile == nil:
		return invalid("twistProfile", nil, "missing curve")
	}

	for _, slot := range Slots {
		ch := p.Channels[slot]
		if !Enabled(ch) {
			continue
		}
		if err := ch.validate(slot); err != nil {
			return err
		}
	}
	return nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
