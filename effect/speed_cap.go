package effect

// SpeedCap composes a ball's base maximum speed with the multipliers of the
// speed effects currently applied to it. Each kind owns at most one
// multiplier, so reverting one kind never disturbs another.
type SpeedCap struct {
	Base float64
	mods [kindCount]float64
	set  [kindCount]bool
}

func NewSpeedCap(base float64) SpeedCap {
	return SpeedCap{Base: base}
}

func (c *SpeedCap) Set(kind Kind, multiplier float64) {
	if c == nil || !kind.Valid() {
		return
	}
	c.mods[kind] = multiplier
	c.set[kind] = true
}

func (c *SpeedCap) Clear(kind Kind) {
	if c == nil || !kind.Valid() {
		return
	}
	c.mods[kind] = 0
	c.set[kind] = false
}

func (c *SpeedCap) Has(kind Kind) bool {
	return c != nil && kind.Valid() && c.set[kind]
}

// Reset drops every modifier, leaving Base untouched.
func (c *SpeedCap) Reset() {
	if c == nil {
		return
	}
	*c = SpeedCap{Base: c.Base}
}

// Value is Base times every active multiplier, folded in kind order.
func (c SpeedCap) Value() float64 {
	v := c.Base
	for k := range c.mods {
		if c.set[k] {
			v *= c.mods[k]
		}
	}
	return v
}
