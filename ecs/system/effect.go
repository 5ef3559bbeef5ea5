package system

import (
	"github.com/milk9111/breakout/common"
	"github.com/milk9111/breakout/ecs"
)

// Advancer is driven once per tick.
type Advancer interface {
	Advance(dt float64)
}

// EffectSystem ticks the effect scheduler inside the system order so paddle
// scale changes land before physics rebuilds colliders.
type EffectSystem struct {
	effects Advancer
	dt      float64
}

func NewEffectSystem(effects Advancer) *EffectSystem {
	return &EffectSystem{effects: effects, dt: common.FixedDelta}
}

func (s *EffectSystem) Update(w *ecs.World) {
	if s == nil || s.effects == nil {
		return
	}
	s.effects.Advance(s.dt)
}
