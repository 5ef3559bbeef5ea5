package system

import (
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/effect"
	"go.uber.org/zap"
)

// Activator starts an effect.
type Activator interface {
	Activate(kind effect.Kind)
}

// PowerUpSystem drops power-ups toward the paddle, activates the ones it
// catches, and recycles the ones that fall past it.
type PowerUpSystem struct {
	pools     *entity.Pools
	activator Activator
	logger    *zap.Logger
}

func NewPowerUpSystem(pools *entity.Pools, activator Activator, logger *zap.Logger) *PowerUpSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PowerUpSystem{pools: pools, activator: activator, logger: logger}
}

func (s *PowerUpSystem) Update(w *ecs.World) {
	if w == nil || s.pools == nil {
		return
	}
	arena, hasArena := arenaBounds(w)

	ecs.ForEach2(w, component.PowerUpComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pu *component.PowerUp, tr *component.Transform) {
		if !entity.IsLive(w, e) {
			return
		}
		if ecs.Has(w, e, component.PickupRequestComponent.Kind()) {
			ecs.Remove(w, e, component.PickupRequestComponent.Kind())
			s.logger.Info("powerup: picked up", zap.Stringer("kind", pu.Kind))
			if s.activator != nil {
				s.activator.Activate(pu.Kind)
			}
			s.pools.Release(e)
			return
		}

		if hasArena {
			halfHeight := 0.0
			if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
				halfHeight = body.Height / 2
			}
			if tr.Y-halfHeight > arena.Height {
				s.pools.Release(e)
				return
			}
		}

		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			if body.VelocityX != 0 || body.VelocityY != pu.FallSpeed {
				body.VelocityX = 0
				body.VelocityY = pu.FallSpeed
				body.VelocityDirty = true
			}
		}
	})
}
