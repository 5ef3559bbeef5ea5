package system

import (
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/effect"
	"go.uber.org/zap"
)

// Dropper decides whether a broken brick leaves a power-up behind.
type Dropper interface {
	TrySpawn(x, y float64) (effect.Kind, bool)
}

// BrickSystem scores struck bricks, rolls for a drop, and returns them to
// the pool.
type BrickSystem struct {
	pools   *entity.Pools
	dropper Dropper
	logger  *zap.Logger
}

func NewBrickSystem(pools *entity.Pools, dropper Dropper, logger *zap.Logger) *BrickSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrickSystem{pools: pools, dropper: dropper, logger: logger}
}

func (s *BrickSystem) Update(w *ecs.World) {
	if w == nil || s.pools == nil {
		return
	}
	state, _ := entity.GameState(w)

	ecs.ForEach2(w, component.BrickHitComponent.Kind(), component.BrickComponent.Kind(), func(e ecs.Entity, _ *component.BrickHit, brick *component.Brick) {
		ecs.Remove(w, e, component.BrickHitComponent.Kind())
		if !entity.IsLive(w, e) {
			return
		}
		if state != nil {
			state.Score += brick.Points
		}
		if tr, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && s.dropper != nil {
			if kind, dropped := s.dropper.TrySpawn(tr.X, tr.Y); dropped {
				s.logger.Debug("brick: dropped power-up", zap.Stringer("kind", kind))
			}
		}
		s.pools.Release(e)
	})
}
