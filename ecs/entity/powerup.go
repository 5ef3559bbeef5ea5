package entity

import (
	"errors"
	"image/color"

	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/pool"
	"go.uber.org/zap"
)

var powerUpColors = map[effect.Kind]color.NRGBA{
	effect.ExpandPaddle: {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	effect.ShrinkPaddle: {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	effect.MultiBall:    {R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	effect.SplitBall:    {R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	effect.SpeedUp:      {R: 0xff, G: 0xeb, B: 0x04, A: 0xff},
	effect.SlowDown:     {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
}

func PowerUpColor(kind effect.Kind) color.NRGBA {
	if c, ok := powerUpColors[kind]; ok {
		return c
	}
	return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}

// PowerUpSpawner drops pooled power-ups for the effect dropper.
type PowerUpSpawner struct {
	world  *ecs.World
	pools  *Pools
	logger *zap.Logger
}

var _ effect.Spawner = (*PowerUpSpawner)(nil)

func NewPowerUpSpawner(w *ecs.World, pools *Pools, logger *zap.Logger) *PowerUpSpawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PowerUpSpawner{world: w, pools: pools, logger: logger}
}

func (s *PowerUpSpawner) SpawnPowerUp(kind effect.Kind, x, y float64) bool {
	e, err := s.pools.Acquire(KeyPowerUp, pool.Placement{X: x, Y: y})
	if err != nil {
		if errors.Is(err, pool.ErrPoolExhausted) {
			s.logger.Debug("entity: power-up skipped", zap.Stringer("kind", kind))
		} else {
			s.logger.Warn("entity: power-up spawn failed", zap.Stringer("kind", kind), zap.Error(err))
		}
		return false
	}

	if pu, ok := ecs.Get(s.world, e, component.PowerUpComponent.Kind()); ok {
		pu.Kind = kind
	}
	if sprite, ok := ecs.Get(s.world, e, component.SpriteComponent.Kind()); ok {
		sprite.Color = PowerUpColor(kind)
	}
	return true
}
