package system

import (
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/prefabs"
	"go.uber.org/zap"
)

// LevelLoader produces the layout for a level number.
type LevelLoader func(number int) (entity.Level, error)

// ScriptLevelLoader runs the level script described by spec.
func ScriptLevelLoader(spec prefabs.LevelSpec, arenaWidth float64) LevelLoader {
	return func(number int) (entity.Level, error) {
		return entity.LoadLevel(spec, arenaWidth, number)
	}
}

// LevelSystem builds the first level and the next one whenever every brick
// has been cleared. Clearing a level re-serves the ball.
type LevelSystem struct {
	pools  *entity.Pools
	load   LevelLoader
	logger *zap.Logger
	failed bool
}

func NewLevelSystem(pools *entity.Pools, load LevelLoader, logger *zap.Logger) *LevelSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LevelSystem{pools: pools, load: load, logger: logger}
}

// SetLoader swaps the layout source, e.g. after the level script changes.
func (s *LevelSystem) SetLoader(load LevelLoader) {
	s.load = load
	s.failed = false
}

func (s *LevelSystem) Update(w *ecs.World) {
	if w == nil || s.pools == nil || s.load == nil || s.failed {
		return
	}
	state, ok := entity.GameState(w)
	if !ok || state.Over {
		return
	}
	if s.pools.CountActive(entity.KeyBrick) > 0 {
		return
	}

	cleared := state.BrickCount > 0
	number := state.Level
	if cleared {
		number++
	}
	level, err := s.load(number)
	if err != nil {
		s.logger.Error("level: load failed", zap.Int("level", number), zap.Error(err))
		s.failed = true
		return
	}
	spawned, err := entity.SpawnLevel(w, s.pools, level, s.logger)
	if err != nil || spawned == 0 {
		s.logger.Error("level: spawn failed", zap.Int("level", number), zap.Error(err))
		s.failed = true
		return
	}
	state.Level = number
	state.BrickCount = spawned

	if !cleared {
		return
	}
	for _, e := range entity.LiveBalls(w) {
		s.pools.Release(e)
	}
	if paddle, ok := w.First(component.PaddleComponent.Kind()); ok {
		entity.ResetPaddle(w, paddle)
		if _, err := entity.AttachBall(w, s.pools, paddle); err != nil {
			s.logger.Error("level: could not serve ball", zap.Error(err))
		}
	}
}
