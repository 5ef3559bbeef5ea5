package system

import (
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"go.uber.org/zap"
)

// LivesSystem costs a life when the last ball is gone, then either ends the
// game or serves a new ball on the reset paddle.
type LivesSystem struct {
	pools  *entity.Pools
	logger *zap.Logger
}

func NewLivesSystem(pools *entity.Pools, logger *zap.Logger) *LivesSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LivesSystem{pools: pools, logger: logger}
}

func (s *LivesSystem) Update(w *ecs.World) {
	if w == nil || s.pools == nil {
		return
	}
	state, ok := entity.GameState(w)
	if !ok || state.Over {
		return
	}
	if len(entity.LiveBalls(w)) > 0 {
		return
	}

	state.Lives--
	s.logger.Info("lives: ball lost", zap.Int("lives", state.Lives))
	if state.Lives <= 0 {
		state.Lives = 0
		state.Over = true
		s.logger.Info("lives: game over", zap.Int("score", state.Score))
		return
	}

	paddle, ok := w.First(component.PaddleComponent.Kind())
	if !ok {
		return
	}
	entity.ResetPaddle(w, paddle)
	if _, err := entity.AttachBall(w, s.pools, paddle); err != nil {
		s.logger.Error("lives: could not serve ball", zap.Error(err))
	}
}
