package system

import (
	"github.com/milk9111/breakout/common"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
)

// PaddleSystem moves the paddle from its input and keeps it inside the
// arena.
type PaddleSystem struct {
	dt float64
}

func NewPaddleSystem() *PaddleSystem {
	return &PaddleSystem{dt: common.FixedDelta}
}

func (s *PaddleSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	arena, hasArena := arenaBounds(w)

	ecs.ForEach3(w, component.PaddleComponent.Kind(), component.TransformComponent.Kind(), component.InputComponent.Kind(),
		func(e ecs.Entity, paddle *component.Paddle, tr *component.Transform, in *component.Input) {
			x := tr.X + in.MoveX*paddle.Speed*s.dt
			if hasArena {
				half := paddle.Width * tr.ScaleX / 2
				lo := paddle.Margin + half
				hi := arena.Width - paddle.Margin - half
				if lo > hi {
					x = arena.Width / 2
				} else {
					x = common.Clamp(x, lo, hi)
				}
			}
			if x == tr.X {
				return
			}
			tr.X = x
			if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
				body.Teleport = true
			}
		})
}

func arenaBounds(w *ecs.World) (component.LevelBounds, bool) {
	e, ok := w.First(component.LevelBoundsComponent.Kind())
	if !ok {
		return component.LevelBounds{}, false
	}
	b, ok := ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	if !ok {
		return component.LevelBounds{}, false
	}
	return *b, true
}
