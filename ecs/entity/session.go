package entity

import (
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
)

// SpawnSession creates the singleton holding score, lives, and the arena.
func SpawnSession(w *ecs.World, lives int, width, height float64) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.GameStateComponent.Kind(), &component.GameState{Lives: lives, Level: 1}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.LevelBoundsComponent.Kind(), &component.LevelBounds{Width: width, Height: height}); err != nil {
		return 0, err
	}
	return e, nil
}

// GameState returns the session singleton, if any.
func GameState(w *ecs.World) (*component.GameState, bool) {
	e, ok := w.First(component.GameStateComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, e, component.GameStateComponent.Kind())
}

// ResetPaddle returns the paddle to its start position without touching its
// scale, which belongs to the paddle effects.
func ResetPaddle(w *ecs.World, e ecs.Entity) {
	paddle, ok := ecs.Get(w, e, component.PaddleComponent.Kind())
	if !ok {
		return
	}
	if err := SetEntityTransform(w, e, paddle.StartX, paddle.StartY, 0); err != nil {
		return
	}
	if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
		body.Teleport = true
	}
}
