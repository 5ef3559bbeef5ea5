package effect

import "github.com/jakecoffman/cp"

// Paddle is the scale-bearing entity the paddle effects animate.
type Paddle interface {
	Scale() cp.Vector
	SetScale(scale cp.Vector)
}

// Ball is a single ball the speed and split effects modify. Implementations
// must tolerate calls after the underlying entity is gone.
type Ball interface {
	ApplySpeedModifier(kind Kind, multiplier float64)
	ClearSpeedModifier(kind Kind)
	SetSplitOnNextHit(enabled bool)
}

// Targets resolves the shared entities at the moment an effect needs them.
// Nothing here is owned by the scheduler.
type Targets interface {
	Paddle() (Paddle, bool)
	Balls() []Ball
	SpawnBalls(count int) int
}
