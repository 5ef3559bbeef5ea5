package entity

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/pool"
	"go.uber.org/zap"
)

// multiBallSpreadDeg separates balls added by SpawnBalls.
const multiBallSpreadDeg = 30.0

// Targets resolves the paddle and balls of a world for the effect
// scheduler. Every lookup happens at call time, so references stay valid
// across pooling and level resets.
type Targets struct {
	world  *ecs.World
	pools  *Pools
	logger *zap.Logger
}

var _ effect.Targets = (*Targets)(nil)

func NewTargets(w *ecs.World, pools *Pools, logger *zap.Logger) *Targets {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Targets{world: w, pools: pools, logger: logger}
}

func (t *Targets) Paddle() (effect.Paddle, bool) {
	e, ok := t.world.First(component.PaddleTagComponent.Kind())
	if !ok || !ecs.Has(t.world, e, component.TransformComponent.Kind()) {
		return nil, false
	}
	return paddleRef{w: t.world, e: e}, true
}

func (t *Targets) Balls() []effect.Ball {
	var out []effect.Ball
	for _, e := range LiveBalls(t.world) {
		out = append(out, ballRef{w: t.world, e: e})
	}
	return out
}

// SpawnBalls launches count balls from the first ball in play, or from the
// paddle when every ball is still attached. It returns how many the ball
// pool could supply.
func (t *Targets) SpawnBalls(count int) int {
	if t.pools == nil || count <= 0 {
		return 0
	}
	x, y, ok := t.spawnOrigin()
	if !ok {
		return 0
	}

	spawned := 0
	for i := 0; i < count; i++ {
		offset := (float64(i) - float64(count-1)/2) * multiBallSpreadDeg
		if count == 1 {
			offset = multiBallSpreadDeg
		}
		dir := DirectionFromVertical(offset)
		if _, err := SpawnBall(t.world, t.pools, x, y, dir); err != nil {
			t.logger.Debug("entity: multi ball stopped early", zap.Int("spawned", spawned), zap.Error(err))
			break
		}
		spawned++
	}
	return spawned
}

func (t *Targets) spawnOrigin() (float64, float64, bool) {
	for _, e := range LiveBalls(t.world) {
		ball, _ := ecs.Get(t.world, e, component.BallComponent.Kind())
		if ball.Attached {
			continue
		}
		if tr, ok := ecs.Get(t.world, e, component.TransformComponent.Kind()); ok {
			return tr.X, tr.Y, true
		}
	}
	e, ok := t.world.First(component.PaddleComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	paddle, _ := ecs.Get(t.world, e, component.PaddleComponent.Kind())
	tr, ok := ecs.Get(t.world, e, component.TransformComponent.Kind())
	if !ok {
		return 0, 0, false
	}
	return tr.X, tr.Y - paddle.Height, true
}

type paddleRef struct {
	w *ecs.World
	e ecs.Entity
}

func (p paddleRef) Scale() cp.Vector {
	tr, ok := ecs.Get(p.w, p.e, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{X: 1, Y: 1}
	}
	return cp.Vector{X: tr.ScaleX, Y: tr.ScaleY}
}

func (p paddleRef) SetScale(scale cp.Vector) {
	tr, ok := ecs.Get(p.w, p.e, component.TransformComponent.Kind())
	if !ok {
		return
	}
	tr.ScaleX = scale.X
	tr.ScaleY = scale.Y
}

type ballRef struct {
	w *ecs.World
	e ecs.Entity
}

func (b ballRef) live() (*component.Ball, bool) {
	if !IsLive(b.w, b.e) {
		return nil, false
	}
	return ecs.Get(b.w, b.e, component.BallComponent.Kind())
}

func (b ballRef) ApplySpeedModifier(kind effect.Kind, multiplier float64) {
	if ball, ok := b.live(); ok {
		ball.Cap.Set(kind, multiplier)
	}
}

func (b ballRef) ClearSpeedModifier(kind effect.Kind) {
	if ball, ok := ecs.Get(b.w, b.e, component.BallComponent.Kind()); ok {
		ball.Cap.Clear(kind)
	}
}

func (b ballRef) SetSplitOnNextHit(enabled bool) {
	ball, ok := b.live()
	if !ok {
		return
	}
	ball.SplitOnNextHit = enabled
	if enabled {
		ball.HasSplit = false
	}
}

// LiveBalls returns every acquired ball entity.
func LiveBalls(w *ecs.World) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range w.Query(component.BallTagComponent.Kind(), component.BallComponent.Kind()) {
		if IsLive(w, e) {
			out = append(out, e)
		}
	}
	return out
}

// SpawnBall acquires a free ball at (x, y) heading along dir at its cap.
func SpawnBall(w *ecs.World, pools *Pools, x, y float64, dir cp.Vector) (ecs.Entity, error) {
	e, err := pools.Acquire(KeyBall, pool.Placement{X: x, Y: y})
	if err != nil {
		return 0, err
	}
	speed := 0.0
	if ball, ok := ecs.Get(w, e, component.BallComponent.Kind()); ok {
		speed = ball.Cap.Value()
	}
	SetVelocity(w, e, dir.Normalize().Mult(speed))
	return e, nil
}

// AttachBall acquires a ball resting on top of the paddle.
func AttachBall(w *ecs.World, pools *Pools, paddle ecs.Entity) (ecs.Entity, error) {
	tr, ok := ecs.Get(w, paddle, component.TransformComponent.Kind())
	if !ok {
		return 0, component.ErrEntityNotAlive
	}
	e, err := pools.Acquire(KeyBall, pool.Placement{X: tr.X, Y: tr.Y})
	if err != nil {
		return 0, err
	}
	if ball, ok := ecs.Get(w, e, component.BallComponent.Kind()); ok {
		ball.Attached = true
		if bt, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			bt.Y = tr.Y - ball.AttachOffsetY
		}
	}
	SetVelocity(w, e, cp.Vector{})
	return e, nil
}

func SetVelocity(w *ecs.World, e ecs.Entity, v cp.Vector) {
	body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return
	}
	body.VelocityX = v.X
	body.VelocityY = v.Y
	body.VelocityDirty = true
}

// DirectionFromVertical returns the unit vector deg degrees clockwise from
// straight up in screen space (Y grows downward).
func DirectionFromVertical(deg float64) cp.Vector {
	rad := deg * math.Pi / 180
	return cp.Vector{X: math.Sin(rad), Y: -math.Cos(rad)}
}
