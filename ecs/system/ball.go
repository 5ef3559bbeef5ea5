package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/breakout/common"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"go.uber.org/zap"
)

const (
	launchAngleDeg = 15.0
	// minVerticalRatio keeps balls from settling into horizontal loops.
	minVerticalRatio = 0.25
)

// BallSystem launches attached balls, bounces off the paddle, splits armed
// balls, holds every ball at its speed cap, and releases balls that fall
// out of the arena.
type BallSystem struct {
	pools  *entity.Pools
	logger *zap.Logger
}

func NewBallSystem(pools *entity.Pools, logger *zap.Logger) *BallSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BallSystem{pools: pools, logger: logger}
}

func (s *BallSystem) Update(w *ecs.World) {
	if w == nil || s.pools == nil {
		return
	}
	arena, hasArena := arenaBounds(w)

	paddleEntity, hasPaddle := w.First(component.PaddleComponent.Kind())
	launch := false
	if hasPaddle {
		if in, ok := ecs.Get(w, paddleEntity, component.InputComponent.Kind()); ok {
			launch = in.LaunchPressed
		}
	}

	for _, e := range entity.LiveBalls(w) {
		ball, _ := ecs.Get(w, e, component.BallComponent.Kind())
		tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}

		if ball.Attached {
			s.followPaddle(w, e, ball, tr, body, paddleEntity, hasPaddle)
			if launch {
				ball.Attached = false
				entity.SetVelocity(w, e, entity.DirectionFromVertical(launchAngleDeg).Mult(ball.Cap.Value()))
			}
			continue
		}

		v := cp.Vector{X: body.VelocityX, Y: body.VelocityY}
		if bc, ok := ecs.Get(w, e, component.BallContactComponent.Kind()); ok {
			for _, other := range bc.Others {
				if hasPaddle && ecs.Entity(other) == paddleEntity {
					v = s.paddleBounce(w, ball, tr, paddleEntity, v)
				}
			}
			if len(bc.Others) > 0 && ball.SplitOnNextHit && !ball.HasSplit {
				s.split(w, ball, tr, v)
			}
			ecs.Remove(w, e, component.BallContactComponent.Kind())
		}

		held := holdSpeed(v, ball.Cap.Value())
		if held != v || body.VelocityDirty {
			entity.SetVelocity(w, e, held)
		}

		if hasArena && tr.Y-ball.Radius > arena.Height {
			s.logger.Debug("ball: lost", zap.Stringer("entity", e))
			s.pools.Release(e)
		}
	}
}

func (s *BallSystem) followPaddle(w *ecs.World, e ecs.Entity, ball *component.Ball, tr *component.Transform, body *component.PhysicsBody, paddle ecs.Entity, hasPaddle bool) {
	if !hasPaddle {
		return
	}
	ptr, ok := ecs.Get(w, paddle, component.TransformComponent.Kind())
	if !ok {
		return
	}
	tr.X = ptr.X
	tr.Y = ptr.Y - ball.AttachOffsetY
	body.Teleport = true
	if body.VelocityX != 0 || body.VelocityY != 0 {
		entity.SetVelocity(w, e, cp.Vector{})
	}
}

// paddleBounce aims the ball by where it struck the paddle: the centre sends
// it straight up, the edges at MaxBounceDeg.
func (s *BallSystem) paddleBounce(w *ecs.World, ball *component.Ball, tr *component.Transform, paddle ecs.Entity, v cp.Vector) cp.Vector {
	pc, ok := ecs.Get(w, paddle, component.PaddleComponent.Kind())
	if !ok {
		return v
	}
	ptr, ok := ecs.Get(w, paddle, component.TransformComponent.Kind())
	if !ok || tr.Y > ptr.Y {
		return v
	}
	half := pc.Width * ptr.ScaleX / 2
	if half <= 0 {
		return v
	}
	offset := common.Clamp((tr.X-ptr.X)/half, -1, 1)
	speed := v.Length()
	if speed == 0 {
		speed = ball.Cap.Value()
	}
	return entity.DirectionFromVertical(offset * ball.MaxBounceDeg).Mult(speed)
}

// split spawns SplitCount children fanned out by SplitAngleDeg around the
// parent's heading. Children take a reduced base cap, inherit the parent's
// live speed modifiers so those effects revert on them too, and never split
// again.
func (s *BallSystem) split(w *ecs.World, ball *component.Ball, tr *component.Transform, v cp.Vector) {
	ball.HasSplit = true
	ball.SplitOnNextHit = false

	heading := math.Atan2(v.Y, v.X)
	if v.LengthSq() < 1e-12 {
		heading = -math.Pi / 2
	}
	childCap := ball.Cap
	childCap.Base = ball.Cap.Base * ball.SplitSpeedFactor

	spawned := 0
	for i := 0; i < ball.SplitCount; i++ {
		offset := (float64(i) - float64(ball.SplitCount)/2) * ball.SplitAngleDeg * math.Pi / 180
		dir := cp.ForAngle(heading + offset)
		child, err := entity.SpawnBall(w, s.pools, tr.X, tr.Y, dir)
		if err != nil {
			s.logger.Debug("ball: split stopped early", zap.Int("spawned", spawned), zap.Error(err))
			break
		}
		if cb, ok := ecs.Get(w, child, component.BallComponent.Kind()); ok {
			cb.Cap = childCap
			cb.HasSplit = true
			cb.SplitOnNextHit = false
		}
		entity.SetVelocity(w, child, dir.Mult(childCap.Value()))
		spawned++
	}
}

// holdSpeed rescales v to speed, nudging near-horizontal headings so the
// ball keeps travelling between paddle and bricks.
func holdSpeed(v cp.Vector, speed float64) cp.Vector {
	if speed <= 0 {
		return v
	}
	if v.LengthSq() < 1e-12 {
		return entity.DirectionFromVertical(launchAngleDeg).Mult(speed)
	}
	dir := v.Normalize()
	if math.Abs(dir.Y) < minVerticalRatio {
		y := minVerticalRatio
		if dir.Y < 0 {
			y = -minVerticalRatio
		}
		x := math.Sqrt(1 - y*y)
		if dir.X < 0 {
			x = -x
		}
		dir = cp.Vector{X: x, Y: y}
	}
	return dir.Mult(speed)
}
