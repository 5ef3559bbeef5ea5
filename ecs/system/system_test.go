package system

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/breakout/common"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
	"github.com/milk9111/breakout/effect"
	"github.com/milk9111/breakout/pool"
)

type testWorld struct {
	w      *ecs.World
	pools  *entity.Pools
	paddle ecs.Entity
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	w := ecs.NewWorld()
	host := entity.NewPoolHost(w, map[pool.Key]string{
		entity.KeyBall:    "ball.yaml",
		entity.KeyBrick:   "brick.yaml",
		entity.KeyPowerUp: "powerup.yaml",
	})
	_, err := entity.SpawnSession(w, 3, 640, 480)
	require.NoError(t, err)
	paddle, err := entity.BuildEntity(w, "paddle.yaml")
	require.NoError(t, err)
	return &testWorld{w: w, pools: pool.NewRegistry[ecs.Entity](host), paddle: paddle}
}

func (tw *testWorld) state(t *testing.T) *component.GameState {
	t.Helper()
	state, ok := entity.GameState(tw.w)
	require.True(t, ok)
	return state
}

func (tw *testWorld) input(t *testing.T) *component.Input {
	t.Helper()
	in, ok := ecs.Get(tw.w, tw.paddle, component.InputComponent.Kind())
	require.True(t, ok)
	return in
}

func (tw *testWorld) ball(t *testing.T, e ecs.Entity) (*component.Ball, *component.Transform, *component.PhysicsBody) {
	t.Helper()
	ball, ok := ecs.Get(tw.w, e, component.BallComponent.Kind())
	require.True(t, ok)
	tr, ok := ecs.Get(tw.w, e, component.TransformComponent.Kind())
	require.True(t, ok)
	body, ok := ecs.Get(tw.w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	return ball, tr, body
}

func (tw *testWorld) spawnBrick(t *testing.T, x, y float64, points int) ecs.Entity {
	t.Helper()
	e, err := tw.pools.Acquire(entity.KeyBrick, pool.Placement{X: x, Y: y})
	require.NoError(t, err)
	if points > 0 {
		brick, _ := ecs.Get(tw.w, e, component.BrickComponent.Kind())
		brick.Points = points
	}
	return e
}

func speedOf(body *component.PhysicsBody) float64 {
	return math.Hypot(body.VelocityX, body.VelocityY)
}

type dropCall struct {
	x, y float64
}

type fakeDropper struct {
	calls []dropCall
}

func (d *fakeDropper) TrySpawn(x, y float64) (effect.Kind, bool) {
	d.calls = append(d.calls, dropCall{x: x, y: y})
	return effect.MultiBall, true
}

type fakeActivator struct {
	kinds []effect.Kind
}

func (a *fakeActivator) Activate(kind effect.Kind) {
	a.kinds = append(a.kinds, kind)
}

type fakeAdvancer struct {
	steps []float64
}

func (a *fakeAdvancer) Advance(dt float64) {
	a.steps = append(a.steps, dt)
}

func TestPaddleSystemClampsToArena(t *testing.T) {
	cases := []struct {
		name  string
		moveX float64
		scale float64
		want  float64
	}{
		{name: "right_edge", moveX: 1, scale: 1, want: 640 - 4 - 48},
		{name: "left_edge", moveX: -1, scale: 1, want: 4 + 48},
		{name: "expanded_right_edge", moveX: 1, scale: 1.5, want: 640 - 4 - 72},
		{name: "shrunk_left_edge", moveX: -1, scale: 0.5, want: 4 + 24},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWorld(t)
			tr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
			tr.ScaleX = tc.scale
			tw.input(t).MoveX = tc.moveX

			sys := NewPaddleSystem()
			for i := 0; i < 120; i++ {
				sys.Update(tw.w)
			}
			assert.InDelta(t, tc.want, tr.X, 1e-9)
			body, _ := ecs.Get(tw.w, tw.paddle, component.PhysicsBodyComponent.Kind())
			assert.True(t, body.Teleport)
		})
	}
}

func TestPaddleSystemMovesBySpeed(t *testing.T) {
	tw := newTestWorld(t)
	tw.input(t).MoveX = 1
	NewPaddleSystem().Update(tw.w)

	tr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
	assert.InDelta(t, 320+480*common.FixedDelta, tr.X, 1e-9)
}

func TestBallFollowsPaddleUntilLaunched(t *testing.T) {
	tw := newTestWorld(t)
	e, err := entity.AttachBall(tw.w, tw.pools, tw.paddle)
	require.NoError(t, err)
	sys := NewBallSystem(tw.pools, nil)

	ptr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
	ptr.X = 200
	sys.Update(tw.w)

	ball, tr, body := tw.ball(t, e)
	assert.True(t, ball.Attached)
	assert.Equal(t, 200.0, tr.X)
	assert.Equal(t, 440-ball.AttachOffsetY, tr.Y)
	assert.Zero(t, speedOf(body))

	tw.input(t).LaunchPressed = true
	sys.Update(tw.w)

	assert.False(t, ball.Attached)
	assert.True(t, body.VelocityDirty)
	assert.InDelta(t, 360*math.Sin(15*math.Pi/180), body.VelocityX, 1e-9)
	assert.InDelta(t, -360*math.Cos(15*math.Pi/180), body.VelocityY, 1e-9)
}

func TestBallHeldAtSpeedCap(t *testing.T) {
	tw := newTestWorld(t)
	e, err := entity.SpawnBall(tw.w, tw.pools, 320, 300, cp.Vector{Y: -1})
	require.NoError(t, err)
	ball, _, body := tw.ball(t, e)

	body.VelocityX, body.VelocityY, body.VelocityDirty = 10, 0, false
	NewBallSystem(tw.pools, nil).Update(tw.w)

	assert.True(t, body.VelocityDirty)
	assert.InDelta(t, 360, speedOf(body), 1e-9)
	assert.InDelta(t, minVerticalRatio, math.Abs(body.VelocityY)/360, 1e-9)

	ball.Cap.Set(effect.SlowDown, 0.5)
	NewBallSystem(tw.pools, nil).Update(tw.w)
	assert.InDelta(t, 180, speedOf(body), 1e-9)
}

func TestHoldSpeed(t *testing.T) {
	cases := []struct {
		name  string
		in    cp.Vector
		speed float64
		check func(t *testing.T, out cp.Vector)
	}{
		{
			name:  "rescales",
			in:    cp.Vector{X: 0, Y: -10},
			speed: 300,
			check: func(t *testing.T, out cp.Vector) {
				assert.InDelta(t, 0, out.X, 1e-9)
				assert.InDelta(t, -300, out.Y, 1e-9)
			},
		},
		{
			name:  "nudges_horizontal",
			in:    cp.Vector{X: -5, Y: -0.1},
			speed: 100,
			check: func(t *testing.T, out cp.Vector) {
				assert.InDelta(t, -25, out.Y, 1e-9)
				assert.Less(t, out.X, 0.0)
				assert.InDelta(t, 100, out.Length(), 1e-9)
			},
		},
		{
			name:  "restarts_stalled",
			in:    cp.Vector{},
			speed: 100,
			check: func(t *testing.T, out cp.Vector) {
				assert.InDelta(t, 100, out.Length(), 1e-9)
				assert.Less(t, out.Y, 0.0)
			},
		},
		{
			name:  "zero_speed_is_noop",
			in:    cp.Vector{X: 1, Y: 2},
			speed: 0,
			check: func(t *testing.T, out cp.Vector) {
				assert.Equal(t, cp.Vector{X: 1, Y: 2}, out)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, holdSpeed(tc.in, tc.speed))
		})
	}
}

func TestBallPaddleBounceAimsByOffset(t *testing.T) {
	tw := newTestWorld(t)
	e, err := entity.SpawnBall(tw.w, tw.pools, 320+24, 425, cp.Vector{Y: 1})
	require.NoError(t, err)
	require.NoError(t, ecs.Add(tw.w, e, component.BallContactComponent.Kind(), &component.BallContact{Others: []uint64{uint64(tw.paddle)}}))

	NewBallSystem(tw.pools, nil).Update(tw.w)

	_, _, body := tw.ball(t, e)
	want := entity.DirectionFromVertical(30).Mult(360)
	assert.InDelta(t, want.X, body.VelocityX, 1e-6)
	assert.InDelta(t, want.Y, body.VelocityY, 1e-6)
	assert.False(t, ecs.Has(tw.w, e, component.BallContactComponent.Kind()))
}

func TestBallSplitsOnNextHit(t *testing.T) {
	tw := newTestWorld(t)
	parent, err := entity.SpawnBall(tw.w, tw.pools, 320, 300, cp.Vector{Y: -1})
	require.NoError(t, err)
	ball, _, _ := tw.ball(t, parent)
	ball.SplitOnNextHit = true
	brick := tw.spawnBrick(t, 320, 100, 0)
	require.NoError(t, ecs.Add(tw.w, parent, component.BallContactComponent.Kind(), &component.BallContact{Others: []uint64{uint64(brick)}}))

	sys := NewBallSystem(tw.pools, nil)
	sys.Update(tw.w)

	assert.True(t, ball.HasSplit)
	assert.False(t, ball.SplitOnNextHit)

	balls := entity.LiveBalls(tw.w)
	require.Len(t, balls, 3)
	for _, e := range balls {
		if e == parent {
			continue
		}
		child, _, body := tw.ball(t, e)
		assert.True(t, child.HasSplit, "children never split")
		assert.InDelta(t, 360*0.8, child.Cap.Value(), 1e-9)
		assert.InDelta(t, 360*0.8, speedOf(body), 1e-9)
	}

	require.NoError(t, ecs.Add(tw.w, parent, component.BallContactComponent.Kind(), &component.BallContact{Others: []uint64{uint64(brick)}}))
	sys.Update(tw.w)
	assert.Len(t, entity.LiveBalls(tw.w), 3, "a ball splits once per arming")
}

func TestSplitChildrenLoseExpiredSpeedEffect(t *testing.T) {
	tw := newTestWorld(t)
	parent, err := entity.SpawnBall(tw.w, tw.pools, 320, 300, cp.Vector{Y: -1})
	require.NoError(t, err)

	cfg := effect.DefaultConfig()
	cfg.Duration = 1
	effects := effect.NewScheduler(effect.NewCatalog(cfg), entity.NewTargets(tw.w, tw.pools, nil))
	effects.Activate(effect.SpeedUp)
	effects.Activate(effect.SplitBall)

	ball, _, _ := tw.ball(t, parent)
	require.True(t, ball.SplitOnNextHit)
	assert.InDelta(t, 360*1.5, ball.Cap.Value(), 1e-9)

	brick := tw.spawnBrick(t, 320, 100, 0)
	require.NoError(t, ecs.Add(tw.w, parent, component.BallContactComponent.Kind(), &component.BallContact{Others: []uint64{uint64(brick)}}))
	NewBallSystem(tw.pools, nil).Update(tw.w)

	balls := entity.LiveBalls(tw.w)
	require.Len(t, balls, 3)
	for _, e := range balls {
		if e == parent {
			continue
		}
		child, _, body := tw.ball(t, e)
		assert.True(t, child.Cap.Has(effect.SpeedUp), "children inherit live modifiers")
		assert.InDelta(t, 360*0.8*1.5, child.Cap.Value(), 1e-9)
		assert.InDelta(t, 360*0.8*1.5, speedOf(body), 1e-9)
	}

	sys := NewEffectSystem(effects)
	for i := 0; i < 2*common.TPS; i++ {
		sys.Update(tw.w)
	}
	require.False(t, effects.IsActive(effect.SpeedUp))

	for _, e := range balls {
		b, _, _ := tw.ball(t, e)
		assert.False(t, b.Cap.Has(effect.SpeedUp))
		if e == parent {
			assert.InDelta(t, 360, b.Cap.Value(), 1e-9)
			continue
		}
		assert.InDelta(t, 360*0.8, b.Cap.Value(), 1e-9)
	}
}

func TestBallLostBelowArena(t *testing.T) {
	tw := newTestWorld(t)
	e, err := entity.SpawnBall(tw.w, tw.pools, 320, 480+7, cp.Vector{Y: 1})
	require.NoError(t, err)

	NewBallSystem(tw.pools, nil).Update(tw.w)
	assert.False(t, entity.IsLive(tw.w, e))
	assert.Equal(t, 0, tw.pools.CountActive(entity.KeyBall))
}

func TestBrickSystemScoresAndReleases(t *testing.T) {
	tw := newTestWorld(t)
	brick := tw.spawnBrick(t, 100, 50, 25)
	dropper := &fakeDropper{}
	sys := NewBrickSystem(tw.pools, dropper, nil)

	require.NoError(t, ecs.Add(tw.w, brick, component.BrickHitComponent.Kind(), &component.BrickHit{}))
	sys.Update(tw.w)

	assert.Equal(t, 25, tw.state(t).Score)
	assert.Equal(t, []dropCall{{x: 100, y: 50}}, dropper.calls)
	assert.Equal(t, 0, tw.pools.CountActive(entity.KeyBrick))
	assert.False(t, ecs.Has(tw.w, brick, component.BrickHitComponent.Kind()))

	require.NoError(t, ecs.Add(tw.w, brick, component.BrickHitComponent.Kind(), &component.BrickHit{}))
	sys.Update(tw.w)
	assert.Equal(t, 25, tw.state(t).Score, "hits on released bricks are dropped")
	assert.Len(t, dropper.calls, 1)
}

func TestPowerUpSystem(t *testing.T) {
	tw := newTestWorld(t)
	spawner := entity.NewPowerUpSpawner(tw.w, tw.pools, nil)
	activator := &fakeActivator{}
	sys := NewPowerUpSystem(tw.pools, activator, nil)

	require.True(t, spawner.SpawnPowerUp(effect.SpeedUp, 100, 100))
	falling := tw.pools.ActiveHandles(entity.KeyPowerUp)[0]

	sys.Update(tw.w)
	body, _ := ecs.Get(tw.w, falling, component.PhysicsBodyComponent.Kind())
	assert.Equal(t, 0.0, body.VelocityX)
	assert.Equal(t, 120.0, body.VelocityY)
	assert.True(t, body.VelocityDirty)

	require.NoError(t, ecs.Add(tw.w, falling, component.PickupRequestComponent.Kind(), &component.PickupRequest{}))
	sys.Update(tw.w)
	assert.Equal(t, []effect.Kind{effect.SpeedUp}, activator.kinds)
	assert.False(t, entity.IsLive(tw.w, falling))

	require.True(t, spawner.SpawnPowerUp(effect.SlowDown, 100, 480+10))
	sys.Update(tw.w)
	assert.Equal(t, 0, tw.pools.CountActive(entity.KeyPowerUp), "missed power-ups are recycled")
	assert.Len(t, activator.kinds, 1)
}

func TestLivesSystem(t *testing.T) {
	tw := newTestWorld(t)
	sys := NewLivesSystem(tw.pools, nil)
	state := tw.state(t)

	e, err := entity.AttachBall(tw.w, tw.pools, tw.paddle)
	require.NoError(t, err)
	sys.Update(tw.w)
	assert.Equal(t, 3, state.Lives, "a ball in play costs nothing")

	tr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
	tr.X = 100
	tw.pools.Release(e)
	sys.Update(tw.w)

	assert.Equal(t, 2, state.Lives)
	assert.False(t, state.Over)
	assert.Equal(t, 320.0, tr.X, "paddle reset for the new serve")
	balls := entity.LiveBalls(tw.w)
	require.Len(t, balls, 1)
	ball, _, _ := tw.ball(t, balls[0])
	assert.True(t, ball.Attached)

	for _, lives := range []int{1, 0} {
		for _, b := range entity.LiveBalls(tw.w) {
			tw.pools.Release(b)
		}
		sys.Update(tw.w)
		assert.Equal(t, lives, state.Lives)
	}
	assert.True(t, state.Over)
	assert.Empty(t, entity.LiveBalls(tw.w), "no serve after the last life")

	sys.Update(tw.w)
	assert.Equal(t, 0, state.Lives)
}

func TestLevelSystemBuildsAndAdvances(t *testing.T) {
	tw := newTestWorld(t)
	var requested []int
	load := func(number int) (entity.Level, error) {
		requested = append(requested, number)
		return entity.Level{Number: number, Bricks: []entity.BrickCell{
			{X: 100, Y: 60}, {X: 200, Y: 60}, {X: 300, Y: 60},
		}}, nil
	}
	sys := NewLevelSystem(tw.pools, load, nil)
	state := tw.state(t)

	sys.Update(tw.w)
	assert.Equal(t, []int{1}, requested)
	assert.Equal(t, 1, state.Level)
	assert.Equal(t, 3, state.BrickCount)
	assert.Equal(t, 3, tw.pools.CountActive(entity.KeyBrick))

	sys.Update(tw.w)
	assert.Len(t, requested, 1, "no rebuild while bricks remain")

	_, err := entity.SpawnBall(tw.w, tw.pools, 320, 200, cp.Vector{Y: -1})
	require.NoError(t, err)
	for _, b := range tw.pools.ActiveHandles(entity.KeyBrick) {
		tw.pools.Release(b)
	}
	sys.Update(tw.w)

	assert.Equal(t, []int{1, 2}, requested)
	assert.Equal(t, 2, state.Level)
	balls := entity.LiveBalls(tw.w)
	require.Len(t, balls, 1)
	ball, _, _ := tw.ball(t, balls[0])
	assert.True(t, ball.Attached, "a cleared level re-serves the ball")
}

func TestLevelSystemStopsAfterLoadFailure(t *testing.T) {
	tw := newTestWorld(t)
	calls := 0
	sys := NewLevelSystem(tw.pools, func(int) (entity.Level, error) {
		calls++
		return entity.Level{}, errors.New("boom")
	}, nil)

	sys.Update(tw.w)
	sys.Update(tw.w)
	assert.Equal(t, 1, calls)

	sys.SetLoader(func(number int) (entity.Level, error) {
		calls++
		return entity.Level{Number: number, Bricks: []entity.BrickCell{{X: 10, Y: 10}}}, nil
	})
	sys.Update(tw.w)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, tw.state(t).BrickCount)
}

func TestEffectSystemAdvancesByFixedStep(t *testing.T) {
	adv := &fakeAdvancer{}
	sys := NewEffectSystem(adv)
	w := ecs.NewWorld()
	sys.Update(w)
	sys.Update(w)
	assert.Equal(t, []float64{common.FixedDelta, common.FixedDelta}, adv.steps)
}

func TestPhysicsReportsBrickHits(t *testing.T) {
	tw := newTestWorld(t)
	brick := tw.spawnBrick(t, 320, 100, 0)
	ball, err := entity.SpawnBall(tw.w, tw.pools, 320, 200, cp.Vector{Y: -1})
	require.NoError(t, err)

	ps := NewPhysicsSystem()
	ps.Update(tw.w)
	assert.Equal(t, 3, ps.Bodies())
	_, tr, _ := tw.ball(t, ball)
	assert.Less(t, tr.Y, 200.0, "ball moves up")

	for i := 0; i < 60 && !ecs.Has(tw.w, brick, component.BrickHitComponent.Kind()); i++ {
		ps.Update(tw.w)
	}
	require.True(t, ecs.Has(tw.w, brick, component.BrickHitComponent.Kind()))
	hit, _ := ecs.Get(tw.w, brick, component.BrickHitComponent.Kind())
	assert.Equal(t, uint64(ball), hit.Ball)

	contact, ok := ecs.Get(tw.w, ball, component.BallContactComponent.Kind())
	require.True(t, ok)
	assert.Contains(t, contact.Others, uint64(brick))

	tw.pools.Release(brick)
	ps.Update(tw.w)
	assert.Equal(t, 2, ps.Bodies(), "released bricks leave the space")
}

func TestPhysicsReportsPickups(t *testing.T) {
	tw := newTestWorld(t)
	spawner := entity.NewPowerUpSpawner(tw.w, tw.pools, nil)
	require.True(t, spawner.SpawnPowerUp(effect.ExpandPaddle, 320, 400))
	pu := tw.pools.ActiveHandles(entity.KeyPowerUp)[0]
	body, _ := ecs.Get(tw.w, pu, component.PhysicsBodyComponent.Kind())
	body.VelocityY, body.VelocityDirty = 120, true

	ps := NewPhysicsSystem()
	for i := 0; i < 60 && !ecs.Has(tw.w, pu, component.PickupRequestComponent.Kind()); i++ {
		ps.Update(tw.w)
	}
	assert.True(t, ecs.Has(tw.w, pu, component.PickupRequestComponent.Kind()))
}

func TestPhysicsTeleportMovesKinematicCollider(t *testing.T) {
	tw := newTestWorld(t)
	ps := NewPhysicsSystem()
	ps.Update(tw.w)
	require.Contains(t, ps.entities, tw.paddle)
	shape := ps.entities[tw.paddle].shape

	tr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
	body, _ := ecs.Get(tw.w, tw.paddle, component.PhysicsBodyComponent.Kind())
	from := cp.Vector{X: tr.X, Y: tr.Y}
	to := cp.Vector{X: tr.X - 200, Y: tr.Y}
	tr.X = to.X
	body.Teleport = true
	ps.Update(tw.w)

	assert.False(t, body.Teleport)
	assert.Same(t, shape, ps.entities[tw.paddle].shape)
	assert.InDelta(t, to.X, ps.entities[tw.paddle].body.Position().X, 1e-9)

	hit := ps.Space().PointQueryNearest(to, 0, cp.SHAPE_FILTER_ALL)
	require.NotNil(t, hit)
	assert.Same(t, shape, hit.Shape)

	old := ps.Space().PointQueryNearest(from, 0, cp.SHAPE_FILTER_ALL)
	if old != nil {
		assert.NotSame(t, shape, old.Shape)
	}
}

func TestPhysicsResizesScaledPaddle(t *testing.T) {
	tw := newTestWorld(t)
	ps := NewPhysicsSystem()
	ps.Update(tw.w)
	require.Contains(t, ps.entities, tw.paddle)
	assert.InDelta(t, 96, ps.entities[tw.paddle].width, 1e-9)

	tr, _ := ecs.Get(tw.w, tw.paddle, component.TransformComponent.Kind())
	tr.ScaleX = 1.5
	ps.Update(tw.w)
	assert.InDelta(t, 144, ps.entities[tw.paddle].width, 1e-9)

	ps.Reset()
	assert.Equal(t, 0, ps.Bodies())
}
