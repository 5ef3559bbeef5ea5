package effect

import (
	"github.com/jakecoffman/cp"
)

type fakePaddle struct {
	scale cp.Vector
}

func (p *fakePaddle) Scale() cp.Vector         { return p.scale }
func (p *fakePaddle) SetScale(scale cp.Vector) { p.scale = scale }

type fakeBall struct {
	cap   SpeedCap
	split bool
}

func (b *fakeBall) ApplySpeedModifier(kind Kind, m float64) { b.cap.Set(kind, m) }
func (b *fakeBall) ClearSpeedModifier(kind Kind)            { b.cap.Clear(kind) }
func (b *fakeBall) SetSplitOnNextHit(enabled bool)          { b.split = enabled }

type fakeTargets struct {
	paddle  *fakePaddle
	balls   []*fakeBall
	spawned int
}

func newFakeTargets(balls ...float64) *fakeTargets {
	t := &fakeTargets{paddle: &fakePaddle{scale: cp.Vector{X: 1, Y: 1}}}
	for _, base := range balls {
		t.balls = append(t.balls, &fakeBall{cap: NewSpeedCap(base)})
	}
	return t
}

func (t *fakeTargets) Paddle() (Paddle, bool) {
	if t.paddle == nil {
		return nil, false
	}
	return t.paddle, true
}

func (t *fakeTargets) Balls() []Ball {
	out := make([]Ball, 0, len(t.balls))
	for _, b := range t.balls {
		out = append(out, b)
	}
	return out
}

func (t *fakeTargets) SpawnBalls(count int) int {
	t.spawned += count
	return count
}

const tick = 1.0 / 60.0

func advanceFor(s *Scheduler, seconds float64) {
	for elapsed := 0.0; elapsed < seconds; elapsed += tick {
		s.Advance(tick)
	}
}
