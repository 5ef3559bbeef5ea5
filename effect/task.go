package effect

import "github.com/jakecoffman/cp"

// State is the lifecycle position of a kind's slot.
type State int

const (
	Idle State = iota
	Applying
	Holding
	Reverting
)

func (s State) String() string {
	switch s {
	case Applying:
		return "applying"
	case Holding:
		return "holding"
	case Reverting:
		return "reverting"
	default:
		return "idle"
	}
}

// Task is one running effect, advanced by the scheduler once per tick.
// Cancel and natural expiry share the same revert path, and revert runs at
// most once.
type Task interface {
	State() State
	// Advance moves the task forward by dt seconds and reports whether it
	// has finished.
	Advance(dt float64) bool
	Cancel()
}

// timedTask applies once at construction and reverts when the hold elapses.
type timedTask struct {
	state    State
	duration float64
	elapsed  float64
	revert   func()
}

func newTimedTask(duration float64, revert func()) *timedTask {
	return &timedTask{state: Holding, duration: duration, revert: revert}
}

func (t *timedTask) State() State { return t.state }

func (t *timedTask) Advance(dt float64) bool {
	if t.state == Idle {
		return true
	}
	t.elapsed += dt
	if t.elapsed < t.duration {
		return false
	}
	t.finish()
	return true
}

func (t *timedTask) Cancel() {
	t.finish()
}

func (t *timedTask) finish() {
	if t.state == Idle {
		return
	}
	t.state = Reverting
	if t.revert != nil {
		t.revert()
	}
	t.revert = nil
	t.state = Idle
}

// scaleTask eases the paddle scale toward a target, holds, then eases back
// to the scale it found at start.
type scaleTask struct {
	targets  Targets
	state    State
	origin   cp.Vector
	target   cp.Vector
	rate     float64
	epsilon  float64
	duration float64
	held     float64
}

func (t *scaleTask) State() State { return t.state }

func (t *scaleTask) Advance(dt float64) bool {
	if t.state == Idle {
		return true
	}
	paddle, ok := t.targets.Paddle()
	if !ok {
		t.state = Idle
		return true
	}

	switch t.state {
	case Applying:
		if ease(paddle, t.target, t.rate*dt, t.epsilon) {
			t.state = Holding
			t.held = 0
		}
	case Holding:
		t.held += dt
		if t.held >= t.duration {
			t.state = Reverting
		}
	case Reverting:
		if ease(paddle, t.origin, t.rate*dt, t.epsilon) {
			t.state = Idle
			return true
		}
	}
	return false
}

// Cancel snaps straight back to the origin, even mid-transition.
func (t *scaleTask) Cancel() {
	if t.state == Idle {
		return
	}
	if paddle, ok := t.targets.Paddle(); ok {
		paddle.SetScale(t.origin)
	}
	t.state = Idle
}

// ease moves the paddle one exponential step toward target and snaps exactly
// onto it once within epsilon. It reports whether the target was reached.
func ease(paddle Paddle, target cp.Vector, step, epsilon float64) bool {
	step = clamp01(step)
	cur := paddle.Scale().Lerp(target, step)
	if cur.Distance(target) <= epsilon {
		paddle.SetScale(target)
		return true
	}
	paddle.SetScale(cur)
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
