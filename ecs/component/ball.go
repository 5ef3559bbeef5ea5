package component

import "github.com/milk9111/breakout/effect"

// Ball holds per-ball gameplay state. Speed is held at Cap.Value() while the
// ball is in play; MaxSpeed is the prefab cap restored on every acquire.
type Ball struct {
	Cap      effect.SpeedCap
	MaxSpeed float64
	Radius   float64

	// Attached balls ride on the paddle until launched.
	Attached      bool
	AttachOffsetY float64

	SplitOnNextHit   bool
	HasSplit         bool
	SplitCount       int
	SplitAngleDeg    float64
	SplitSpeedFactor float64

	// MaxBounceDeg is the deflection from vertical at the paddle's edge.
	MaxBounceDeg float64
}

var BallComponent = NewComponent[Ball]()
