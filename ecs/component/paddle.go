package component

// Paddle is the player-controlled bat. Width is the unscaled collider width;
// the effective width is Width times the transform's ScaleX.
type Paddle struct {
	Speed  float64
	Width  float64
	Height float64
	// Margin keeps the paddle's edge this far from the arena walls.
	Margin float64
	StartX float64
	StartY float64
}

var PaddleComponent = NewComponent[Paddle]()
