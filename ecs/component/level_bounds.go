package component

// LevelBounds is the arena size. The physics system walls off the left,
// right, and top edges; the bottom is open.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
