package component

// GameState is the session singleton: score, lives, and level progress.
type GameState struct {
	Score int
	Lives int
	Level int
	// BrickCount is how many bricks the current level spawned; zero until
	// the first level is built.
	BrickCount int
	Over       bool
}

var GameStateComponent = NewComponent[GameState]()
