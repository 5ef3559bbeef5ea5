package component

import "github.com/milk9111/breakout/effect"

// PowerUp is a falling pickup that activates Kind when it touches the paddle.
type PowerUp struct {
	Kind      effect.Kind
	FallSpeed float64
}

var PowerUpComponent = NewComponent[PowerUp]()
