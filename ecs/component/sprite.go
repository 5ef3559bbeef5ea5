package component

import "image/color"

type SpriteShape int

const (
	SpriteRect SpriteShape = iota
	SpriteCircle
)

// Sprite is a flat-coloured primitive sized in unscaled pixels. The render
// system multiplies Width/Height by the entity's transform scale.
type Sprite struct {
	Shape  SpriteShape
	Width  float64
	Height float64
	Color  color.NRGBA
	Hidden bool
}

var SpriteComponent = NewComponent[Sprite]()
