package component

type Brick struct {
	Points int
	Row    int
	Col    int
}

var BrickComponent = NewComponent[Brick]()
