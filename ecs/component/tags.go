package component

type PaddleTag struct{}

var PaddleTagComponent = NewComponent[PaddleTag]()

type BallTag struct{}

var BallTagComponent = NewComponent[BallTag]()

type BrickTag struct{}

var BrickTagComponent = NewComponent[BrickTag]()

type PowerUpTag struct{}

var PowerUpTagComponent = NewComponent[PowerUpTag]()

type WallTag struct{}

var WallTagComponent = NewComponent[WallTag]()
