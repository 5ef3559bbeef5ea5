package component

// RenderLayer orders drawing: higher indices draw on top, ties fall back to
// entity id.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()
