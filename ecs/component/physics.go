package component

import "github.com/jakecoffman/cp"

type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyKinematic
	BodyStatic
)

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Width/Height are scaled by the transform before a shape is built; the
// physics system rebuilds the shape whenever the scaled size changes.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Type       BodyType
	Width      float64
	Height     float64
	Radius     float64
	Mass       float64
	Friction   float64
	Elasticity float64
	Sensor     bool

	// Velocity requested by gameplay systems; applied before the next step
	// when VelocityDirty is set.
	VelocityX     float64
	VelocityY     float64
	VelocityDirty bool

	// Teleport moves the body to the transform position before the next step.
	Teleport bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
