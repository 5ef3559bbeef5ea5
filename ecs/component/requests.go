package component

// BallContact is added to a ball by the physics system when it starts
// touching something during a step. Others holds the raw ecs.Entity values
// (ecs.Entity is uint64). The ball system consumes it on the next update.
type BallContact struct {
	Others []uint64
}

var BallContactComponent = NewComponent[BallContact]()

// BrickHit is added to a brick the physics system saw a ball strike.
type BrickHit struct {
	Ball uint64
}

var BrickHitComponent = NewComponent[BrickHit]()

// PickupRequest is added to a power-up that touched the paddle.
type PickupRequest struct{}

var PickupRequestComponent = NewComponent[PickupRequest]()
