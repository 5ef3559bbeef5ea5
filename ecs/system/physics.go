package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/breakout/common"
	"github.com/milk9111/breakout/ecs"
	"github.com/milk9111/breakout/ecs/component"
	"github.com/milk9111/breakout/ecs/entity"
)

const (
	collisionTypeBall cp.CollisionType = iota + 1
	collisionTypePaddle
	collisionTypeBrick
	collisionTypePowerUp
	collisionTypeWall
)

const wallThickness = 2.0

// PhysicsSystem mirrors live entities into a chipmunk space, steps it, and
// turns contacts into request components for the gameplay systems.
type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool
	dt            float64

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]shapeRef
	walls    *wallInfo

	contacts []contact
	pickups  []ecs.Entity
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	kind   component.BodyType
	role   cp.CollisionType
	width  float64
	height float64
	radius float64
}

type wallInfo struct {
	owner  ecs.Entity
	width  float64
	height float64
	shapes []*cp.Shape
}

type shapeRef struct {
	entity ecs.Entity
	role   cp.CollisionType
}

type contact struct {
	ball  ecs.Entity
	other ecs.Entity
	role  cp.CollisionType
}

func NewPhysicsSystem() *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	return &PhysicsSystem{
		space:    space,
		dt:       common.FixedDelta,
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]shapeRef),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Bodies reports how many entities currently have a body in the space.
func (ps *PhysicsSystem) Bodies() int {
	if ps == nil {
		return 0
	}
	return len(ps.entities)
}

// Reset empties the space, for a new session.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	ps.space = space
	ps.handlersReady = false
	ps.entities = make(map[ecs.Entity]*bodyInfo)
	ps.shapes = make(map[*cp.Shape]shapeRef)
	ps.walls = nil
	ps.contacts = nil
	ps.pickups = nil
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.Reset()
	}

	ps.ensureHandlers()
	ps.syncWalls(w)
	ps.syncEntities(w)

	ps.space.Step(ps.dt)

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}

	ballHandler := ps.space.NewWildcardCollisionHandler(collisionTypeBall)
	ballHandler.UserData = ps
	ballHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		a, okA := sys.shapes[shapeA]
		b, okB := sys.shapes[shapeB]
		if !okA || !okB {
			return true
		}
		if a.role != collisionTypeBall {
			a, b = b, a
		}
		if a.role != collisionTypeBall || b.role == collisionTypePowerUp {
			return true
		}
		sys.contacts = append(sys.contacts, contact{ball: a.entity, other: b.entity, role: b.role})
		return true
	}

	pickupHandler := ps.space.NewCollisionHandler(collisionTypePaddle, collisionTypePowerUp)
	pickupHandler.UserData = ps
	pickupHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*PhysicsSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		for _, s := range []*cp.Shape{shapeA, shapeB} {
			if ref, ok := sys.shapes[s]; ok && ref.role == collisionTypePowerUp {
				sys.pickups = append(sys.pickups, ref.entity)
			}
		}
		return true
	}

	ps.handlersReady = true
}

func (ps *PhysicsSystem) syncWalls(w *ecs.World) {
	boundsEntity, ok := w.First(component.LevelBoundsComponent.Kind())
	if !ok {
		ps.removeWalls()
		return
	}
	bounds, _ := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if bounds.Width <= 0 || bounds.Height <= 0 {
		ps.removeWalls()
		return
	}
	if ps.walls != nil && ps.walls.owner == boundsEntity && ps.walls.width == bounds.Width && ps.walls.height == bounds.Height {
		return
	}
	ps.removeWalls()

	// The bottom edge stays open so balls can be lost.
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: bounds.Width, Y: 0}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: bounds.Height * 2}},
		{a: cp.Vector{X: bounds.Width, Y: 0}, b: cp.Vector{X: bounds.Width, Y: bounds.Height * 2}},
	}

	info := &wallInfo{owner: boundsEntity, width: bounds.Width, height: bounds.Height}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, wallThickness)
		shape.SetElasticity(1)
		shape.SetFriction(0)
		shape.SetCollisionType(collisionTypeWall)
		ps.space.AddShape(shape)
		ps.shapes[shape] = shapeRef{entity: boundsEntity, role: collisionTypeWall}
		info.shapes = append(info.shapes, shape)
	}
	ps.walls = info
}

func (ps *PhysicsSystem) removeWalls() {
	if ps.walls == nil {
		return
	}
	for _, shape := range ps.walls.shapes {
		ps.space.RemoveShape(shape)
		delete(ps.shapes, shape)
	}
	ps.walls = nil
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind()) {
		if !entity.IsLive(w, e) {
			continue
		}
		bodyComp, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		transform, _ := ecs.Get(w, e, component.TransformComponent.Kind())

		info := ps.entities[e]
		if info == nil {
			info = ps.createBodyInfo(*transform, *bodyComp, roleOf(w, e))
			if info == nil {
				continue
			}
			ps.entities[e] = info
			ps.shapes[info.shape] = shapeRef{entity: e, role: info.role}
			bodyComp.Teleport = false
		} else {
			ps.resizeIfNeeded(info, *transform, *bodyComp, e)
		}
		bodyComp.Body = info.body
		bodyComp.Shape = info.shape

		if bodyComp.Teleport {
			info.body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
			info.body.SetAngle(transform.Rotation)
			if info.kind != component.BodyDynamic && info.shape != nil {
				// re-adding the shape refreshes its bounds in the spatial index
				ps.space.RemoveShape(info.shape)
				ps.space.AddShape(info.shape)
			}
			bodyComp.Teleport = false
		}
		if bodyComp.VelocityDirty {
			info.body.SetVelocity(bodyComp.VelocityX, bodyComp.VelocityY)
			bodyComp.VelocityDirty = false
		}
	}
}

func roleOf(w *ecs.World, e ecs.Entity) cp.CollisionType {
	switch {
	case ecs.Has(w, e, component.BallTagComponent.Kind()):
		return collisionTypeBall
	case ecs.Has(w, e, component.PaddleTagComponent.Kind()):
		return collisionTypePaddle
	case ecs.Has(w, e, component.BrickTagComponent.Kind()):
		return collisionTypeBrick
	case ecs.Has(w, e, component.PowerUpTagComponent.Kind()):
		return collisionTypePowerUp
	default:
		return collisionTypeWall
	}
}

func scaledSize(transform component.Transform, bodyComp component.PhysicsBody) (float64, float64) {
	sx, sy := transform.ScaleX, transform.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return bodyComp.Width * sx, bodyComp.Height * sy
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp component.PhysicsBody, role cp.CollisionType) *bodyInfo {
	width, height := scaledSize(transform, bodyComp)
	radius := bodyComp.Radius
	if radius <= 0 && (width <= 0 || height <= 0) {
		return nil
	}

	var body *cp.Body
	switch bodyComp.Type {
	case component.BodyKinematic:
		body = cp.NewKinematicBody()
	case component.BodyStatic:
		body = cp.NewStaticBody()
	default:
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		var moment float64
		if radius > 0 {
			moment = cp.MomentForCircle(mass, 0, radius, cp.Vector{})
		} else {
			moment = cp.MomentForBox(mass, width, height)
		}
		body = cp.NewBody(mass, moment)
	}
	body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	body.SetAngle(transform.Rotation)
	ps.space.AddBody(body)

	info := &bodyInfo{
		body:   body,
		kind:   bodyComp.Type,
		role:   role,
		width:  width,
		height: height,
		radius: radius,
	}
	info.shape = ps.newShape(info, bodyComp)
	return info
}

func (ps *PhysicsSystem) newShape(info *bodyInfo, bodyComp component.PhysicsBody) *cp.Shape {
	var shape *cp.Shape
	if info.radius > 0 {
		shape = cp.NewCircle(info.body, info.radius, cp.Vector{})
	} else {
		shape = cp.NewBox(info.body, info.width, info.height, 0)
	}
	shape.SetFriction(bodyComp.Friction)
	shape.SetElasticity(bodyComp.Elasticity)
	shape.SetSensor(bodyComp.Sensor)
	shape.SetCollisionType(info.role)
	ps.space.AddShape(shape)
	return shape
}

// resizeIfNeeded rebuilds a box collider whose transform scale changed, as
// happens while a paddle effect animates.
func (ps *PhysicsSystem) resizeIfNeeded(info *bodyInfo, transform component.Transform, bodyComp component.PhysicsBody, e ecs.Entity) {
	if info.radius > 0 {
		return
	}
	width, height := scaledSize(transform, bodyComp)
	if math.Abs(width-info.width) < 1e-6 && math.Abs(height-info.height) < 1e-6 {
		return
	}
	if width <= 0 || height <= 0 {
		return
	}
	ps.space.RemoveShape(info.shape)
	delete(ps.shapes, info.shape)
	info.width, info.height = width, height
	info.shape = ps.newShape(info, bodyComp)
	ps.shapes[info.shape] = shapeRef{entity: e, role: info.role}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, info := range ps.entities {
		if info.kind != component.BodyDynamic {
			continue
		}
		transform, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		if !ok {
			continue
		}
		pos := info.body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		vel := info.body.Velocity()
		bodyComp.VelocityX = vel.X
		bodyComp.VelocityY = vel.Y
	}
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for _, c := range ps.contacts {
		if !entity.IsLive(w, c.ball) {
			continue
		}
		bc, ok := ecs.Get(w, c.ball, component.BallContactComponent.Kind())
		if !ok {
			bc = &component.BallContact{}
			_ = ecs.Add(w, c.ball, component.BallContactComponent.Kind(), bc)
		}
		bc.Others = append(bc.Others, uint64(c.other))

		if c.role == collisionTypeBrick && entity.IsLive(w, c.other) {
			_ = ecs.Add(w, c.other, component.BrickHitComponent.Kind(), &component.BrickHit{Ball: uint64(c.ball)})
		}
	}
	for _, e := range ps.pickups {
		if entity.IsLive(w, e) {
			_ = ecs.Add(w, e, component.PickupRequestComponent.Kind(), &component.PickupRequest{})
		}
	}
	ps.contacts = ps.contacts[:0]
	ps.pickups = ps.pickups[:0]
}

// cleanupEntities drops bodies of destroyed entities and of pooled entities
// that were released.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if entity.IsLive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		if info.shape != nil {
			ps.space.RemoveShape(info.shape)
			delete(ps.shapes, info.shape)
		}
		if info.body != nil {
			ps.space.RemoveBody(info.body)
		}
		if bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			bodyComp.Body = nil
			bodyComp.Shape = nil
		}
		delete(ps.entities, e)
	}
}
