package ecs

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/nightwatch/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypePlayer
	collisionTypeAgent
)

// Wall is an axis-aligned static collision rectangle.
type Wall struct {
	X float64
	Y float64
	W float64
	H float64
}

// PhysicsWorld owns the Chipmunk space and static collision shapes.
type PhysicsWorld struct {
	space         *cp.Space
	shapeToEntity map[*cp.Shape]int
}

// NewPhysicsWorld creates a physics world with the given static walls. The
// simulation is top-down, so the space carries no gravity; the chipmunk
// step still resolves collision-respecting displacement each tick.
func NewPhysicsWorld(walls []Wall) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})

	pw := &PhysicsWorld{
		space:         space,
		shapeToEntity: make(map[*cp.Shape]int),
	}
	for _, wall := range walls {
		pw.addWall(wall)
	}
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) addWall(wall Wall) {
	bb := cp.BB{L: wall.X, B: wall.Y, R: wall.X + wall.W, T: wall.Y + wall.H}
	shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(collisionTypeSolid)
	pw.space.AddShape(shape)
}

// EnsureBody creates a dynamic circle body for an entity if needed and
// syncs it to the transform. The shape's filter group is the entity id so
// the entity's own perception rays skip it.
func (pw *PhysicsWorld) EnsureBody(e Entity, t *component.Transform, pb *component.PhysicsBody, player bool) {
	if pw == nil || pw.space == nil || e.ID <= 0 || t == nil || pb == nil {
		return
	}
	if pb.Body != nil {
		return
	}

	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	radius := pb.Radius
	if radius <= 0 {
		radius = 12
	}

	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: t.X, Y: t.Y})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	if pb.Friction > 0 {
		shape.SetFriction(pb.Friction)
	} else {
		shape.SetFriction(0.2)
	}
	if player {
		shape.SetCollisionType(collisionTypePlayer)
	} else {
		shape.SetCollisionType(collisionTypeAgent)
	}
	shape.SetFilter(cp.NewShapeFilter(uint(e.ID), cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	shape.UserData = e.ID

	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.shapeToEntity[shape] = e.ID

	pb.Body = body
	pb.Shape = shape
	pb.Radius = radius
	pb.Mass = mass
}

// RemoveBody detaches an entity's body and shape from the space.
func (pw *PhysicsWorld) RemoveBody(pb *component.PhysicsBody) {
	if pw == nil || pw.space == nil || pb == nil {
		return
	}
	if pb.Shape != nil {
		delete(pw.shapeToEntity, pb.Shape)
		pw.space.RemoveShape(pb.Shape)
		pb.Shape = nil
	}
	if pb.Body != nil {
		pw.space.RemoveBody(pb.Body)
		pb.Body = nil
	}
}

// DisableCollision turns an entity's shape into a sensor. Used when an
// agent dies so the corpse stops blocking movement and rays.
func (pw *PhysicsWorld) DisableCollision(pb *component.PhysicsBody) {
	if pw == nil || pb == nil || pb.Shape == nil {
		return
	}
	pb.Shape.SetSensor(true)
}

// Step advances the physics simulation by dt seconds.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil {
		return
	}
	pw.space.Step(dt)
}

// SegmentFirst casts a ray and reports the first obstruction. hit is false
// when nothing blocks the segment. entityID is zero for static geometry.
// Shapes in excludeGroup (the caster's own body) are skipped, as are
// sensors such as dead agents.
func (pw *PhysicsWorld) SegmentFirst(x0, y0, x1, y1 float64, excludeGroup uint) (entityID int, hit bool) {
	if pw == nil || pw.space == nil {
		return 0, false
	}
	if x0 == x1 && y0 == y1 {
		return 0, false
	}

	filter := cp.NewShapeFilter(excludeGroup, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)
	info := pw.space.SegmentQueryFirst(cp.Vector{X: x0, Y: y0}, cp.Vector{X: x1, Y: y1}, 0, filter)
	if info.Shape == nil {
		return 0, false
	}
	if id, ok := pw.shapeToEntity[info.Shape]; ok {
		return id, true
	}
	return 0, true
}
