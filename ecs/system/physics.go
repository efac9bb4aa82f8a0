package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// PhysicsSystem bridges movement intents into the Chipmunk space: intents
// become body velocities, the space steps one tick, and resolved positions
// flow back into the transforms. Collision response (walls, other bodies)
// comes out of the step, so agents slide rather than tunnel.
type PhysicsSystem struct{}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{}
}

func (s *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}

	// Late body creation keeps spawning decoupled from physics setup.
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Body == nil && !pb.Static {
			player := ecs.Has(w, e, component.PlayerTagComponent.Kind())
			pw.EnsureBody(e, t, pb, player)
		}
	})

	ecs.ForEach2(w, component.MoveIntentComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, intent *component.MoveIntent, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		pb.Body.SetVelocity(intent.X, intent.Y)
	})

	pw.Step(TickSeconds)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
	})
}
