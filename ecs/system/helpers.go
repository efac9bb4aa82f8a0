package system

import (
	"math"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

const (
	// TickRate is the fixed simulation rate. Every timer in the agent
	// systems advances by TickSeconds per update.
	TickRate    = 60
	TickSeconds = 1.0 / float64(TickRate)

	// arrivalRadius is the distance at which a destination counts as
	// reached (patrol points, search positions).
	arrivalRadius = 1.0
)

func playerPosition(w *ecs.World) (ecs.Entity, float64, float64, bool) {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return ecs.Entity{}, 0, 0, false
	}
	if t, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		return player, t.X, t.Y, true
	}
	return ecs.Entity{}, 0, 0, false
}

func entityPosition(w *ecs.World, e ecs.Entity) (float64, float64, bool) {
	if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		pos := pb.Body.Position()
		return pos.X, pos.Y, true
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		return t.X, t.Y, true
	}
	return 0, 0, false
}

func targetEntity(t component.Target) ecs.Entity {
	return ecs.Entity{ID: t.ID, Gen: t.Gen}
}

// rotateToward turns the transform's rotation toward the direction (dx, dy)
// by at most maxStep radians, taking the shortest arc. A near-zero
// direction is a no-op so normalizing can never produce NaN.
func rotateToward(t *component.Transform, dx, dy, maxStep float64) {
	if t == nil {
		return
	}
	if math.Hypot(dx, dy) < 1e-6 {
		return
	}
	desired := math.Atan2(dy, dx)
	diff := normalizeAngle(desired - t.Rotation)
	if math.Abs(diff) <= maxStep {
		t.Rotation = desired
		return
	}
	if diff > 0 {
		t.Rotation = normalizeAngle(t.Rotation + maxStep)
	} else {
		t.Rotation = normalizeAngle(t.Rotation - maxStep)
	}
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func setIntent(w *ecs.World, e ecs.Entity, x, y float64) {
	if intent, ok := ecs.Get(w, e, component.MoveIntentComponent.Kind()); ok {
		intent.X = x
		intent.Y = y
		return
	}
	_ = ecs.Add(w, e, component.MoveIntentComponent.Kind(), &component.MoveIntent{X: x, Y: y})
}

// steerToward returns a velocity of the given speed pointing from (x0, y0)
// to (x1, y1), or zero when already there.
func steerToward(x0, y0, x1, y1, speed float64) (float64, float64) {
	dx := x1 - x0
	dy := y1 - y0
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		return 0, 0
	}
	return dx / dist * speed, dy / dist * speed
}

func enqueueAgentEvent(w *ecs.World, e ecs.Entity, ev component.EventID) {
	if q, ok := ecs.Get(w, e, component.AgentEventQueueComponent.Kind()); ok {
		q.Events = append(q.Events, ev)
		return
	}
	_ = ecs.Add(w, e, component.AgentEventQueueComponent.Kind(), &component.AgentEventQueue{Events: []component.EventID{ev}})
}
