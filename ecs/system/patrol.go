package system

import (
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

const (
	// fallbackRouteRadius is used when no patrol markers exist: four points
	// evenly spaced on a circle around the spawn position.
	fallbackRouteRadius = 96.0
	fallbackRoutePoints = 4
)

// PatrolSystem owns patrol route progression: seeding routes from marker
// entities (or the synthesized fallback circle), arrival detection, the
// dwell period at each point, and advancing the index under the active
// sequencing policy. Steering toward the active point is done by the guard
// FSM and sentry systems; a route only advances while its owner is actually
// patrolling.
type PatrolSystem struct {
	rng *rand.Rand
}

// NewPatrolSystem creates a patrol system. The random source drives the
// random sequencing policy; inject a seeded one for reproducible runs.
func NewPatrolSystem(rng *rand.Rand) *PatrolSystem {
	return &PatrolSystem{rng: rng}
}

func (s *PatrolSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.PatrolRouteComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, route *component.PatrolRoute, t *component.Transform) {
		if !route.Seeded {
			s.seedRoute(w, route, t)
		}
		if len(route.Points) == 0 {
			return
		}
		if route.Index < 0 || route.Index >= len(route.Points) {
			route.Index = 0
		}
		if !isPatrolling(w, e) {
			return
		}

		if route.WaitTimer > 0 {
			route.WaitTimer -= TickSeconds
			if route.WaitTimer <= 0 {
				route.WaitTimer = 0
				s.advance(route)
			}
			return
		}

		x, y, ok := entityPosition(w, e)
		if !ok {
			return
		}
		point := route.Points[route.Index]
		if math.Hypot(point.X-x, point.Y-y) >= arrivalRadius {
			return
		}

		w.Events().Push(ecs.Event{
			Type: ecs.EventReachedPatrolPoint,
			Data: ecs.ReachedPatrolPointEvent{Agent: e, Index: route.Index},
		})

		dwell := 0.0
		if agent, ok := ecs.Get(w, e, component.AgentComponent.Kind()); ok {
			dwell = agent.PatrolDwell
		}
		if dwell > 0 {
			route.WaitTimer = dwell
			return
		}
		s.advance(route)
	})
}

// isPatrolling reports whether the entity is currently in its patrol
// behavior: FSM guards must be in the patrol state, sentries must hold no
// target and have no trusted memory.
func isPatrolling(w *ecs.World, e ecs.Entity) bool {
	if st, ok := ecs.Get(w, e, component.AgentStateComponent.Kind()); ok {
		return st.Current == component.StatePatrol
	}
	if ecs.Has(w, e, component.SentryTagComponent.Kind()) {
		if target, ok := ecs.Get(w, e, component.TargetComponent.Kind()); ok && target.Held() {
			return false
		}
		if m, ok := ecs.Get(w, e, component.TargetMemoryComponent.Kind()); ok && m.HasSeen && m.Timer > 0 {
			return false
		}
		return true
	}
	return false
}

// advance moves the route index one step under the active policy. An
// unrecognized mode holds the current index and logs once rather than
// silently degrading to loop.
func (s *PatrolSystem) advance(route *component.PatrolRoute) {
	AdvanceRoute(route, s.rng)
}

// AdvanceRoute applies one sequencing step to the route.
func AdvanceRoute(route *component.PatrolRoute, rng *rand.Rand) {
	if route == nil || len(route.Points) == 0 {
		return
	}
	n := len(route.Points)

	switch route.Mode {
	case component.PatrolLoop:
		route.Index = (route.Index + 1) % n
	case component.PatrolPingPong:
		if n == 1 {
			route.Index = 0
			return
		}
		if route.Direction != 1 && route.Direction != -1 {
			route.Direction = 1
		}
		next := route.Index + route.Direction
		if next >= n {
			route.Direction = -1
			next = route.Index + route.Direction
		} else if next < 0 {
			route.Direction = 1
			next = route.Index + route.Direction
		}
		route.Index = next
	case component.PatrolRandom:
		if n == 1 || rng == nil {
			return
		}
		// Uniform over the other indices; never repeats consecutively.
		next := rng.Intn(n - 1)
		if next >= route.Index {
			next++
		}
		route.Index = next
	default:
		if !route.WarnedUnknownMode {
			log.Printf("patrol: unknown mode %q, route holds position", route.Mode)
			route.WarnedUnknownMode = true
		}
	}
}

// seedRoute populates a route once: marker entities in authored order when
// present, otherwise the fallback circle around the spawn position.
func (s *PatrolSystem) seedRoute(w *ecs.World, route *component.PatrolRoute, t *component.Transform) {
	route.Seeded = true
	if route.Direction == 0 {
		route.Direction = 1
	}
	if len(route.Points) > 0 {
		// Authored directly on the spec.
		return
	}

	type marker struct {
		order int
		x, y  float64
	}
	markers := make([]marker, 0, 8)
	ecs.ForEach2(w, component.PatrolPointTagComponent.Kind(), component.TransformComponent.Kind(), func(me ecs.Entity, tag *component.PatrolPointTag, mt *component.Transform) {
		markers = append(markers, marker{order: tag.Order, x: mt.X, y: mt.Y})
	})
	if len(markers) > 0 {
		sort.Slice(markers, func(i, j int) bool { return markers[i].order < markers[j].order })
		route.Points = make([]component.PathNode, 0, len(markers))
		for _, m := range markers {
			route.Points = append(route.Points, component.PathNode{X: m.x, Y: m.y})
		}
		return
	}

	route.Points = make([]component.PathNode, 0, fallbackRoutePoints)
	for i := 0; i < fallbackRoutePoints; i++ {
		angle := 2 * math.Pi * float64(i) / fallbackRoutePoints
		route.Points = append(route.Points, component.PathNode{
			X: t.X + fallbackRouteRadius*math.Cos(angle),
			Y: t.Y + fallbackRouteRadius*math.Sin(angle),
		})
	}
}

// AddPatrolPoint appends a waypoint to the entity's route.
func AddPatrolPoint(w *ecs.World, e ecs.Entity, x, y float64) {
	route, ok := ecs.Get(w, e, component.PatrolRouteComponent.Kind())
	if !ok {
		return
	}
	route.Points = append(route.Points, component.PathNode{X: x, Y: y})
	route.Seeded = true
}

// ClearPatrolPoints empties the entity's route. The agent falls back to
// zero movement intent while the route is empty.
func ClearPatrolPoints(w *ecs.World, e ecs.Entity) {
	route, ok := ecs.Get(w, e, component.PatrolRouteComponent.Kind())
	if !ok {
		return
	}
	route.Points = nil
	route.Index = 0
	route.WaitTimer = 0
	route.Seeded = true
}

// SetPatrolMode switches the sequencing policy. The current index is kept.
func SetPatrolMode(w *ecs.World, e ecs.Entity, mode component.PatrolMode) {
	route, ok := ecs.Get(w, e, component.PatrolRouteComponent.Kind())
	if !ok {
		return
	}
	route.Mode = mode
	route.WarnedUnknownMode = false
	if route.Direction == 0 {
		route.Direction = 1
	}
}
