package system

import (
	"math"
	"testing"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

func spawnSentry(w *ecs.World, x, y float64) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.SentryTagComponent.Kind(), &component.SentryTag{})
	_ = ecs.Add(w, e, component.AgentComponent.Kind(), &component.Agent{
		MoveSpeed:      70,
		RunSpeed:       140,
		RotationSpeed:  5,
		DetectionRange: 200,
		MemoryTime:     5,
	})
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	_ = ecs.Add(w, e, component.TargetComponent.Kind(), &component.Target{})
	_ = ecs.Add(w, e, component.TargetMemoryComponent.Kind(), &component.TargetMemory{})
	_ = ecs.Add(w, e, component.MoveIntentComponent.Kind(), &component.MoveIntent{})
	return e
}

func intentSpeed(t *testing.T, w *ecs.World, e ecs.Entity) float64 {
	t.Helper()
	intent, ok := ecs.Get(w, e, component.MoveIntentComponent.Kind())
	if !ok {
		t.Fatalf("sentry lost its move intent")
	}
	return math.Hypot(intent.X, intent.Y)
}

func TestSentryPursuesVisibleTarget(t *testing.T) {
	w := ecs.NewWorld()
	player := spawnTestPlayer(w, 100, 0)
	e := spawnSentry(w, 0, 0)

	NewPerceptionSystem().Update(w)
	NewSentrySystem(nil).Update(w)

	memory, _ := ecs.Get(w, e, component.TargetMemoryComponent.Kind())
	if !memory.HasSeen || memory.LastKnownX != 100 || memory.Timer != 5 {
		t.Fatalf("pursuit should refresh memory, got %+v", memory)
	}

	target, _ := ecs.Get(w, e, component.TargetComponent.Kind())
	if !target.Held() || target.ID != player.ID {
		t.Fatalf("sentry should hold the spotted target")
	}

	// Runs, not walks.
	if speed := intentSpeed(t, w, e); math.Abs(speed-140) > 1e-9 {
		t.Fatalf("pursuit speed should be run speed 140, got %v", speed)
	}
}

func TestSentryDropsTargetAndSearches(t *testing.T) {
	w := ecs.NewWorld()
	player := spawnTestPlayer(w, 100, 0)
	e := spawnSentry(w, 0, 0)

	perception := NewPerceptionSystem()
	sentry := NewSentrySystem(nil)
	perception.Update(w)
	sentry.Update(w)

	// The player breaks line of sight by leaving detection range.
	if tf, ok := ecs.Get(w, player, component.TransformComponent.Kind()); ok {
		tf.X = 1000
	}
	perception.Update(w)
	sentry.Update(w)

	target, _ := ecs.Get(w, e, component.TargetComponent.Kind())
	if target.Held() {
		t.Fatalf("sight break should drop the target")
	}
	lost := 0
	for _, ev := range w.Events().Drain() {
		if ev.Type == ecs.EventTargetLost {
			lost++
		}
	}
	if lost != 1 {
		t.Fatalf("expected one target_lost event, got %d", lost)
	}
	if speed := intentSpeed(t, w, e); speed != 0 {
		t.Fatalf("drop tick should zero the intent, got %v", speed)
	}

	// Next tick the refreshed memory drives a search toward (100, 0).
	perception.Update(w)
	sentry.Update(w)
	intent, _ := ecs.Get(w, e, component.MoveIntentComponent.Kind())
	if intent.X <= 0 || intent.Y != 0 {
		t.Fatalf("search should head toward the last known position, got (%v, %v)", intent.X, intent.Y)
	}
	if speed := intentSpeed(t, w, e); math.Abs(speed-70*searchSpeedFactor) > 1e-9 {
		t.Fatalf("search speed should be %v, got %v", 70*searchSpeedFactor, speed)
	}
}

func TestSentrySearchArrivalClearsMemory(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnSentry(w, 100, 0)
	memory, _ := ecs.Get(w, e, component.TargetMemoryComponent.Kind())
	memory.Refresh(100, 0, 5)

	NewSentrySystem(nil).Update(w)

	if memory.HasSeen || memory.Timer != 0 {
		t.Fatalf("arrival at the last known position should clear memory, got %+v", memory)
	}
	if speed := intentSpeed(t, w, e); speed != 0 {
		t.Fatalf("arrival should zero the intent, got %v", speed)
	}
}

func TestSentryFallsBackToPatrol(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnSentry(w, 0, 0)
	route := routeWithPoints(component.PatrolLoop, 3)
	route.Index = 1
	_ = ecs.Add(w, e, component.PatrolRouteComponent.Kind(), route)

	NewSentrySystem(nil).Update(w)

	intent, _ := ecs.Get(w, e, component.MoveIntentComponent.Kind())
	if intent.X <= 0 {
		t.Fatalf("patrolling sentry should head toward point 1, got (%v, %v)", intent.X, intent.Y)
	}
	if speed := intentSpeed(t, w, e); math.Abs(speed-70) > 1e-9 {
		t.Fatalf("patrol speed should be walk speed 70, got %v", speed)
	}
}

func TestSentryMemoryExpiryResumesPatrol(t *testing.T) {
	w := ecs.NewWorld()
	e := spawnSentry(w, 0, 0)
	route := routeWithPoints(component.PatrolLoop, 3)
	route.Index = 1
	_ = ecs.Add(w, e, component.PatrolRouteComponent.Kind(), route)

	memory, _ := ecs.Get(w, e, component.TargetMemoryComponent.Kind())
	memory.Refresh(0, 500, 0.1)

	memories := NewMemorySystem()
	sentry := NewSentrySystem(nil)

	sentry.Update(w)
	intent, _ := ecs.Get(w, e, component.MoveIntentComponent.Kind())
	if intent.Y <= 0 {
		t.Fatalf("trusted memory should pull the sentry to (0, 500), got (%v, %v)", intent.X, intent.Y)
	}

	for i := 0; i < TickRate; i++ {
		memories.Update(w)
		sentry.Update(w)
	}
	intent, _ = ecs.Get(w, e, component.MoveIntentComponent.Kind())
	if intent.X <= 0 || intent.Y != 0 {
		t.Fatalf("expired memory should resume patrol toward point 1, got (%v, %v)", intent.X, intent.Y)
	}
}
