package ecs

import (
	"testing"

	"github.com/milk9111/nightwatch/ecs/component"
)

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
			}
		})
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(7)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !DestroyEntity(w, old) {
		t.Fatalf("DestroyEntity should succeed")
	}

	reused := CreateEntity(w)
	if reused.ID != old.ID {
		t.Fatalf("expected id %d to be reused, got %d", old.ID, reused.ID)
	}
	if reused.Gen == old.Gen {
		t.Fatalf("reused entity should carry a new generation")
	}

	if IsAlive(w, old) {
		t.Fatalf("stale handle should not be alive")
	}
	if _, ok := Get(w, old, h.Kind()); ok {
		t.Fatalf("stale handle should not resolve components")
	}
	if err := Add(w, old, h.Kind(), intPtr(1)); err == nil {
		t.Fatalf("Add on stale handle should fail")
	}
}

func intPtr(i int) *int { return &i }

func TestComponentQueries(t *testing.T) {
	w := NewWorld()
	hInt := component.NewComponent[int]()
	hStr := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	s1 := "a"
	s2 := "b"
	if err := Add(w, e1, hInt.Kind(), intPtr(10)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Add(w, e1, hStr.Kind(), &s1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Add(w, e2, hStr.Kind(), &s2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if v, ok := Get(w, e1, hInt.Kind()); !ok || *v != 10 {
		t.Fatalf("expected 10, got %v ok=%v", v, ok)
	}
	if Has(w, e3, hStr.Kind()) {
		t.Fatalf("e3 should have no string component")
	}

	// Mutation through the returned pointer sticks.
	if v, ok := Get(w, e1, hInt.Kind()); ok {
		*v = 42
	}
	if v, _ := Get(w, e1, hInt.Kind()); *v != 42 {
		t.Fatalf("expected mutated value 42, got %d", *v)
	}

	seen := map[Entity]string{}
	ForEach(w, hStr.Kind(), func(e Entity, v *string) {
		seen[e] = *v
	})
	if len(seen) != 2 || seen[e1] != "a" || seen[e2] != "b" {
		t.Fatalf("ForEach visited %v", seen)
	}

	count := 0
	ForEach2(w, hInt.Kind(), hStr.Kind(), func(e Entity, i *int, s *string) {
		count++
		if e != e1 {
			t.Fatalf("only e1 carries both components, visited %v", e)
		}
	})
	if count != 1 {
		t.Fatalf("expected 1 joint visit, got %d", count)
	}

	if !Remove(w, e1, hStr.Kind()) {
		t.Fatalf("Remove should report success")
	}
	if Has(w, e1, hStr.Kind()) {
		t.Fatalf("component should be gone after Remove")
	}
}

func TestDestroyDuringIteration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	for i := 0; i < 4; i++ {
		e := CreateEntity(w)
		if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	visited := 0
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		visited++
		DestroyEntity(w, e)
	})
	if visited != 4 {
		t.Fatalf("expected all 4 entities visited, got %d", visited)
	}
	if got := len(Entities(w)); got != 0 {
		t.Fatalf("expected empty world, got %d entities", got)
	}
}

func TestEventQueueDrain(t *testing.T) {
	w := NewWorld()
	w.Events().Push(Event{Type: EventTargetSpotted})
	w.Events().Push(Event{Type: EventTargetLost})

	events := w.Events().Drain()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTargetSpotted || events[1].Type != EventTargetLost {
		t.Fatalf("events drained out of order: %v", events)
	}
	if got := w.Events().Drain(); len(got) != 0 {
		t.Fatalf("second drain should be empty, got %d", len(got))
	}
}
