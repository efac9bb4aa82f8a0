package ecs

import (
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/nightwatch/ecs/component"
)

func TestSegmentFirst(t *testing.T) {
	pw := NewPhysicsWorld([]Wall{{X: 100, Y: -50, W: 20, H: 100}})

	t.Run("wall_blocks", func(t *testing.T) {
		id, hit := pw.SegmentFirst(0, 0, 200, 0, 0)
		if !hit || id != 0 {
			t.Fatalf("expected static hit, got id=%d hit=%v", id, hit)
		}
	})

	t.Run("clear_ray", func(t *testing.T) {
		if _, hit := pw.SegmentFirst(0, 200, 200, 200, 0); hit {
			t.Fatalf("ray past the wall should not hit")
		}
	})

	t.Run("zero_length_ray", func(t *testing.T) {
		if _, hit := pw.SegmentFirst(50, 50, 50, 50, 0); hit {
			t.Fatalf("degenerate ray should not hit")
		}
	})
}

func TestBodyLifecycleAndRayExclusion(t *testing.T) {
	w := NewWorld()
	pw := NewPhysicsWorld(nil)

	e := CreateEntity(w)
	tf := &component.Transform{X: 100, Y: 0}
	pb := &component.PhysicsBody{Radius: 10, Mass: 1}
	pw.EnsureBody(e, tf, pb, false)

	if pb.Body == nil || pb.Shape == nil {
		t.Fatalf("EnsureBody should attach body and shape")
	}

	// Another caster's ray hits the body and resolves its entity id.
	id, hit := pw.SegmentFirst(0, 0, 200, 0, 0)
	if !hit || id != e.ID {
		t.Fatalf("expected hit on entity %d, got id=%d hit=%v", e.ID, id, hit)
	}

	// The entity's own rays skip its body via the filter group.
	if _, hit := pw.SegmentFirst(100, 0, 200, 0, uint(e.ID)); hit {
		t.Fatalf("caster must not hit its own body")
	}

	// A sensor (dead agent) no longer blocks rays.
	pw.DisableCollision(pb)
	if _, hit := pw.SegmentFirst(0, 0, 200, 0, 0); hit {
		t.Fatalf("sensor shape should be invisible to rays")
	}

	pw.RemoveBody(pb)
	if pb.Body != nil || pb.Shape != nil {
		t.Fatalf("RemoveBody should clear the component references")
	}
}

func TestStepMovesBodyByVelocity(t *testing.T) {
	w := NewWorld()
	pw := NewPhysicsWorld(nil)

	e := CreateEntity(w)
	tf := &component.Transform{}
	pb := &component.PhysicsBody{Radius: 10, Mass: 1}
	pw.EnsureBody(e, tf, pb, false)

	pb.Body.SetVelocityVector(cp.Vector{X: 60})
	for i := 0; i < 60; i++ {
		pw.Step(1.0 / 60.0)
	}

	pos := pb.Body.Position()
	if pos.X < 55 || pos.X > 65 {
		t.Fatalf("body should have moved about 60 units, got %v", pos.X)
	}
}
