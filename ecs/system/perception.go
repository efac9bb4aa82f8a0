package system

import (
	"math"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// PerceptionSystem runs the line-of-sight check for every agent against the
// player and publishes the result in the Perception scratch component.
// Visibility requires the player within detection range and an unobstructed
// ray from the agent's eye point whose first hit is the player itself; a
// wall or prop in between counts as not visible.
//
// It also owns the acquisition edge: a visible player while no target is
// held assigns the target, enqueues a sees_target FSM event, and emits a
// TargetSpotted world event exactly once.
type PerceptionSystem struct{}

func NewPerceptionSystem() *PerceptionSystem {
	return &PerceptionSystem{}
}

func (s *PerceptionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	player, px, py, playerFound := playerPosition(w)

	ecs.ForEach2(w, component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, agent *component.Agent, t *component.Transform) {
		p, ok := ecs.Get(w, e, component.PerceptionComponent.Kind())
		if !ok {
			p = &component.Perception{}
			_ = ecs.Add(w, e, component.PerceptionComponent.Kind(), p)
		}

		wasVisible := p.TargetVisible
		p.TargetVisible = false
		p.LostSight = false

		if playerFound {
			dist := math.Hypot(px-t.X, py-t.Y)
			p.TargetX = px
			p.TargetY = py
			p.TargetDist = dist
			p.TargetVisible = s.visible(w, e, agent, t, player, px, py, dist)
		}
		p.LostSight = wasVisible && !p.TargetVisible

		if !p.TargetVisible {
			return
		}
		s.acquire(w, e, player)
	})
}

func (s *PerceptionSystem) visible(w *ecs.World, e ecs.Entity, agent *component.Agent, t *component.Transform, player ecs.Entity, px, py, dist float64) bool {
	if dist <= 0 || dist > agent.DetectionRange {
		return false
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		// No physics world attached (headless tests): range alone decides.
		return true
	}
	eyeX := t.X
	eyeY := t.Y + agent.EyeOffsetY
	hitID, hit := pw.SegmentFirst(eyeX, eyeY, px, py, uint(e.ID))
	if !hit {
		// Ray reached the body point unobstructed.
		return true
	}
	return hitID == player.ID
}

func (s *PerceptionSystem) acquire(w *ecs.World, e ecs.Entity, player ecs.Entity) {
	target, ok := ecs.Get(w, e, component.TargetComponent.Kind())
	if !ok || target.Held() {
		return
	}
	if st, ok := ecs.Get(w, e, component.AgentStateComponent.Kind()); ok && st.Current == component.StateDead {
		return
	}

	target.ID = player.ID
	target.Gen = player.Gen
	enqueueAgentEvent(w, e, "sees_target")
	w.Events().Push(ecs.Event{
		Type: ecs.EventTargetSpotted,
		Data: ecs.TargetSpottedEvent{Agent: e, Target: player},
	})
}
