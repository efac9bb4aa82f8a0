package system

import (
	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// TakeDamage applies damage to an entity's health. Damage to an already
// dead entity is a no-op, so repeated lethal hits never re-trigger death
// side effects.
func TakeDamage(w *ecs.World, e ecs.Entity, amount float64) {
	if w == nil || amount <= 0 {
		return
	}
	health, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok || health.Dead() {
		return
	}
	health.Current -= amount
	if health.Current < 0 {
		health.Current = 0
	}
	if health.Dead() {
		enqueueAgentEvent(w, e, "died")
	}
}

// AttackClockSystem ticks down attack cooldowns.
type AttackClockSystem struct{}

func NewAttackClockSystem() *AttackClockSystem {
	return &AttackClockSystem{}
}

func (s *AttackClockSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.AttackClockComponent.Kind(), func(e ecs.Entity, clock *component.AttackClock) {
		if clock.Remaining <= 0 {
			return
		}
		clock.Remaining -= TickSeconds
		if clock.Remaining < 0 {
			clock.Remaining = 0
		}
	})
}

// DespawnSystem counts down the post-death wind-down and removes expired
// entities from the simulation, announcing each removal.
type DespawnSystem struct{}

func NewDespawnSystem() *DespawnSystem {
	return &DespawnSystem{}
}

func (s *DespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.DespawnComponent.Kind(), func(e ecs.Entity, d *component.Despawn) {
		d.Seconds -= TickSeconds
		if d.Seconds > 0 {
			return
		}
		if pw := w.PhysicsWorld(); pw != nil {
			if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
				pw.RemoveBody(pb)
			}
		}
		w.Events().Push(ecs.Event{Type: ecs.EventAgentRemoved, Data: ecs.AgentRemovedEvent{Agent: e}})
		ecs.DestroyEntity(w, e)
	})
}
