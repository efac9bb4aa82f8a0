package system

import (
	"math"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

// searchSpeedFactor scales move speed while heading to a last known
// position.
const searchSpeedFactor = 1.5

// SentrySystem drives the perception-with-memory variant: not a strict
// state machine but a mutually exclusive priority branch evaluated every
// tick. A held, visible target means pursue; trusted memory of one means
// search the last known position; otherwise the shared patrol route drives
// movement.
type SentrySystem struct {
	grid *NavGrid
}

func NewSentrySystem(grid *NavGrid) *SentrySystem {
	return &SentrySystem{grid: grid}
}

func (s *SentrySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach3(w, component.SentryTagComponent.Kind(), component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.SentryTag, agent *component.Agent, t *component.Transform) {
		memory, ok := ecs.Get(w, e, component.TargetMemoryComponent.Kind())
		if !ok {
			memory = &component.TargetMemory{}
			_ = ecs.Add(w, e, component.TargetMemoryComponent.Kind(), memory)
		}
		target, _ := ecs.Get(w, e, component.TargetComponent.Kind())
		perception, _ := ecs.Get(w, e, component.PerceptionComponent.Kind())

		if target != nil && target.Held() {
			s.pursue(w, e, agent, t, target, memory, perception)
			return
		}
		if memory.HasSeen && memory.Timer > 0 {
			s.search(w, e, agent, t, memory)
			return
		}
		s.patrol(w, e, agent, t)
	})
}

// pursue re-verifies line of sight every tick. While visible the memory is
// refreshed and the sentry runs at the target; the tick sight breaks the
// target is dropped, leaving the just-refreshed memory to drive a search.
func (s *SentrySystem) pursue(w *ecs.World, e ecs.Entity, agent *component.Agent, t *component.Transform, target *component.Target, memory *component.TargetMemory, perception *component.Perception) {
	held := targetEntity(*target)
	visible := perception != nil && perception.TargetVisible && ecs.IsAlive(w, held)

	if !visible {
		dropped := held
		target.ID = 0
		target.Gen = 0
		setIntent(w, e, 0, 0)
		w.Events().Push(ecs.Event{
			Type: ecs.EventTargetLost,
			Data: ecs.TargetLostEvent{Agent: e, Target: dropped},
		})
		return
	}

	memory.Refresh(perception.TargetX, perception.TargetY, agent.MemoryTime)
	s.moveToward(w, e, agent, t, perception.TargetX, perception.TargetY, agent.RunSpeed)
}

// search heads for the last known position. Arrival clears the memory
// immediately rather than waiting out the timer.
func (s *SentrySystem) search(w *ecs.World, e ecs.Entity, agent *component.Agent, t *component.Transform, memory *component.TargetMemory) {
	if math.Hypot(memory.LastKnownX-t.X, memory.LastKnownY-t.Y) < arrivalRadius {
		memory.Clear()
		setIntent(w, e, 0, 0)
		return
	}
	s.moveToward(w, e, agent, t, memory.LastKnownX, memory.LastKnownY, agent.MoveSpeed*searchSpeedFactor)
}

func (s *SentrySystem) patrol(w *ecs.World, e ecs.Entity, agent *component.Agent, t *component.Transform) {
	route, ok := ecs.Get(w, e, component.PatrolRouteComponent.Kind())
	if !ok || len(route.Points) == 0 || route.WaitTimer > 0 {
		setIntent(w, e, 0, 0)
		return
	}
	point := route.Points[route.Index]
	s.moveToward(w, e, agent, t, point.X, point.Y, agent.MoveSpeed)
}

func (s *SentrySystem) moveToward(w *ecs.World, e ecs.Entity, agent *component.Agent, t *component.Transform, goalX, goalY, speed float64) {
	wx, wy := goalX, goalY
	if s.grid != nil {
		if nav, ok := ecs.Get(w, e, component.NavigationComponent.Kind()); ok {
			s.grid.SetGoal(nav, t.X, t.Y, goalX, goalY)
			wx, wy = s.grid.NextWaypoint(nav, t.X, t.Y)
		}
	}
	vx, vy := steerToward(t.X, t.Y, wx, wy, speed)
	setIntent(w, e, vx, vy)
	rotateToward(t, vx, vy, agent.RotationSpeed*TickSeconds)
}
