package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventTargetSpotted      = "target_spotted"
	EventTargetLost         = "target_lost"
	EventReachedPatrolPoint = "reached_patrol_point"
	EventAgentDied          = "agent_died"
	EventAgentRemoved       = "agent_removed"
)

// TargetSpottedEvent is emitted once per target acquisition.
type TargetSpottedEvent struct {
	Agent  Entity
	Target Entity
}

// TargetLostEvent is emitted once when a held target drops out of sight.
type TargetLostEvent struct {
	Agent  Entity
	Target Entity
}

// ReachedPatrolPointEvent is emitted once per waypoint arrival.
type ReachedPatrolPointEvent struct {
	Agent Entity
	Index int
}

// AgentDiedEvent is emitted once when an agent enters the dead state.
type AgentDiedEvent struct {
	Agent Entity
}

// AgentRemovedEvent is emitted when a dead agent's wind-down expires and the
// entity is removed from the simulation.
type AgentRemovedEvent struct {
	Agent Entity
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
