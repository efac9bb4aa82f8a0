package component

// StateID identifies an agent FSM state.
type StateID string

// EventID identifies an agent FSM event.
type EventID string

const (
	StateIdle   StateID = "idle"
	StatePatrol StateID = "patrol"
	StateChase  StateID = "chase"
	StateAttack StateID = "attack"
	StateDead   StateID = "dead"
)

const DefaultAgentFSMName = "guard_default"

// AgentState stores the current FSM state.
type AgentState struct {
	Current StateID
}

// AgentContext stores per-entity FSM runtime data.
type AgentContext struct {
	Timer float64
}

// AgentFSMConfig names the FSM configuration used by an entity.
type AgentFSMConfig struct {
	FSM string
}

var AgentStateComponent = NewComponent[AgentState]()
var AgentContextComponent = NewComponent[AgentContext]()
var AgentFSMConfigComponent = NewComponent[AgentFSMConfig]()
