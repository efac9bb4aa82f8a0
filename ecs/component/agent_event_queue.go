package component

// AgentEventQueue is a one-tick queue of FSM events. Producer systems append
// events here; the agent system drains it each tick.
type AgentEventQueue struct {
	Events []EventID
}

var AgentEventQueueComponent = NewComponent[AgentEventQueue]()
