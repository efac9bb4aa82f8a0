package component

// AgentFSMSpec is a YAML-agnostic representation of an agent finite state
// machine used by runtime systems.
type AgentFSMSpec struct {
	Initial     string
	States      map[string]AgentFSMStateSpec
	Transitions map[string][]map[string]any

	// ScriptLifecycle selects the tengo-scripted lifecycle instead of the
	// compiled action lists.
	ScriptLifecycle bool
	ScriptPath      string
}

type AgentFSMStateSpec struct {
	OnEnter []map[string]any
	While   []map[string]any
	OnExit  []map[string]any
}

var AgentFSMSpecComponent = NewComponent[AgentFSMSpec]()
