package component

// Agent holds the tuning values that drive an AI agent's behavior. Loaded
// from a prefab spec and shared by the guard FSM and sentry systems.
type Agent struct {
	MoveSpeed      float64
	RunSpeed       float64
	RotationSpeed  float64 // radians per second
	DetectionRange float64
	AttackRange    float64
	AttackCooldown float64 // seconds
	AttackDamage   float64
	MemoryTime     float64 // seconds a lost target's position stays trusted
	EyeOffsetY     float64 // eye height relative to the transform
	PatrolDwell    float64 // seconds to wait at each patrol point
}

var AgentComponent = NewComponent[Agent]()
