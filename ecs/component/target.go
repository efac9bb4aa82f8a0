package component

// Target is a weak reference to another entity. Holders must confirm the
// entity is still alive before reading its state.
type Target struct {
	ID  int
	Gen int
}

// Held reports whether a target is currently assigned.
func (t Target) Held() bool {
	return t.ID > 0
}

var TargetComponent = NewComponent[Target]()

// TargetMemory remembers where a target was last seen and for how long that
// knowledge stays trusted. LastKnownX/Y must not be used for navigation
// while HasSeen is false.
type TargetMemory struct {
	HasSeen    bool
	LastKnownX float64
	LastKnownY float64
	Timer      float64
}

// Refresh records a confirmed sighting.
func (m *TargetMemory) Refresh(x, y, memoryTime float64) {
	if m == nil {
		return
	}
	m.HasSeen = true
	m.LastKnownX = x
	m.LastKnownY = y
	m.Timer = memoryTime
}

// Clear forgets the target immediately.
func (m *TargetMemory) Clear() {
	if m == nil {
		return
	}
	m.HasSeen = false
	m.Timer = 0
}

var TargetMemoryComponent = NewComponent[TargetMemory]()

// Perception is per-tick scratch output from the perception system,
// consumed by the FSM and sentry systems in the same tick.
type Perception struct {
	TargetVisible bool
	TargetX       float64
	TargetY       float64
	TargetDist    float64

	// LostSight is true only on the tick visibility dropped (falling edge).
	LostSight bool
}

var PerceptionComponent = NewComponent[Perception]()
