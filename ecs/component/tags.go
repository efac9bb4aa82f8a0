package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// PatrolPointTag marks a marker entity that seeds nearby patrol routes.
// Order preserves the authored scene order.
type PatrolPointTag struct {
	Order int
}

var PatrolPointTagComponent = NewComponent[PatrolPointTag]()

// SentryTag selects the perception-with-memory branch behavior instead of
// the guard FSM.
type SentryTag struct{}

var SentryTagComponent = NewComponent[SentryTag]()
