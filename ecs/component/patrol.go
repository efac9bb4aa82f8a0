package component

// PathNode represents a world-space point along a path or route.
type PathNode struct {
	X float64
	Y float64
}

// PatrolMode selects how a route advances after each waypoint.
type PatrolMode string

const (
	PatrolLoop     PatrolMode = "loop"
	PatrolPingPong PatrolMode = "ping_pong"
	PatrolRandom   PatrolMode = "random"
)

// KnownPatrolMode reports whether m is one of the supported modes.
func KnownPatrolMode(m PatrolMode) bool {
	switch m {
	case PatrolLoop, PatrolPingPong, PatrolRandom:
		return true
	}
	return false
}

// PatrolRoute is an ordered waypoint sequence. Index stays in [0, len-1]
// whenever Points is non-empty; Direction is only meaningful in ping-pong
// mode and flips exactly at the two boundary indices.
type PatrolRoute struct {
	Points    []PathNode
	Index     int
	Mode      PatrolMode
	Direction int
	WaitTimer float64

	// Seeded marks the one-time population from markers or the fallback.
	Seeded bool

	// WarnedUnknownMode limits the unknown-mode log line to once per route.
	WarnedUnknownMode bool
}

var PatrolRouteComponent = NewComponent[PatrolRoute]()
