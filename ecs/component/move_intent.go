package component

// MoveIntent is the velocity an agent wants this tick. The physics bridge
// applies it to the body before stepping the space.
type MoveIntent struct {
	X float64
	Y float64
}

var MoveIntentComponent = NewComponent[MoveIntent]()
