package component

// Despawn counts down the wind-down after death; when Seconds reaches zero
// the entity is removed from the simulation. Only the entity's own
// destruction cancels it.
type Despawn struct {
	Seconds float64
}

var DespawnComponent = NewComponent[Despawn]()
