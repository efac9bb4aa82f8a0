package component

// Health tracks hit points. Current only decreases; lethal damage past zero
// is a no-op once the owner is dead.
type Health struct {
	Current float64
	Max     float64
}

func (h Health) Dead() bool {
	return h.Current <= 0
}

var HealthComponent = NewComponent[Health]()
