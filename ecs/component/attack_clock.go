package component

// AttackClock gates attack execution. Remaining ticks down each frame; an
// attack may fire only when it is zero, which resets it to the cooldown.
type AttackClock struct {
	Remaining float64
}

var AttackClockComponent = NewComponent[AttackClock]()
