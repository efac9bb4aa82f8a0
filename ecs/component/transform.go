package component

// Transform stores world position and heading. Rotation is in radians with
// 0 pointing along +X.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
