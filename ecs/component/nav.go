package component

// Navigation stores the current steering goal and the grid path computed
// toward it. Re-planned whenever the goal or start cell changes.
type Navigation struct {
	HasGoal       bool
	GoalX         float64
	GoalY         float64
	Path          []PathNode
	WaypointIndex int

	GridSize   float64
	LastStartX int
	LastStartY int
	LastGoalX  int
	LastGoalY  int
}

var NavigationComponent = NewComponent[Navigation]()
