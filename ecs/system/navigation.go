package system

import (
	"container/heap"
	"math"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

const defaultNavGridSize = 32.0

// NavGrid plans grid paths around the level's static walls and hands out
// the next waypoint toward a goal. Paths are recomputed whenever the goal
// or start cell changes, so callers simply re-query every tick.
type NavGrid struct {
	gridW    int
	gridH    int
	cellSize float64
	blocked  []bool
}

// NewNavGrid rasterizes the walls into a blocked-cell grid covering the
// level bounds.
func NewNavGrid(width, height, cellSize float64, walls []ecs.Wall) *NavGrid {
	if cellSize <= 0 {
		cellSize = defaultNavGridSize
	}
	gridW := int(math.Ceil(width / cellSize))
	gridH := int(math.Ceil(height / cellSize))
	if gridW <= 0 {
		gridW = 1
	}
	if gridH <= 0 {
		gridH = 1
	}

	g := &NavGrid{
		gridW:    gridW,
		gridH:    gridH,
		cellSize: cellSize,
		blocked:  make([]bool, gridW*gridH),
	}
	for _, wall := range walls {
		g.block(wall)
	}
	return g
}

func (g *NavGrid) block(wall ecs.Wall) {
	startX := int(math.Floor(wall.X / g.cellSize))
	startY := int(math.Floor(wall.Y / g.cellSize))
	endX := int(math.Floor((wall.X + wall.W - 0.001) / g.cellSize))
	endY := int(math.Floor((wall.Y + wall.H - 0.001) / g.cellSize))

	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}
	if endX >= g.gridW {
		endX = g.gridW - 1
	}
	if endY >= g.gridH {
		endY = g.gridH - 1
	}

	for y := startY; y <= endY; y++ {
		for x := startX; x <= endX; x++ {
			g.blocked[y*g.gridW+x] = true
		}
	}
}

// SetGoal points the navigation state at a new goal, replanning when the
// goal or start cell moved since the last plan.
func (g *NavGrid) SetGoal(nav *component.Navigation, fromX, fromY, goalX, goalY float64) {
	if g == nil || nav == nil {
		return
	}
	start := g.coord(fromX, fromY)
	goal := g.coord(goalX, goalY)

	if nav.HasGoal && nav.Path != nil &&
		start.x == nav.LastStartX && start.y == nav.LastStartY &&
		goal.x == nav.LastGoalX && goal.y == nav.LastGoalY {
		nav.GoalX = goalX
		nav.GoalY = goalY
		return
	}

	nav.HasGoal = true
	nav.GoalX = goalX
	nav.GoalY = goalY
	nav.GridSize = g.cellSize
	nav.LastStartX = start.x
	nav.LastStartY = start.y
	nav.LastGoalX = goal.x
	nav.LastGoalY = goal.y
	nav.WaypointIndex = 0
	nav.Path = g.pathToWorld(astarPath(start, goal, g.blocked, g.gridW, g.gridH))
}

// NextWaypoint returns the next point along the planned path toward the
// goal, advancing past waypoints already within half a cell. Without a
// usable path it falls back to heading straight at the goal.
func (g *NavGrid) NextWaypoint(nav *component.Navigation, fromX, fromY float64) (float64, float64) {
	if g == nil || nav == nil || !nav.HasGoal {
		return fromX, fromY
	}
	advanceRadius := g.cellSize * 0.5

	for nav.WaypointIndex < len(nav.Path) {
		node := nav.Path[nav.WaypointIndex]
		if math.Hypot(node.X-fromX, node.Y-fromY) > advanceRadius {
			return node.X, node.Y
		}
		nav.WaypointIndex++
	}
	return nav.GoalX, nav.GoalY
}

type gridPos struct {
	x int
	y int
}

func (g *NavGrid) coord(x, y float64) gridPos {
	gx := int(math.Floor(x / g.cellSize))
	gy := int(math.Floor(y / g.cellSize))
	if gx < 0 {
		gx = 0
	}
	if gy < 0 {
		gy = 0
	}
	if gx >= g.gridW {
		gx = g.gridW - 1
	}
	if gy >= g.gridH {
		gy = g.gridH - 1
	}
	return gridPos{x: gx, y: gy}
}

func (g *NavGrid) pathToWorld(path []gridPos) []component.PathNode {
	if len(path) == 0 {
		return nil
	}
	out := make([]component.PathNode, 0, len(path))
	half := g.cellSize * 0.5
	for _, p := range path {
		out = append(out, component.PathNode{
			X: float64(p.x)*g.cellSize + half,
			Y: float64(p.y)*g.cellSize + half,
		})
	}
	return out
}

func astarPath(start, goal gridPos, blocked []bool, gridW, gridH int) []gridPos {
	if start.x >= gridW || start.y >= gridH || goal.x >= gridW || goal.y >= gridH {
		return nil
	}
	if blocked[start.y*gridW+start.x] || blocked[goal.y*gridW+goal.x] {
		return nil
	}

	open := &openSet{}
	heap.Init(open)

	cameFrom := make([]int, gridW*gridH)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	gScore := make([]float64, gridW*gridH)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	startIdx := start.y*gridW + start.x
	goalIdx := goal.y*gridW + goal.x
	gScore[startIdx] = 0
	heap.Push(open, &openItem{pos: start, f: heuristic(start, goal)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		cur := current.pos
		curIdx := cur.y*gridW + cur.x

		if curIdx == goalIdx {
			return reconstructPath(cameFrom, gridW, startIdx, goalIdx)
		}

		for _, n := range neighbors(cur, gridW, gridH) {
			idx := n.y*gridW + n.x
			if blocked[idx] {
				continue
			}
			tentativeG := gScore[curIdx] + 1
			if tentativeG < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentativeG
				heap.Push(open, &openItem{pos: n, f: tentativeG + heuristic(n, goal)})
			}
		}
	}

	return nil
}

func reconstructPath(cameFrom []int, gridW int, startIdx, goalIdx int) []gridPos {
	if startIdx == goalIdx {
		return []gridPos{{x: startIdx % gridW, y: startIdx / gridW}}
	}
	if goalIdx < 0 || goalIdx >= len(cameFrom) || cameFrom[goalIdx] == -1 {
		return nil
	}

	path := make([]gridPos, 0, 32)
	cur := goalIdx
	for cur != -1 {
		path = append(path, gridPos{x: cur % gridW, y: cur / gridW})
		if cur == startIdx {
			break
		}
		cur = cameFrom[cur]
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func neighbors(p gridPos, gridW, gridH int) []gridPos {
	out := make([]gridPos, 0, 4)
	if p.x > 0 {
		out = append(out, gridPos{x: p.x - 1, y: p.y})
	}
	if p.x < gridW-1 {
		out = append(out, gridPos{x: p.x + 1, y: p.y})
	}
	if p.y > 0 {
		out = append(out, gridPos{x: p.x, y: p.y - 1})
	}
	if p.y < gridH-1 {
		out = append(out, gridPos{x: p.x, y: p.y + 1})
	}
	return out
}

func heuristic(a, b gridPos) float64 {
	return math.Abs(float64(a.x-b.x)) + math.Abs(float64(a.y-b.y))
}

type openItem struct {
	pos   gridPos
	f     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}
