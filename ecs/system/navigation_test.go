package system

import (
	"math"
	"testing"

	"github.com/milk9111/nightwatch/ecs"
	"github.com/milk9111/nightwatch/ecs/component"
)

func TestNavGridPlansAroundWall(t *testing.T) {
	// 10x10 cells, with a vertical wall splitting the middle except the
	// bottom row.
	grid := NewNavGrid(320, 320, 32, []ecs.Wall{{X: 160, Y: 0, W: 32, H: 288}})

	nav := &component.Navigation{}
	grid.SetGoal(nav, 16, 16, 304, 16)

	if !nav.HasGoal || len(nav.Path) == 0 {
		t.Fatalf("expected a path around the wall")
	}

	// The detour must pass below the wall and never cross a blocked cell.
	throughGap := false
	for _, node := range nav.Path {
		cx := int(math.Floor(node.X / 32))
		cy := int(math.Floor(node.Y / 32))
		if grid.blocked[cy*grid.gridW+cx] {
			t.Fatalf("path crosses blocked cell (%d, %d)", cx, cy)
		}
		if cy == 9 {
			throughGap = true
		}
	}
	if !throughGap {
		t.Fatalf("path should detour through the bottom gap, got %v", nav.Path)
	}

	last := nav.Path[len(nav.Path)-1]
	if math.Hypot(last.X-304, last.Y-16) > 32 {
		t.Fatalf("path should end at the goal cell, last node (%v, %v)", last.X, last.Y)
	}
}

func TestNavGridReplansOnGoalChange(t *testing.T) {
	grid := NewNavGrid(320, 320, 32, nil)
	nav := &component.Navigation{}

	grid.SetGoal(nav, 16, 16, 304, 16)
	first := nav.Path

	// Same start and goal cells: the plan is reused.
	grid.SetGoal(nav, 20, 20, 300, 20)
	if len(nav.Path) != len(first) {
		t.Fatalf("plan should be reused for the same cells")
	}

	grid.SetGoal(nav, 16, 16, 16, 304)
	if len(nav.Path) == 0 || nav.Path[len(nav.Path)-1].Y < 280 {
		t.Fatalf("goal change should replan, got %v", nav.Path)
	}
}

func TestNextWaypointAdvances(t *testing.T) {
	grid := NewNavGrid(320, 320, 32, nil)
	nav := &component.Navigation{}
	grid.SetGoal(nav, 16, 16, 144, 16)

	// Standing on the first node skips it.
	wx, wy := grid.NextWaypoint(nav, 16, 16)
	if wx <= 16 {
		t.Fatalf("waypoint should be ahead of the start, got (%v, %v)", wx, wy)
	}

	// Past the end of the path the goal itself is returned.
	nav.WaypointIndex = len(nav.Path)
	gx, gy := grid.NextWaypoint(nav, 140, 16)
	if gx != 144 || gy != 16 {
		t.Fatalf("expected the goal, got (%v, %v)", gx, gy)
	}
}

func TestNoPathFallsBackToGoal(t *testing.T) {
	// Goal cell is inside a wall: planning fails, steering falls back to
	// heading straight at the goal.
	grid := NewNavGrid(320, 320, 32, []ecs.Wall{{X: 288, Y: 0, W: 32, H: 320}})
	nav := &component.Navigation{}
	grid.SetGoal(nav, 16, 16, 304, 160)

	if len(nav.Path) != 0 {
		t.Fatalf("expected no path into a blocked cell, got %v", nav.Path)
	}
	wx, wy := grid.NextWaypoint(nav, 16, 16)
	if wx != 304 || wy != 160 {
		t.Fatalf("fallback should aim at the goal, got (%v, %v)", wx, wy)
	}
}
