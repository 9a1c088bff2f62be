package algo

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

// block marks the given cells as obstacles.
func block(g *core.Grid, pts ...core.Point) {
	for _, p := range pts {
		g.SetState(p, core.Blocked)
	}
}

// requireContiguous checks every step is a unit move (or a wait when allowWait).
func requireContiguous(t *testing.T, path core.Path, allowWait bool) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		d := Manhattan(path[i-1], path[i])
		if d == 0 && allowWait {
			continue
		}
		require.Equalf(t, 1, d, "step %d: %v -> %v is not a unit move", i, path[i-1], path[i])
	}
}

func TestManhattan(t *testing.T) {
	tests := []struct {
		a, b core.Point
		want int
	}{
		{core.Pt(0, 0), core.Pt(0, 0), 0},
		{core.Pt(0, 0), core.Pt(4, 4), 8},
		{core.Pt(3, 1), core.Pt(1, 3), 4},
		{core.Pt(5, 2), core.Pt(0, 2), 5},
	}
	for _, tt := range tests {
		if got := Manhattan(tt.a, tt.b); got != tt.want {
			t.Errorf("Manhattan(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAStarObstacleFreeLength(t *testing.T) {
	g := core.NewGrid(6)
	for i := 0; i < g.Len(); i += 5 {
		for j := 0; j < g.Len(); j += 7 {
			start, goal := g.PointAt(i), g.PointAt(j)
			path := AStar(g, start, goal)
			require.NotNil(t, path, "%v -> %v", start, goal)
			assert.Len(t, path, 1+Manhattan(start, goal), "%v -> %v", start, goal)
			assert.Equal(t, start, path[0])
			assert.Equal(t, goal, path.Last())
			requireContiguous(t, path, false)
		}
	}
}

func TestAStarStartEqualsGoal(t *testing.T) {
	g := core.NewGrid(4)
	path := AStar(g, core.Pt(2, 1), core.Pt(2, 1))
	assert.Equal(t, core.Path{core.Pt(2, 1)}, path)
}

func TestAStarEnclosedGoal(t *testing.T) {
	g := core.NewGrid(5)
	block(g, core.Pt(2, 1), core.Pt(1, 2), core.Pt(3, 2), core.Pt(2, 3))

	path := AStar(g, core.Pt(0, 0), core.Pt(2, 2))
	assert.Nil(t, path)
}

func TestAStarFiveByFiveDiagonal(t *testing.T) {
	g := core.NewGrid(5)
	path := AStar(g, core.Pt(0, 0), core.Pt(4, 4))

	require.Len(t, path, 9)
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		assert.GreaterOrEqual(t, cur.X+cur.Y, prev.X+prev.Y)
	}
}

func TestAStarWallWithOpening(t *testing.T) {
	g := core.NewGrid(3)
	// Wall across row 1 except the opening at (1,1).
	block(g, core.Pt(0, 1), core.Pt(2, 1))

	path := AStar(g, core.Pt(0, 0), core.Pt(0, 2))
	require.NotNil(t, path)
	assert.Contains(t, path, core.Pt(1, 1))
	assert.Len(t, path, 5)
	requireContiguous(t, path, false)
}

func TestAStarDetour(t *testing.T) {
	g := core.NewGrid(5)
	// Vertical wall at x=2 with a gap at the bottom.
	block(g, core.Pt(2, 0), core.Pt(2, 1), core.Pt(2, 2), core.Pt(2, 3))

	path := AStar(g, core.Pt(0, 0), core.Pt(4, 0))
	require.NotNil(t, path)
	assert.Len(t, path, 13)
	assert.Contains(t, path, core.Pt(2, 4))
	for _, p := range path {
		assert.NotEqual(t, core.Blocked, g.State(p))
	}
}

func TestAStarOccupiedGoalUnreachable(t *testing.T) {
	g := core.NewGrid(3)
	g.SetState(core.Pt(2, 2), core.Occupied)
	assert.Nil(t, AStar(g, core.Pt(0, 0), core.Pt(2, 2)))
}

func TestAStarBlockMask(t *testing.T) {
	g := core.NewGrid(3)
	// Path marks across the middle row leave only the right column.
	g.SetState(core.Pt(0, 1), core.PathMark)
	g.SetState(core.Pt(1, 1), core.PathMark)

	loose := AStar(g, core.Pt(0, 0), core.Pt(0, 2))
	assert.Len(t, loose, 3)

	strict := AStar(g, core.Pt(0, 0), core.Pt(0, 2), WithBlocks(core.StrictBlocks))
	require.NotNil(t, strict)
	assert.Len(t, strict, 7)
	assert.Contains(t, strict, core.Pt(2, 1))
}

func TestAStarOutOfBounds(t *testing.T) {
	g := core.NewGrid(3)
	assert.Nil(t, AStar(g, core.Pt(-1, 0), core.Pt(2, 2)))
	assert.Nil(t, AStar(g, core.Pt(0, 0), core.Pt(3, 0)))
}

func TestAStarDoesNotMutateGrid(t *testing.T) {
	g := core.NewGrid(4)
	block(g, core.Pt(1, 1))
	before := g.Cells()

	AStar(g, core.Pt(0, 0), core.Pt(3, 3))
	assert.Equal(t, before, g.Cells())
}

func TestAStarDeterministic(t *testing.T) {
	g := core.NewGrid(8)
	block(g, core.Pt(3, 3), core.Pt(4, 3), core.Pt(5, 3))
	first := AStar(g, core.Pt(0, 0), core.Pt(7, 7))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AStar(g, core.Pt(0, 0), core.Pt(7, 7)))
	}
}

func TestAStarTracer(t *testing.T) {
	g := core.NewGrid(5)
	counter := &CountingTracer{}

	path := AStar(g, core.Pt(0, 0), core.Pt(4, 0), WithTracer(counter))
	require.Len(t, path, 5)
	assert.Equal(t, 1, counter.Searches)
	assert.Equal(t, 1, counter.Found)
	assert.Positive(t, counter.Expanded)
}

func TestLogTracer(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	tracer := NewLogTracer(logrus.NewEntry(log))

	AStar(core.NewGrid(3), core.Pt(0, 0), core.Pt(2, 0), WithTracer(tracer))

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	last := hook.LastEntry()
	assert.Equal(t, "search finished", last.Message)
	assert.Equal(t, true, last.Data["found"])
	assert.Equal(t, "search", last.Data["component"])
}

func TestReconstructPathBrokenChainPanics(t *testing.T) {
	cameFrom := map[core.Point]core.Point{core.Pt(2, 0): core.Pt(1, 0)}
	require.Panics(t, func() {
		reconstructPath(cameFrom, core.Pt(0, 0), core.Pt(2, 0))
	})
}
