package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/core"
)

func countState(snap Snapshot, st core.CellState) int {
	n := 0
	for _, c := range snap.Cells {
		if c.State == st {
			n++
		}
	}
	return n
}

func TestTickSingleAgentApproachesGoal(t *testing.T) {
	s := newSim(t, 6)
	start, goal := core.Pt(0, 0), core.Pt(3, 4)
	id := mustAgent(t, s, start, goal)

	pos := start
	for step := 1; pos != goal; step++ {
		require.LessOrEqual(t, step, manhattan(start, goal), "agent should arrive in time")
		before := manhattan(pos, goal)

		res := s.Tick()
		require.True(t, res.MovedAny)
		require.Equal(t, 1, res.Moved)
		require.Equal(t, step, res.TickIndex)
		require.False(t, res.Halted)

		var err error
		pos, err = s.Position(id)
		require.NoError(t, err)
		require.Equal(t, before-1, manhattan(pos, goal))

		snap := s.Snapshot()
		if pos != goal {
			assert.Equal(t, core.Occupied, snap.At(pos))
			assert.Equal(t, manhattan(pos, goal)-1, countState(snap, core.PathMark))
		}
		assert.Equal(t, 1, snap.Agents[0].Progress)
	}

	res := s.Tick()
	assert.False(t, res.MovedAny)
	assert.True(t, res.Halted)
	assert.Equal(t, 1, res.Arrived)
	assert.True(t, s.Halted())

	snap := s.Snapshot()
	assert.Equal(t, core.Start, snap.At(start))
	assert.Equal(t, core.Goal, snap.At(goal))
	assert.Zero(t, countState(snap, core.Occupied))
	assert.Zero(t, countState(snap, core.PathMark))
	assert.True(t, snap.Agents[0].AtGoal)
}

func TestTickNoAgentsHalts(t *testing.T) {
	s := newSim(t, 3)
	res := s.Tick()
	assert.Equal(t, TickResult{TickIndex: 1, Halted: true}, res)
}

func TestTickCorridorDeadlock(t *testing.T) {
	// A single corridor on row 1.
	s := newSim(t, 4)
	for x := 0; x < 4; x++ {
		require.NoError(t, s.SetObstacle(core.Pt(x, 0)))
		require.NoError(t, s.SetObstacle(core.Pt(x, 2)))
		require.NoError(t, s.SetObstacle(core.Pt(x, 3)))
	}
	a := mustAgent(t, s, core.Pt(0, 1), core.Pt(2, 1))
	b := mustAgent(t, s, core.Pt(3, 1), core.Pt(1, 1))

	var res TickResult
	for i := 0; i < 10 && !res.Halted; i++ {
		res = s.Tick()
	}
	require.True(t, res.Halted)
	assert.Equal(t, 3, res.TickIndex)
	assert.Equal(t, 1, res.Arrived)

	posA, _ := s.Position(a)
	posB, _ := s.Position(b)
	assert.Equal(t, core.Pt(2, 1), posA)
	assert.Equal(t, core.Pt(3, 1), posB)

	// Masks were lifted after every search.
	snap := s.Snapshot()
	assert.Equal(t, core.Start, snap.At(core.Pt(0, 1)))
	assert.Equal(t, core.Goal, snap.At(core.Pt(1, 1)))
	assert.Equal(t, core.Goal, snap.At(core.Pt(2, 1)))
	assert.Equal(t, core.Start, snap.At(core.Pt(3, 1)))
	assert.Zero(t, countState(snap, core.Occupied))
}

func TestTickRunsWhileHalted(t *testing.T) {
	s := newSim(t, 3)
	for y := 0; y < 3; y++ {
		require.NoError(t, s.SetObstacle(core.Pt(1, y)))
	}
	mustAgent(t, s, core.Pt(0, 0), core.Pt(2, 0))
	before := s.Snapshot()

	res := s.Tick()
	assert.True(t, res.Halted)
	assert.Equal(t, before.Cells, s.Snapshot().Cells, "failed search leaves the grid as it was")

	require.NoError(t, s.ClearObstacle(core.Pt(1, 1)))
	res = s.Tick()
	assert.Equal(t, 2, res.TickIndex)
	assert.True(t, res.MovedAny)
	assert.False(t, s.Halted())
}

func TestTickCrossingAgentsNeverShareCell(t *testing.T) {
	s := newSim(t, 5)
	mustAgent(t, s, core.Pt(0, 1), core.Pt(4, 3))
	mustAgent(t, s, core.Pt(4, 1), core.Pt(0, 3))
	mustAgent(t, s, core.Pt(2, 0), core.Pt(2, 4))

	var res TickResult
	for i := 0; i < 40 && !res.Halted; i++ {
		res = s.Tick()
		for idx, n := range s.Snapshot().Occupants {
			require.LessOrEqual(t, n, 1, "tick %d cell %d", res.TickIndex, idx)
		}
	}
	require.True(t, res.Halted)
	assert.Equal(t, 3, res.Arrived)
}

func TestTickExcludePathCells(t *testing.T) {
	for _, tt := range []struct {
		name    string
		exclude bool
		wantLen int
	}{
		{"path cells passable", false, 5},
		{"path cells excluded", true, 9},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(5)
			cfg.ExcludePathCells = tt.exclude
			s := NewSimulation(cfg)
			mustAgent(t, s, core.Pt(0, 2), core.Pt(4, 2))
			mustAgent(t, s, core.Pt(2, 0), core.Pt(2, 4))

			s.Tick()
			snap := s.Snapshot()
			assert.Equal(t, core.PathMark, snap.At(core.Pt(2, 2)))

			second := snap.Agents[1].Path
			require.Len(t, second, tt.wantLen)
			if tt.exclude {
				assert.NotContains(t, second, core.Pt(2, 2))
				assert.NotContains(t, second, core.Pt(3, 2))
			}
		})
	}
}

func TestTickMarksEveryReplannedPath(t *testing.T) {
	s := newSim(t, 5)
	mustAgent(t, s, core.Pt(0, 2), core.Pt(4, 2))
	mustAgent(t, s, core.Pt(2, 0), core.Pt(2, 4))

	res := s.Tick()
	require.Equal(t, 2, res.Moved)

	snap := s.Snapshot()
	for _, p := range []core.Point{core.Pt(2, 2), core.Pt(3, 2), core.Pt(2, 3)} {
		assert.Equal(t, core.PathMark, snap.At(p), "%v", p)
	}
	assert.Equal(t, core.Occupied, snap.At(core.Pt(1, 2)))
	assert.Equal(t, core.Occupied, snap.At(core.Pt(2, 1)))
	assert.Equal(t, 3, countState(snap, core.PathMark))
}

func TestTickWithoutPathMarks(t *testing.T) {
	cfg := testConfig(5)
	cfg.MarkPaths = false
	s := NewSimulation(cfg)
	mustAgent(t, s, core.Pt(0, 0), core.Pt(4, 4))

	s.PlanAll()
	s.Tick()
	assert.Zero(t, countState(s.Snapshot(), core.PathMark))
}

type fakeObserver struct {
	ticks   []TickResult
	tracers map[string]*algo.CountingTracer
}

func (f *fakeObserver) ObserveTick(res TickResult) { f.ticks = append(f.ticks, res) }

func (f *fakeObserver) SearchTracer(kind string) algo.Tracer {
	if f.tracers == nil {
		f.tracers = make(map[string]*algo.CountingTracer)
	}
	if f.tracers[kind] == nil {
		f.tracers[kind] = &algo.CountingTracer{}
	}
	return f.tracers[kind]
}

func TestObserver(t *testing.T) {
	obs := &fakeObserver{}
	cfg := testConfig(4)
	cfg.Observer = obs
	s := NewSimulation(cfg)
	mustAgent(t, s, core.Pt(0, 0), core.Pt(3, 0))
	mustAgent(t, s, core.Pt(0, 3), core.Pt(3, 3))

	s.PlanAll()
	s.PlanAllTimed()
	s.Tick()

	require.Len(t, obs.ticks, 1)
	assert.Equal(t, 2, obs.ticks[0].Moved)
	assert.Equal(t, 2, obs.tracers[KindPlan].Searches)
	assert.Equal(t, 2, obs.tracers[KindTimed].Found)
	assert.Equal(t, 2, obs.tracers[KindTick].Searches)
}
