package sim

import (
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/core"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testConfig(size int) SimulationConfig {
	cfg := DefaultConfig()
	cfg.Size = size
	cfg.Logger = quietLogger()
	return cfg
}

func newSim(t *testing.T, size int) *Simulation {
	t.Helper()
	return NewSimulation(testConfig(size))
}

func mustAgent(t *testing.T, s *Simulation, start, goal core.Point) core.AgentID {
	t.Helper()
	id, err := s.CreateAgent(start, goal)
	require.NoError(t, err)
	return id
}

func manhattan(a, b core.Point) int { return algo.Manhattan(a, b) }

func TestNewSimulationEmpty(t *testing.T) {
	s := newSim(t, 4)
	snap := s.Snapshot()

	assert.Equal(t, 4, snap.Size)
	assert.Len(t, snap.Cells, 16)
	for _, c := range snap.Cells {
		assert.Equal(t, core.Empty, c.State)
	}
	assert.Empty(t, snap.Agents)
	assert.Zero(t, snap.Reservations)
	assert.False(t, s.HasPlans())
	assert.NotEqual(t, s.RunID().String(), newSim(t, 4).RunID().String())
}

func TestCreateAgent(t *testing.T) {
	s := newSim(t, 5)
	require.NoError(t, s.SetObstacle(core.Pt(2, 2)))

	id1 := mustAgent(t, s, core.Pt(0, 0), core.Pt(4, 4))
	id2 := mustAgent(t, s, core.Pt(4, 0), core.Pt(0, 4))
	assert.Equal(t, core.AgentID(1), id1)
	assert.Equal(t, core.AgentID(2), id2)

	snap := s.Snapshot()
	assert.Equal(t, core.Start, snap.At(core.Pt(0, 0)))
	assert.Equal(t, core.Goal, snap.At(core.Pt(4, 4)))
	require.Len(t, snap.Agents, 2)
	assert.Equal(t, core.Pt(4, 0), snap.Agents[1].Position)

	pos, err := s.Position(id1)
	require.NoError(t, err)
	assert.Equal(t, core.Pt(0, 0), pos)

	_, err = s.Position(99)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestCreateAgentRejects(t *testing.T) {
	s := newSim(t, 4)
	require.NoError(t, s.SetObstacle(core.Pt(1, 1)))
	mustAgent(t, s, core.Pt(0, 0), core.Pt(3, 3))
	before := s.Snapshot()

	tests := []struct {
		name        string
		start, goal core.Point
		want        error
	}{
		{"start out of bounds", core.Pt(-1, 0), core.Pt(2, 2), ErrOutOfBounds},
		{"goal out of bounds", core.Pt(2, 2), core.Pt(4, 0), ErrOutOfBounds},
		{"start on obstacle", core.Pt(1, 1), core.Pt(2, 2), ErrInvalidPlacement},
		{"goal on start marker", core.Pt(2, 2), core.Pt(0, 0), ErrInvalidPlacement},
		{"goal on goal marker", core.Pt(2, 2), core.Pt(3, 3), ErrInvalidPlacement},
		{"start equals goal", core.Pt(2, 2), core.Pt(2, 2), ErrInvalidPlacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateAgent(tt.start, tt.goal)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.Snapshot(), "rejected call must not mutate")
		})
	}
}

func TestPlaceAgentTwoTaps(t *testing.T) {
	s := newSim(t, 4)

	id, created, err := s.PlaceAgent(core.Pt(0, 0))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, id)
	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, core.Pt(0, 0), pending)
	assert.Equal(t, core.Start, s.Snapshot().At(core.Pt(0, 0)))

	// A non-empty cell is refused and the pending start survives.
	require.NoError(t, s.SetObstacle(core.Pt(1, 0)))
	_, _, err = s.PlaceAgent(core.Pt(1, 0))
	assert.ErrorIs(t, err, ErrInvalidPlacement)
	_, ok = s.Pending()
	assert.True(t, ok)

	id, created, err = s.PlaceAgent(core.Pt(3, 3))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, core.AgentID(1), id)
	_, ok = s.Pending()
	assert.False(t, ok)

	agents := s.Agents()
	require.Len(t, agents, 1)
	assert.Equal(t, core.Agent{ID: 1, Start: core.Pt(0, 0), Goal: core.Pt(3, 3)}, agents[0])
}

func TestPlaceAgentCancel(t *testing.T) {
	s := newSim(t, 4)

	_, _, err := s.PlaceAgent(core.Pt(2, 2))
	require.NoError(t, err)
	_, created, err := s.PlaceAgent(core.Pt(2, 2))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, core.Empty, s.Snapshot().At(core.Pt(2, 2)))

	_, _, err = s.PlaceAgent(core.Pt(1, 2))
	require.NoError(t, err)
	s.CancelPending()
	assert.Equal(t, core.Empty, s.Snapshot().At(core.Pt(1, 2)))
	assert.Empty(t, s.Agents())
}

func TestAddRandomAgent(t *testing.T) {
	s := newSim(t, 8)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10; i++ {
		_, err := s.AddRandomAgent(rng)
		require.NoError(t, err)
	}
	for _, a := range s.Agents() {
		assert.GreaterOrEqual(t, core.Chebyshev(a.Start, a.Goal), 3)
	}
	snap := s.Snapshot()
	starts, goals := 0, 0
	for _, c := range snap.Cells {
		switch c.State {
		case core.Start:
			starts++
		case core.Goal:
			goals++
		}
	}
	assert.Equal(t, 10, starts)
	assert.Equal(t, 10, goals)
}

func TestAddRandomAgentGridFull(t *testing.T) {
	s := newSim(t, 3)
	_, err := s.AddRandomAgent(rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrGridFull)
	assert.Empty(t, s.Agents())
}

func TestObstacles(t *testing.T) {
	s := newSim(t, 3)

	require.NoError(t, s.SetObstacle(core.Pt(1, 1)))
	assert.Equal(t, core.Blocked, s.Snapshot().At(core.Pt(1, 1)))
	assert.ErrorIs(t, s.SetObstacle(core.Pt(1, 1)), ErrInvalidPlacement)
	assert.ErrorIs(t, s.SetObstacle(core.Pt(3, 1)), ErrOutOfBounds)

	require.NoError(t, s.ClearObstacle(core.Pt(1, 1)))
	assert.Equal(t, core.Empty, s.Snapshot().At(core.Pt(1, 1)))
	assert.ErrorIs(t, s.ClearObstacle(core.Pt(1, 1)), ErrInvalidPlacement)
	assert.ErrorIs(t, s.ClearObstacle(core.Pt(0, -1)), ErrOutOfBounds)
}

func TestPlanAllFiveByFive(t *testing.T) {
	s := newSim(t, 5)
	id := mustAgent(t, s, core.Pt(0, 0), core.Pt(4, 4))

	plans := s.PlanAll()
	path := plans[id]
	require.Len(t, path, 9)
	for i := 1; i < len(path); i++ {
		assert.GreaterOrEqual(t, path[i].X+path[i].Y, path[i-1].X+path[i-1].Y)
	}
	assert.True(t, s.HasPlans())
	assert.Equal(t, plans, s.Plans())

	// Interior cells are marked; endpoints keep their markers.
	snap := s.Snapshot()
	for _, p := range path[1 : len(path)-1] {
		assert.Equal(t, core.PathMark, snap.At(p), "%v", p)
	}
	assert.Equal(t, core.Start, snap.At(path[0]))
	assert.Equal(t, core.Goal, snap.At(path.Last()))

	// Static planning leaves tick state alone.
	assert.Zero(t, snap.Ticks)
	assert.Nil(t, snap.Agents[0].Path)
}

func TestPlanAllWallOpening(t *testing.T) {
	s := newSim(t, 3)
	require.NoError(t, s.SetObstacle(core.Pt(0, 1)))
	require.NoError(t, s.SetObstacle(core.Pt(2, 1)))
	id := mustAgent(t, s, core.Pt(0, 0), core.Pt(0, 2))

	path := s.PlanAll()[id]
	require.NotNil(t, path)
	assert.Contains(t, path, core.Pt(1, 1))
}

func TestPlanAllNoPath(t *testing.T) {
	s := newSim(t, 3)
	require.NoError(t, s.SetObstacle(core.Pt(0, 1)))
	require.NoError(t, s.SetObstacle(core.Pt(1, 1)))
	require.NoError(t, s.SetObstacle(core.Pt(2, 1)))
	id := mustAgent(t, s, core.Pt(0, 0), core.Pt(0, 2))

	plans := s.PlanAll()
	require.Contains(t, plans, id)
	assert.Nil(t, plans[id])
	assert.Zero(t, CountPlanned(plans))
}

func TestPlanAllRepeatsWithPathCellsExcluded(t *testing.T) {
	cfg := testConfig(3)
	cfg.ExcludePathCells = true
	s := NewSimulation(cfg)
	require.NoError(t, s.SetObstacle(core.Pt(0, 1)))
	require.NoError(t, s.SetObstacle(core.Pt(2, 1)))
	id := mustAgent(t, s, core.Pt(0, 0), core.Pt(0, 2))

	first := s.PlanAll()
	require.Len(t, first[id], 5)
	assert.Equal(t, core.PathMark, s.Snapshot().At(core.Pt(1, 1)))

	// Marks left by the first plan must not block the second.
	assert.Equal(t, first, s.PlanAll())
	timed := s.PlanAllTimed()
	assert.Len(t, timed[id], 5)

	res := s.Tick()
	assert.True(t, res.MovedAny)
}

func TestCountPlanned(t *testing.T) {
	plans := map[core.AgentID]core.Path{
		1: {core.Pt(0, 0), core.Pt(1, 0)},
		2: nil,
		3: {core.Pt(2, 2)},
	}
	assert.Equal(t, 2, CountPlanned(plans))
	assert.Zero(t, CountPlanned(nil))
}

func TestPlanAllTimed(t *testing.T) {
	s := newSim(t, 5)
	mustAgent(t, s, core.Pt(0, 2), core.Pt(4, 2))
	mustAgent(t, s, core.Pt(2, 0), core.Pt(2, 4))
	mustAgent(t, s, core.Pt(4, 0), core.Pt(0, 4))

	plans := s.PlanAllTimed()
	require.Len(t, plans, 3)
	assert.Nil(t, algo.FindFirstConflict(plans))

	total := 0
	for _, path := range plans {
		require.NotNil(t, path)
		total += len(path)
		for step, p := range path {
			assert.True(t, s.IsReserved(step, p))
		}
	}
	assert.Equal(t, total, s.Snapshot().Reservations)

	// Replanning starts from a clean table.
	s.PlanAllTimed()
	assert.Equal(t, total, s.Snapshot().Reservations)
}

func TestApplyScenario(t *testing.T) {
	sc := config.Scenario{
		Name:         "mixed",
		Obstacles:    []config.Cell{{X: 3, Y: 3}, {X: 3, Y: 4}},
		Agents:       []config.AgentSpec{{Start: config.Cell{X: 0, Y: 0}, Goal: config.Cell{X: 7, Y: 7}}},
		RandomAgents: 4,
		Seed:         99,
	}

	a, b := newSim(t, 8), newSim(t, 8)
	require.NoError(t, a.ApplyScenario(sc))
	require.NoError(t, b.ApplyScenario(sc))

	assert.Len(t, a.Agents(), 5)
	assert.Equal(t, core.Blocked, a.Snapshot().At(core.Pt(3, 4)))
	assert.Equal(t, a.Snapshot(), b.Snapshot(), "same seed, same layout")
}

func TestApplyScenarioConflict(t *testing.T) {
	s := newSim(t, 4)
	sc := config.Scenario{
		Obstacles: []config.Cell{{X: 1, Y: 1}},
		Agents:    []config.AgentSpec{{Start: config.Cell{X: 1, Y: 1}, Goal: config.Cell{X: 3, Y: 3}}},
	}
	err := s.ApplyScenario(sc)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
	assert.ErrorContains(t, err, "agent 0")
}

func TestResetRoundTrip(t *testing.T) {
	cfg := testConfig(6)
	s := NewSimulation(cfg)
	firstRun := s.RunID()

	require.NoError(t, s.SetObstacle(core.Pt(2, 2)))
	mustAgent(t, s, core.Pt(0, 0), core.Pt(5, 5))
	mustAgent(t, s, core.Pt(5, 0), core.Pt(0, 5))
	_, _, err := s.PlaceAgent(core.Pt(1, 4))
	require.NoError(t, err)
	s.PlanAllTimed()
	s.Tick()
	s.Tick()

	s.Reset()

	fresh := NewSimulation(cfg)
	assert.Equal(t, fresh.Snapshot(), s.Snapshot())
	assert.NotEqual(t, firstRun, s.RunID())

	snap := s.Snapshot()
	for _, c := range snap.Cells {
		assert.Equal(t, core.Empty, c.State)
	}
	assert.Zero(t, snap.Reservations)
	assert.Empty(t, snap.Agents)
	assert.False(t, s.HasPlans())

	// Identifiers restart with the new run.
	assert.Equal(t, core.AgentID(1), mustAgent(t, s, core.Pt(0, 0), core.Pt(1, 1)))
}
