// Package sim owns one grid simulation: its agents, their paths, the
// reservation table and the per-tick re-planning loop.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/logger"
)

var (
	ErrInvalidPlacement = errors.New("sim: cell is not eligible")
	ErrOutOfBounds      = errors.New("sim: cell out of bounds")
	ErrUnknownAgent     = errors.New("sim: unknown agent")
	ErrGridFull         = errors.New("sim: not enough free cells")
)

// Search kinds reported to the Observer.
const (
	KindTick  = "tick"
	KindPlan  = "plan"
	KindTimed = "timed"
)

// minRandomFree is the number of empty cells AddRandomAgent needs to exceed.
const minRandomFree = 10

// minRandomSpread is the smallest Chebyshev distance between a random
// agent's start and goal.
const minRandomSpread = 3

// Observer receives tick results and per-search tracers.
type Observer interface {
	ObserveTick(res TickResult)
	SearchTracer(kind string) algo.Tracer
}

// SimulationConfig configures a simulation.
type SimulationConfig struct {
	// Grid side length
	Size int

	// Treat path-marked cells as impassable
	ExcludePathCells bool

	// Mark planned paths on the grid
	MarkPaths bool

	// Timed search horizon; 0 lets the search pick one
	MaxTimeSteps int

	// Optional search tracer, e.g. algo.LogTracer
	Tracer algo.Tracer

	// Optional metrics sink
	Observer Observer

	// Base log entry; defaults to the global logger
	Logger *logrus.Entry
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Size:      12,
		MarkPaths: true,
	}
}

// ConfigFrom maps file settings onto a simulation configuration.
func ConfigFrom(c config.Config) SimulationConfig {
	return SimulationConfig{
		Size:             c.Grid.Size,
		ExcludePathCells: c.Sim.ExcludePathCells,
		MarkPaths:        c.Sim.MarkPaths,
		MaxTimeSteps:     c.Sim.MaxTimeSteps,
	}
}

// track is an agent's current path and how far along it the agent is.
type track struct {
	path     core.Path
	progress int
}

// Simulation is the explicit simulation context. All methods are safe for
// concurrent use; ticks are still processed one at a time.
type Simulation struct {
	mu sync.Mutex

	config SimulationConfig
	log    *logrus.Entry

	runID   uuid.UUID
	grid    *core.Grid
	agents  []core.Agent
	nextID  core.AgentID
	tracks  map[core.AgentID]*track
	plans   map[core.AgentID]core.Path
	table   *algo.ReservationTable
	ticks   int
	halted  bool
	pending *core.Point
}

// NewSimulation creates an empty simulation. It panics if config.Size < 1.
func NewSimulation(config SimulationConfig) *Simulation {
	base := config.Logger
	if base == nil {
		base = logrus.NewEntry(logger.Log)
	}
	s := &Simulation{
		config: config,
		grid:   core.NewGrid(config.Size),
		table:  algo.NewReservationTable(),
	}
	s.init()
	s.log = base.WithField("component", "sim")
	return s
}

// init puts every piece of run state in its initial form.
func (s *Simulation) init() {
	s.runID = uuid.New()
	s.grid.Clear()
	s.agents = nil
	s.nextID = 1
	s.tracks = make(map[core.AgentID]*track)
	s.plans = nil
	s.table.Clear()
	s.ticks = 0
	s.halted = false
	s.pending = nil
}

// Reset clears all agents, paths and reservations, returns every cell to
// empty and starts a new run ID.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.runID
	s.init()
	s.log.WithFields(logrus.Fields{
		"previous_run": old.String(),
		"run_id":       s.runID.String(),
	}).Info("simulation reset")
}

// RunID identifies the current run.
func (s *Simulation) RunID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Size returns the grid side length.
func (s *Simulation) Size() int { return s.grid.Size() }

// Halted reports whether the last tick moved nobody.
func (s *Simulation) Halted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// Ticks returns the number of ticks executed.
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Agents returns the agents in insertion order.
func (s *Simulation) Agents() []core.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Position returns where the agent currently stands.
func (s *Simulation) Position(id core.AgentID) (core.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agent(id)
	if !ok {
		return core.Point{}, fmt.Errorf("agent %d: %w", id, ErrUnknownAgent)
	}
	return s.position(a), nil
}

func (s *Simulation) agent(id core.AgentID) (core.Agent, bool) {
	for _, a := range s.agents {
		if a.ID == id {
			return a, true
		}
	}
	return core.Agent{}, false
}

// position is path[min(progress, len-1)], or the start before any path.
func (s *Simulation) position(a core.Agent) core.Point {
	tr := s.tracks[a.ID]
	if tr == nil || len(tr.path) == 0 {
		return a.Start
	}
	return tr.path.At(tr.progress)
}

func (s *Simulation) blocks() core.BlockMask {
	if s.config.ExcludePathCells {
		return core.StrictBlocks
	}
	return core.DefaultBlocks
}

// searchOpts builds the options for one search of the given kind.
func (s *Simulation) searchOpts(kind string) []algo.Option {
	opts := []algo.Option{algo.WithBlocks(s.blocks())}

	var tracers algo.MultiTracer
	if s.config.Tracer != nil {
		tracers = append(tracers, s.config.Tracer)
	}
	if s.config.Observer != nil {
		tracers = append(tracers, s.config.Observer.SearchTracer(kind))
	}
	if len(tracers) > 0 {
		opts = append(opts, algo.WithTracer(tracers))
	}

	if kind == KindTimed && s.config.MaxTimeSteps > 0 {
		opts = append(opts, algo.WithMaxSteps(s.config.MaxTimeSteps))
	}
	return opts
}

func (s *Simulation) checkBounds(p core.Point) error {
	if !s.grid.InBounds(p) {
		return fmt.Errorf("%v: %w", p, ErrOutOfBounds)
	}
	return nil
}

func (s *Simulation) checkFree(p core.Point) error {
	if err := s.checkBounds(p); err != nil {
		return err
	}
	if !s.grid.Cell(p).Free() {
		return fmt.Errorf("%v is %s: %w", p, s.grid.State(p), ErrInvalidPlacement)
	}
	return nil
}

// CreateAgent adds an agent. Both cells must be empty and distinct; on
// error nothing changes.
func (s *Simulation) CreateAgent(start, goal core.Point) (core.AgentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAgent(start, goal)
}

func (s *Simulation) createAgent(start, goal core.Point) (core.AgentID, error) {
	if err := s.checkFree(start); err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	if err := s.checkFree(goal); err != nil {
		return 0, fmt.Errorf("goal: %w", err)
	}
	if start == goal {
		return 0, fmt.Errorf("start equals goal %v: %w", start, ErrInvalidPlacement)
	}
	return s.addAgent(start, goal), nil
}

// addAgent writes the markers and registers the agent without checks.
func (s *Simulation) addAgent(start, goal core.Point) core.AgentID {
	id := s.nextID
	s.nextID++

	s.grid.SetState(start, core.Start)
	s.grid.SetState(goal, core.Goal)
	s.agents = append(s.agents, core.Agent{ID: id, Start: start, Goal: goal})
	s.tracks[id] = &track{}

	s.log.WithFields(logrus.Fields{
		"agent": id,
		"start": start.String(),
		"goal":  goal.String(),
	}).Debug("agent created")
	return id
}

// PlaceAgent is the two-tap placement entry point. The first tap marks an
// empty cell as a pending start. The second tap on another empty cell
// marks the goal and creates the agent. Tapping the pending start again
// cancels it.
func (s *Simulation) PlaceAgent(p core.Point) (id core.AgentID, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		if err := s.checkFree(p); err != nil {
			return 0, false, err
		}
		s.grid.SetState(p, core.Start)
		s.pending = &p
		return 0, false, nil
	}

	start := *s.pending
	if p == start {
		s.cancelPending()
		return 0, false, nil
	}
	if err := s.checkFree(p); err != nil {
		return 0, false, err
	}
	s.pending = nil
	return s.addAgent(start, p), true, nil
}

// Pending returns the pending start cell, if any.
func (s *Simulation) Pending() (core.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return core.Point{}, false
	}
	return *s.pending, true
}

// CancelPending reverts a pending start marker.
func (s *Simulation) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPending()
}

func (s *Simulation) cancelPending() {
	if s.pending == nil {
		return
	}
	s.grid.SetState(*s.pending, core.Empty)
	s.pending = nil
}

// AddRandomAgent creates an agent on random empty cells whose start and
// goal are at least three cells apart. It needs more than ten empty cells.
func (s *Simulation) AddRandomAgent(rng *rand.Rand) (core.AgentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRandomAgent(rng)
}

func (s *Simulation) addRandomAgent(rng *rand.Rand) (core.AgentID, error) {
	free := s.grid.PointsIn(core.Empty)
	if len(free) <= minRandomFree {
		return 0, fmt.Errorf("%d empty cells: %w", len(free), ErrGridFull)
	}
	start := free[rng.Intn(len(free))]

	var goals []core.Point
	for _, p := range free {
		if core.Chebyshev(start, p) >= minRandomSpread {
			goals = append(goals, p)
		}
	}
	if len(goals) == 0 {
		return 0, fmt.Errorf("no goal far enough from %v: %w", start, ErrGridFull)
	}
	return s.addAgent(start, goals[rng.Intn(len(goals))]), nil
}

// SetObstacle turns an empty cell into an obstacle.
func (s *Simulation) SetObstacle(p core.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setObstacle(p)
}

func (s *Simulation) setObstacle(p core.Point) error {
	if err := s.checkFree(p); err != nil {
		return err
	}
	s.grid.SetState(p, core.Blocked)
	return nil
}

// ClearObstacle turns an obstacle back into an empty cell.
func (s *Simulation) ClearObstacle(p core.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBounds(p); err != nil {
		return err
	}
	if st := s.grid.State(p); st != core.Blocked {
		return fmt.Errorf("%v is %s: %w", p, st, ErrInvalidPlacement)
	}
	s.grid.SetState(p, core.Empty)
	return nil
}

// ApplyScenario places the scenario's obstacles, then its agents, then its
// random agents. It stops at the first failure; cells placed before the
// failure stay placed.
func (s *Simulation) ApplyScenario(sc config.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range sc.Obstacles {
		if err := s.setObstacle(core.Pt(c.X, c.Y)); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	for i, a := range sc.Agents {
		if _, err := s.createAgent(core.Pt(a.Start.X, a.Start.Y), core.Pt(a.Goal.X, a.Goal.Y)); err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
	}
	if sc.RandomAgents > 0 {
		rng := rand.New(rand.NewSource(sc.Seed))
		for i := 0; i < sc.RandomAgents; i++ {
			if _, err := s.addRandomAgent(rng); err != nil {
				return fmt.Errorf("random agent %d: %w", i, err)
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"scenario":  sc.Name,
		"obstacles": len(sc.Obstacles),
		"agents":    len(s.agents),
	}).Info("scenario applied")
	return nil
}
