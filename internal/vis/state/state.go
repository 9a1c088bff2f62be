// Package state manages the visualization state.
package state

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/logger"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

// State holds all visualization state. It is only touched from the
// window's event loop.
type State struct {
	Sim   *sim.Simulation
	Clock *TickClock
	Edit  *EditState

	Last   sim.TickResult // Result of the latest tick
	Status string         // One-line message for the status bar

	rng *rand.Rand
	log *logrus.Entry
}

// NewState creates a new visualization state around s.
func NewState(s *sim.Simulation, interval time.Duration, seed int64) *State {
	return &State{
		Sim:    s,
		Clock:  NewTickClock(interval),
		Edit:   NewEditState(),
		Status: "tap two cells to place an agent",
		rng:    rand.New(rand.NewSource(seed)),
		log:    logger.For("vis"),
	}
}

func (s *State) fail(what string, err error) {
	s.Status = fmt.Sprintf("%s: %v", what, err)
	s.log.WithError(err).Debug(what + " rejected")
}

// Press handles a primary press on cell p.
func (s *State) Press(p core.Point) {
	if s.Edit.Mode == ModePlace {
		s.place(p)
		return
	}
	s.Edit.BeginStroke()
	s.Edit.Paint(s.Sim, p)
}

// Drag extends the current obstacle stroke to p.
func (s *State) Drag(p core.Point) {
	s.Edit.Paint(s.Sim, p)
}

// Release ends the current obstacle stroke.
func (s *State) Release() {
	s.Edit.EndStroke()
}

func (s *State) place(p core.Point) {
	id, created, err := s.Sim.PlaceAgent(p)
	switch {
	case err != nil:
		s.fail("place", err)
	case created:
		s.Status = fmt.Sprintf("agent %d created", id)
	default:
		if _, ok := s.Sim.Pending(); ok {
			s.Status = fmt.Sprintf("start %v set, tap a goal", p)
		} else {
			s.Status = "placement cancelled"
		}
	}
}

// SetMode switches the edit mode, dropping a pending start.
func (s *State) SetMode(m EditMode) {
	s.Sim.CancelPending()
	s.Edit.Mode = m
	s.Status = m.String() + " mode"
}

// CancelPending drops a pending start.
func (s *State) CancelPending() {
	s.Sim.CancelPending()
	s.Status = "placement cancelled"
}

// AddRandomAgent creates an agent on random cells.
func (s *State) AddRandomAgent() {
	id, err := s.Sim.AddRandomAgent(s.rng)
	if err != nil {
		s.fail("random agent", err)
		return
	}
	s.Status = fmt.Sprintf("agent %d created", id)
}

// Plan plans every agent spatially.
func (s *State) Plan() {
	plans := s.Sim.PlanAll()
	s.Status = fmt.Sprintf("planned %d of %d agents", sim.CountPlanned(plans), len(s.Sim.Agents()))
}

// PlanTimed plans every agent against the reservation table.
func (s *State) PlanTimed() {
	plans := s.Sim.PlanAllTimed()
	s.Status = fmt.Sprintf("timed plan for %d of %d agents", sim.CountPlanned(plans), len(s.Sim.Agents()))
}

// Step issues one tick.
func (s *State) Step() {
	s.tick()
}

func (s *State) tick() {
	s.Last = s.Sim.Tick()
	s.Status = fmt.Sprintf("tick %d: %d moved, %d/%d arrived",
		s.Last.TickIndex, s.Last.Moved, s.Last.Arrived, s.Last.Agents)
	if s.Last.Halted {
		s.Clock.Stop()
		s.Status = fmt.Sprintf("halted after %d ticks", s.Last.TickIndex)
	}
}

// ToggleRun starts or stops the tick clock. Starting plans all agents
// first when nothing is planned.
func (s *State) ToggleRun(now time.Time) {
	if !s.Clock.Running && !s.Sim.HasPlans() {
		s.Sim.PlanAll()
	}
	s.Clock.Toggle(now)
	if s.Clock.Running {
		s.Status = "running"
	} else {
		s.Status = "stopped"
	}
}

// Advance ticks the simulation if the clock says a tick is due. It
// reports whether a tick happened.
func (s *State) Advance(now time.Time) bool {
	if !s.Clock.Due(now) {
		return false
	}
	s.tick()
	return true
}

// Reset stops the clock and clears the grid, agents and edit history.
func (s *State) Reset() {
	s.Clock.Stop()
	s.Sim.Reset()
	s.Edit.Forget()
	s.Last = sim.TickResult{}
	s.Status = "reset"
}

// Undo reverts the last obstacle stroke.
func (s *State) Undo() {
	action, err := s.Edit.Undo(s.Sim)
	if action == nil {
		return
	}
	if err != nil {
		s.fail("undo "+action.Description(), err)
		return
	}
	s.Status = "undo " + action.Description()
}

// Redo reapplies the last undone obstacle stroke.
func (s *State) Redo() {
	action, err := s.Edit.Redo(s.Sim)
	if action == nil {
		return
	}
	if err != nil {
		s.fail("redo "+action.Description(), err)
		return
	}
	s.Status = "redo " + action.Description()
}
