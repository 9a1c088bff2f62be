package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/core"
)

// TickResult reports one tick.
type TickResult struct {
	TickIndex int  // Ticks executed so far, including this one
	MovedAny  bool // At least one agent moved
	Moved     int  // Agents that moved
	Arrived   int  // Agents on their goal after the tick
	Agents    int
	Halted    bool // Nobody moved; a runner should stop
}

// maskedCell remembers a cell's state before it was masked.
type maskedCell struct {
	p     core.Point
	prior core.CellState
}

// Tick advances every agent by at most one cell. Agents are processed in
// insertion order; each re-plans with the spatial search against the
// current cells of all other agents, which are masked as occupied for the
// duration of its search. A tick in which nobody moves halts the
// simulation. Tick still runs when halted.
func (s *Simulation) Tick() TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPathMarks()

	var res TickResult
	for _, a := range s.agents {
		if s.stepAgent(a) {
			res.Moved++
		}
	}
	s.ticks++

	for _, a := range s.agents {
		if s.position(a) == a.Goal {
			res.Arrived++
		}
	}
	res.TickIndex = s.ticks
	res.MovedAny = res.Moved > 0
	res.Agents = len(s.agents)
	s.halted = !res.MovedAny
	res.Halted = s.halted

	entry := s.log.WithFields(logrus.Fields{
		"tick":    res.TickIndex,
		"moved":   res.Moved,
		"arrived": res.Arrived,
	})
	if res.Halted {
		entry.Info("simulation halted")
	} else {
		entry.Debug("tick")
	}

	if s.config.Observer != nil {
		s.config.Observer.ObserveTick(res)
	}
	return res
}

// stepAgent re-plans one agent, marks the new path and moves the agent onto
// its next cell when that cell is free. It reports whether the agent moved.
func (s *Simulation) stepAgent(a core.Agent) bool {
	cur := s.position(a)
	if cur == a.Goal {
		return false
	}

	restore := s.maskOthers(a.ID)
	defer restore()

	path := algo.AStar(s.grid, cur, a.Goal, s.searchOpts(KindTick)...)
	if len(path) < 2 {
		return false
	}

	tr := s.tracks[a.ID]
	tr.path = path
	tr.progress = 0
	if s.config.MarkPaths {
		s.markPath(path)
	}

	next := path[1]
	if st := s.grid.State(next); st == core.Occupied || st == core.Blocked {
		return false
	}

	if st := s.grid.State(cur); st != core.Start && st != core.Goal {
		s.grid.SetState(cur, core.Empty)
	}
	if s.grid.State(next) != core.Goal {
		s.grid.SetState(next, core.Occupied)
	}
	tr.progress = 1
	return true
}

// maskOthers marks the current cell of every agent except self as
// occupied. The returned func restores the prior states and must run on
// every exit path.
func (s *Simulation) maskOthers(self core.AgentID) func() {
	masked := make([]maskedCell, 0, len(s.agents))
	for _, other := range s.agents {
		if other.ID == self {
			continue
		}
		p := s.position(other)
		masked = append(masked, maskedCell{p: p, prior: s.grid.State(p)})
		s.grid.SetState(p, core.Occupied)
	}
	return func() {
		for i := len(masked) - 1; i >= 0; i-- {
			s.grid.SetState(masked[i].p, masked[i].prior)
		}
	}
}

// markPath marks the empty cells strictly between the first and last cell
// of path.
func (s *Simulation) markPath(path core.Path) {
	for i := 1; i < len(path)-1; i++ {
		if s.grid.State(path[i]) == core.Empty {
			s.grid.SetState(path[i], core.PathMark)
		}
	}
}
