package sim

import (
	"github.com/elektrokombinacija/dmapf/internal/core"
)

// AgentState is an agent as seen from outside a tick.
type AgentState struct {
	ID       core.AgentID
	Start    core.Point
	Goal     core.Point
	Position core.Point
	Path     core.Path // Path adopted on the last tick it re-planned
	Progress int
	AtGoal   bool
}

// Snapshot is a deep copy of the simulation state.
type Snapshot struct {
	Size         int
	Ticks        int
	Halted       bool
	Cells        []core.Cell // row-major
	Agents       []AgentState
	Plans        map[core.AgentID]core.Path
	Reservations int
	Occupants    []int // agents standing on each cell, row-major
	Pending      *core.Point
}

// Snapshot copies the full state. Two simulations in the same state
// produce equal snapshots, regardless of run ID.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Size:         s.grid.Size(),
		Ticks:        s.ticks,
		Halted:       s.halted,
		Cells:        s.grid.Cells(),
		Plans:        clonePlans(s.plans),
		Reservations: s.table.Len(),
		Occupants:    make([]int, s.grid.Len()),
	}
	for _, a := range s.agents {
		pos := s.position(a)
		st := AgentState{
			ID:       a.ID,
			Start:    a.Start,
			Goal:     a.Goal,
			Position: pos,
			AtGoal:   pos == a.Goal,
		}
		if tr := s.tracks[a.ID]; tr != nil && tr.path != nil {
			st.Path = append(core.Path(nil), tr.path...)
			st.Progress = tr.progress
		}
		snap.Agents = append(snap.Agents, st)
		snap.Occupants[s.grid.Index(pos)]++
	}
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	return snap
}

// At returns the state of cell p in the snapshot.
func (s Snapshot) At(p core.Point) core.CellState {
	return s.Cells[p.Y*s.Size+p.X].State
}
