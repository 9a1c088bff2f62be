package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/core"
)

// PlanAll computes a static spatial path from each agent's start to its
// goal, for display. It does not touch tick state. Agents without a path
// map to nil.
func (s *Simulation) PlanAll() map[core.AgentID]core.Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPathMarks()
	plans := make(map[core.AgentID]core.Path, len(s.agents))
	for _, a := range s.agents {
		plans[a.ID] = algo.AStar(s.grid, a.Start, a.Goal, s.searchOpts(KindPlan)...)
	}
	s.adoptPlans(plans, "spatial")
	return clonePlans(plans)
}

// PlanAllTimed clears the reservation table and plans every agent in
// insertion order with the timed search, so later agents route around the
// reservations of earlier ones.
func (s *Simulation) PlanAllTimed() map[core.AgentID]core.Path {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPathMarks()
	s.table.Clear()
	plans := algo.PlanPrioritized(s.grid, s.agents, s.table, s.searchOpts(KindTimed)...)
	s.adoptPlans(plans, "timed")

	if c := algo.FindFirstConflict(plans); c != nil {
		// Unreachable while every path is committed before the next search.
		s.log.WithFields(logrus.Fields{
			"agent1": c.Agent1,
			"agent2": c.Agent2,
			"cell":   c.Cell.String(),
			"t":      c.Time,
			"swap":   c.IsSwap,
		}).Error("timed plans conflict")
	}
	return clonePlans(plans)
}

func (s *Simulation) adoptPlans(plans map[core.AgentID]core.Path, kind string) {
	s.plans = plans
	if s.config.MarkPaths {
		for _, a := range s.agents {
			if p := plans[a.ID]; p != nil {
				s.markPath(p)
			}
		}
	}

	found := CountPlanned(plans)
	s.log.WithFields(logrus.Fields{
		"kind":         kind,
		"agents":       len(s.agents),
		"found":        found,
		"reservations": s.table.Len(),
	}).Info("planned all agents")
}

// clearPathMarks drops the marks of the previous plan or tick so they do
// not block the next search.
func (s *Simulation) clearPathMarks() {
	s.grid.Replace(core.PathMark, core.Empty)
}

// CountPlanned returns how many agents in plans have a path.
func CountPlanned(plans map[core.AgentID]core.Path) int {
	n := 0
	for _, p := range plans {
		if p != nil {
			n++
		}
	}
	return n
}

// Plans returns the last static plans, or nil if none were computed.
func (s *Simulation) Plans() map[core.AgentID]core.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlans(s.plans)
}

// HasPlans reports whether PlanAll or PlanAllTimed ran since the last reset.
func (s *Simulation) HasPlans() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans != nil
}

// IsReserved queries the reservation table written by PlanAllTimed.
func (s *Simulation) IsReserved(step int, p core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.IsReserved(step, p)
}

func clonePlans(plans map[core.AgentID]core.Path) map[core.AgentID]core.Path {
	if plans == nil {
		return nil
	}
	out := make(map[core.AgentID]core.Path, len(plans))
	for id, p := range plans {
		if p != nil {
			p = append(core.Path(nil), p...)
		}
		out[id] = p
	}
	return out
}
