package algo

import (
	"github.com/elektrokombinacija/dmapf/internal/core"
)

// PlanPrioritized plans every agent in the given order with the timed
// search. Each committed path is reserved before the next agent plans, so
// later agents route around earlier ones. Agents without a path map to nil.
func PlanPrioritized(g *core.Grid, agents []core.Agent, table *ReservationTable, opts ...Option) map[core.AgentID]core.Path {
	paths := make(map[core.AgentID]core.Path, len(agents))
	for _, agent := range agents {
		paths[agent.ID] = TimedAStar(g, agent.Start, agent.Goal, table, opts...)
	}
	return paths
}
