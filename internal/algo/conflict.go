// Package algo implements single-agent and time-expanded grid search.
package algo

import (
	"slices"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

// Conflict represents a collision between two agents.
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Cell           core.Point
	Time           int  // Step at which the collision happens
	IsSwap         bool // Swap conflict vs vertex conflict
	// For swap conflicts: Agent1's move
	Move core.Move
}

// sortedAgentIDs returns sorted agent IDs from paths map.
func sortedAgentIDs(paths map[core.AgentID]core.Path) []core.AgentID {
	ids := make([]core.AgentID, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FindAllConflicts detects vertex and swap conflicts between paths, ordered
// by time. Two paths are compared only while both agents are travelling;
// an agent that has reached the end of its path holds no reservation.
func FindAllConflicts(paths map[core.AgentID]core.Path) []*Conflict {
	ids := sortedAgentIDs(paths)

	maxLen := 0
	for _, p := range paths {
		maxLen = max(maxLen, len(p))
	}

	var conflicts []*Conflict
	for t := 0; t < maxLen; t++ {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				p1, p2 := paths[ids[i]], paths[ids[j]]
				if t >= len(p1) || t >= len(p2) {
					continue
				}

				if p1[t] == p2[t] {
					conflicts = append(conflicts, &Conflict{
						Agent1: ids[i],
						Agent2: ids[j],
						Cell:   p1[t],
						Time:   t,
					})
					continue
				}

				// Swap conflict: opposite directions on the same edge.
				if t > 0 && p1[t] != p1[t-1] && p1[t-1] == p2[t] && p1[t] == p2[t-1] {
					conflicts = append(conflicts, &Conflict{
						Agent1: ids[i],
						Agent2: ids[j],
						Cell:   p1[t],
						Time:   t,
						IsSwap: true,
						Move:   core.Move{From: p1[t-1], To: p1[t]},
					})
				}
			}
		}
	}
	return conflicts
}

// FindFirstConflict returns the earliest conflict, or nil.
func FindFirstConflict(paths map[core.AgentID]core.Path) *Conflict {
	all := FindAllConflicts(paths)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}
