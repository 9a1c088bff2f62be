package algo

import (
	"github.com/elektrokombinacija/dmapf/internal/core"
)

// TimedAStar finds a shortest path through the time-expanded graph of
// (cell, step) pairs starting at step 0. Each step either moves to a free
// 4-neighbor or waits in place; both cost 1. A successor is refused when
// its cell is reserved at the arrival step or when the opposite move
// arrives at the same step (a head-on swap). The goal test ignores time.
//
// On success every (step, cell) pair of the path is committed to table.
// Returns nil when no path exists within the time horizon.
func TimedAStar(g *core.Grid, start, goal core.Point, table *ReservationTable, opts ...Option) core.Path {
	o := applyOptions(opts)
	if !g.InBounds(start) || !g.InBounds(goal) {
		o.Tracer.OnDone(false, 0)
		return nil
	}

	horizon := o.MaxSteps
	if horizon <= 0 {
		horizon = DefaultHorizon(g, table)
	}

	startNode := core.TimedCell{P: start, T: 0}
	open := &openSet[core.TimedCell]{}
	open.push(startNode, 0, Manhattan(start, goal))

	closed := make(map[core.TimedCell]bool)
	cameFrom := make(map[core.TimedCell]core.TimedCell)
	gScore := map[core.TimedCell]int{startNode: 0}
	expanded := 0

	for !open.empty() {
		current := open.pop()
		if closed[current.state] || current.g > gScore[current.state] {
			continue
		}

		// Goal reached when spatial cell matches
		if current.state.P == goal {
			o.Tracer.OnDone(true, expanded)
			nodes := reconstructPath(cameFrom, startNode, current.state)
			path := make(core.Path, len(nodes))
			for i, n := range nodes {
				path[i] = n.P
			}
			table.Commit(path)
			return path
		}

		closed[current.state] = true
		expanded++
		o.Tracer.OnExpand(current.state, current.g, current.f)

		if current.state.T >= horizon {
			o.Tracer.OnPrune(current.state, core.TimedCell{P: current.state.P, T: current.state.T + 1}, PruneHorizon)
			continue
		}

		for _, next := range timedNeighbors(g, current.state, table, o) {
			if closed[next] {
				continue
			}
			tentative := current.g + 1
			if known, ok := gScore[next]; ok && tentative >= known {
				continue
			}
			cameFrom[next] = current.state
			gScore[next] = tentative
			open.push(next, tentative, tentative+Manhattan(next.P, goal))
		}
	}

	o.Tracer.OnDone(false, expanded)
	return nil
}

// timedNeighbors returns the spatial moves plus the wait action that are
// free in the reservation table at t+1.
func timedNeighbors(g *core.Grid, node core.TimedCell, table *ReservationTable, o Options) []core.TimedCell {
	nextT := node.T + 1
	candidates := append(g.Neighbors(node.P, o.Blocks), node.P) // include 'wait'

	next := make([]core.TimedCell, 0, len(candidates))
	for _, c := range candidates {
		succ := core.TimedCell{P: c, T: nextT}
		if table.IsReserved(nextT, c) {
			o.Tracer.OnPrune(node, succ, PruneReserved)
			continue
		}
		// Someone moving from c into our cell during the same step.
		if c != node.P && table.IsMoveReserved(nextT, core.Move{From: c, To: node.P}) {
			o.Tracer.OnPrune(node, succ, PruneSwap)
			continue
		}
		next = append(next, succ)
	}
	return next
}

// DefaultHorizon bounds the timed search: once every reservation has
// passed the grid is static, and any reachable goal is at most one cell
// count further away.
func DefaultHorizon(g *core.Grid, table *ReservationTable) int {
	return table.LastStep() + 1 + g.Len()
}
