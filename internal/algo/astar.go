package algo

import (
	"container/heap"
	"fmt"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

// astarNode for priority queue.
type astarNode[N comparable] struct {
	state N
	g     int    // Cost so far
	f     int    // g + h
	seq   uint64 // insertion order, breaks f ties
	index int    // heap index
}

// astarHeap implements heap.Interface ordered by (f, seq).
type astarHeap[N comparable] []*astarNode[N]

func (h astarHeap[N]) Len() int { return len(h) }
func (h astarHeap[N]) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h astarHeap[N]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap[N]) Push(x any) {
	n := x.(*astarNode[N])
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap[N]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// openSet wraps the heap with a monotonically increasing sequence counter.
type openSet[N comparable] struct {
	h   astarHeap[N]
	seq uint64
}

func (o *openSet[N]) push(state N, g, f int) {
	o.seq++
	heap.Push(&o.h, &astarNode[N]{state: state, g: g, f: f, seq: o.seq})
}

func (o *openSet[N]) pop() *astarNode[N] {
	return heap.Pop(&o.h).(*astarNode[N])
}

func (o *openSet[N]) empty() bool { return o.h.Len() == 0 }

// AStar finds a shortest 4-connected path from start to goal on the grid,
// ignoring time. The result includes both endpoints; nil means no path.
// The grid is only read.
func AStar(g *core.Grid, start, goal core.Point, opts ...Option) core.Path {
	o := applyOptions(opts)
	if !g.InBounds(start) || !g.InBounds(goal) {
		o.Tracer.OnDone(false, 0)
		return nil
	}

	open := &openSet[core.Point]{}
	open.push(start, 0, Manhattan(start, goal))

	closed := make(map[core.Point]bool)
	cameFrom := make(map[core.Point]core.Point)
	gScore := map[core.Point]int{start: 0}
	expanded := 0

	for !open.empty() {
		current := open.pop()

		// Stale entry left behind by an improvement.
		if closed[current.state] || current.g > gScore[current.state] {
			continue
		}

		if current.state == goal {
			o.Tracer.OnDone(true, expanded)
			return reconstructPath(cameFrom, start, goal)
		}

		closed[current.state] = true
		expanded++
		o.Tracer.OnExpand(core.TimedCell{P: current.state, T: current.g}, current.g, current.f)

		for _, neighbor := range g.Neighbors(current.state, o.Blocks) {
			if closed[neighbor] {
				continue
			}
			tentative := current.g + 1
			if known, ok := gScore[neighbor]; ok && tentative >= known {
				continue
			}
			cameFrom[neighbor] = current.state
			gScore[neighbor] = tentative
			open.push(neighbor, tentative, tentative+Manhattan(neighbor, goal))
		}
	}

	o.Tracer.OnDone(false, expanded)
	return nil // No path found
}

// reconstructPath walks predecessors from end back to start.
func reconstructPath[N comparable](cameFrom map[N]N, start, end N) []N {
	path := []N{end}
	for current := end; current != start; {
		prev, ok := cameFrom[current]
		if !ok {
			panic(fmt.Sprintf("algo: broken predecessor chain at %v", current))
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
