package algo

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

// ReservationTable maps a time step to the cells claimed at that step.
// It also records the moves arriving at each step so that head-on swaps
// can be refused. A step that was never written has no reservations.
type ReservationTable struct {
	cells map[int]mapset.Set[core.Point]
	moves map[int]mapset.Set[core.Move]
	pairs int
	last  int
}

// NewReservationTable creates an empty table.
func NewReservationTable() *ReservationTable {
	return &ReservationTable{
		cells: make(map[int]mapset.Set[core.Point]),
		moves: make(map[int]mapset.Set[core.Move]),
		last:  -1,
	}
}

// Reserve claims cell p at step. Reserving the same pair twice is a no-op.
func (r *ReservationTable) Reserve(step int, p core.Point) {
	if step < 0 {
		panic(fmt.Sprintf("algo: negative reservation step %d", step))
	}
	set, ok := r.cells[step]
	if !ok {
		set = mapset.New[core.Point]()
		r.cells[step] = set
	}
	if set.Has(p) {
		return
	}
	set.Put(p)
	r.pairs++
	if step > r.last {
		r.last = step
	}
}

// IsReserved reports whether p is claimed at step.
func (r *ReservationTable) IsReserved(step int, p core.Point) bool {
	set, ok := r.cells[step]
	return ok && set.Has(p)
}

// ReserveMove records that some agent performs m arriving at step.
// Waits are not recorded.
func (r *ReservationTable) ReserveMove(step int, m core.Move) {
	if m.IsWait() {
		return
	}
	set, ok := r.moves[step]
	if !ok {
		set = mapset.New[core.Move]()
		r.moves[step] = set
	}
	set.Put(m)
}

// IsMoveReserved reports whether m arriving at step was recorded.
func (r *ReservationTable) IsMoveReserved(step int, m core.Move) bool {
	set, ok := r.moves[step]
	return ok && set.Has(m)
}

// Commit writes every (step, cell) pair of path, and its moves, into the
// table. path[i] is claimed at step i.
func (r *ReservationTable) Commit(path core.Path) {
	for step, p := range path {
		r.Reserve(step, p)
		if step > 0 {
			r.ReserveMove(step, core.Move{From: path[step-1], To: p})
		}
	}
}

// Clear empties the table.
func (r *ReservationTable) Clear() {
	r.cells = make(map[int]mapset.Set[core.Point])
	r.moves = make(map[int]mapset.Set[core.Move])
	r.pairs = 0
	r.last = -1
}

// Len returns the number of reserved (step, cell) pairs.
func (r *ReservationTable) Len() int { return r.pairs }

// LastStep returns the highest reserved step, or -1 for an empty table.
func (r *ReservationTable) LastStep() int { return r.last }
