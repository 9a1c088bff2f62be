package core

// Path is a sequence of cells; index i is the cell occupied at step i.
type Path []Point

// Last returns the final cell. The path must be non-empty.
func (p Path) Last() Point {
	return p[len(p)-1]
}

// At returns the cell at step t, holding the last cell after the path ends.
func (p Path) At(t int) Point {
	if t >= len(p) {
		return p.Last()
	}
	if t < 0 {
		return p[0]
	}
	return p[t]
}

// Moves returns the number of steps that change cell.
func (p Path) Moves() int {
	n := 0
	for i := 1; i < len(p); i++ {
		if p[i] != p[i-1] {
			n++
		}
	}
	return n
}

// TimedCell is a node in the time-expanded graph.
// Two TimedCells are equal iff both coordinate and time match.
type TimedCell struct {
	P Point
	T int
}

// Move is a directed transition between two cells.
type Move struct {
	From, To Point
}

// Reverse returns the opposite move.
func (m Move) Reverse() Move {
	return Move{From: m.To, To: m.From}
}

// IsWait reports whether the move stays in place.
func (m Move) IsWait() bool {
	return m.From == m.To
}
