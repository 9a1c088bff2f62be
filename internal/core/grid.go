package core

// Grid is a fixed-size square grid of cells in row-major order.
type Grid struct {
	size  int
	cells []Cell
}

// NewGrid creates a size x size grid with every cell empty.
func NewGrid(size int) *Grid {
	if size < 1 {
		panic("core: grid size must be positive")
	}
	g := &Grid{
		size:  size,
		cells: make([]Cell, size*size),
	}
	for i := range g.cells {
		g.cells[i] = Cell{Point: g.PointAt(i), State: Empty}
	}
	return g
}

// Size returns the side length.
func (g *Grid) Size() int { return g.size }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds checks 0 <= x,y < size.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

// Index converts a coordinate to its flat index (y*size + x).
func (g *Grid) Index(p Point) int {
	return p.Y*g.size + p.X
}

// PointAt converts a flat index back to a coordinate.
func (g *Grid) PointAt(idx int) Point {
	return Point{X: idx % g.size, Y: idx / g.size}
}

// Cell returns the cell at p. p must be in bounds.
func (g *Grid) Cell(p Point) Cell {
	return g.cells[g.Index(p)]
}

// State returns the state of the cell at p. p must be in bounds.
func (g *Grid) State(p Point) CellState {
	return g.cells[g.Index(p)].State
}

// SetState overwrites the state of the cell at p. p must be in bounds.
func (g *Grid) SetState(p Point, s CellState) {
	g.cells[g.Index(p)].State = s
}

// Cells returns a copy of all cells in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Neighbors returns the in-bounds up/down/left/right cells of p whose state
// is not in blocks.
func (g *Grid) Neighbors(p Point, blocks BlockMask) []Point {
	neighbors := make([]Point, 0, len(Directions))
	for _, d := range Directions {
		n := p.Add(d)
		if !g.InBounds(n) {
			continue
		}
		if blocks.Has(g.State(n)) {
			continue
		}
		neighbors = append(neighbors, n)
	}
	return neighbors
}

// Count returns how many cells are in state s.
func (g *Grid) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c.State == s {
			n++
		}
	}
	return n
}

// PointsIn returns the coordinates of every cell in state s, row-major.
func (g *Grid) PointsIn(s CellState) []Point {
	var pts []Point
	for _, c := range g.cells {
		if c.State == s {
			pts = append(pts, c.Point)
		}
	}
	return pts
}

// Replace sets every cell in state from to state to.
func (g *Grid) Replace(from, to CellState) {
	for i := range g.cells {
		if g.cells[i].State == from {
			g.cells[i].State = to
		}
	}
}

// Clear returns every cell to empty.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].State = Empty
	}
}
