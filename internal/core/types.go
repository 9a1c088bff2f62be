// Package core defines domain models for grid multi-agent pathfinding.
package core

import "fmt"

// CellState annotates a cell for occupancy and display.
type CellState int

const (
	Empty    CellState = iota // Free cell
	Occupied                  // An agent stands here
	Blocked                   // Obstacle
	Start                     // Agent start marker
	Goal                      // Agent goal marker
	PathMark                  // Part of a planned path (display only)
)

func (s CellState) String() string {
	if s < Empty || s > PathMark {
		return fmt.Sprintf("CellState(%d)", int(s))
	}
	return [...]string{"empty", "occupied", "blocked", "start", "goal", "path"}[s]
}

// BlockMask selects which cell states a neighbor query treats as impassable.
type BlockMask uint8

// Bit returns the mask bit for a single state.
func Bit(s CellState) BlockMask {
	return 1 << uint(s)
}

// MaskOf builds a mask from states.
func MaskOf(states ...CellState) BlockMask {
	var m BlockMask
	for _, s := range states {
		m |= Bit(s)
	}
	return m
}

// Has reports whether the mask blocks state s.
func (m BlockMask) Has(s CellState) bool {
	return m&Bit(s) != 0
}

var (
	// DefaultBlocks excludes agents and obstacles.
	DefaultBlocks = MaskOf(Occupied, Blocked)

	// StrictBlocks additionally excludes planned path cells.
	StrictBlocks = MaskOf(Occupied, Blocked, PathMark)
)

// Point is a grid coordinate. It is the identity of a cell.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Directions are the 4-connected moves in probe order: up, down, left, right.
var Directions = [4]Point{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// Cell is a coordinate with its current state.
type Cell struct {
	Point
	State CellState
}

// Free reports whether the cell can receive a new marker or obstacle.
func (c Cell) Free() bool {
	return c.State == Empty
}
