package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockMask(t *testing.T) {
	tests := []struct {
		mask  BlockMask
		state CellState
		want  bool
	}{
		{DefaultBlocks, Occupied, true},
		{DefaultBlocks, Blocked, true},
		{DefaultBlocks, PathMark, false},
		{DefaultBlocks, Start, false},
		{DefaultBlocks, Goal, false},
		{DefaultBlocks, Empty, false},
		{StrictBlocks, PathMark, true},
		{StrictBlocks, Empty, false},
	}

	for _, tt := range tests {
		got := tt.mask.Has(tt.state)
		if got != tt.want {
			t.Errorf("mask %08b Has(%v) = %v, want %v", tt.mask, tt.state, got, tt.want)
		}
	}
}

func TestCellStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "path", PathMark.String())
	assert.Equal(t, "CellState(42)", CellState(42).String())
}

func TestGridIndexRoundTrip(t *testing.T) {
	g := NewGrid(7)
	for i := 0; i < g.Len(); i++ {
		p := g.PointAt(i)
		require.True(t, g.InBounds(p))
		require.Equal(t, i, g.Index(p))
		require.Equal(t, p, g.Cell(p).Point)
	}
	assert.Equal(t, Pt(3, 2), g.PointAt(2*7+3))
}

func TestNewGridAllEmpty(t *testing.T) {
	g := NewGrid(4)
	assert.Equal(t, 16, g.Count(Empty))
	assert.Equal(t, 4, g.Size())
}

func TestNeighbors(t *testing.T) {
	g := NewGrid(3)

	// Corner has two neighbors, center has four.
	assert.ElementsMatch(t, []Point{Pt(0, 1), Pt(1, 0)}, g.Neighbors(Pt(0, 0), DefaultBlocks))
	assert.Len(t, g.Neighbors(Pt(1, 1), DefaultBlocks), 4)

	// Probe order is up, down, left, right.
	assert.Equal(t, []Point{Pt(1, 0), Pt(1, 2), Pt(0, 1), Pt(2, 1)}, g.Neighbors(Pt(1, 1), DefaultBlocks))

	g.SetState(Pt(1, 0), Blocked)
	g.SetState(Pt(0, 1), Occupied)
	g.SetState(Pt(2, 1), PathMark)
	assert.Equal(t, []Point{Pt(1, 2), Pt(2, 1)}, g.Neighbors(Pt(1, 1), DefaultBlocks))
	assert.Equal(t, []Point{Pt(1, 2)}, g.Neighbors(Pt(1, 1), StrictBlocks))
}

func TestGridReplaceAndClear(t *testing.T) {
	g := NewGrid(3)
	g.SetState(Pt(0, 0), PathMark)
	g.SetState(Pt(1, 0), PathMark)
	g.SetState(Pt(2, 2), Blocked)

	g.Replace(PathMark, Empty)
	assert.Equal(t, 0, g.Count(PathMark))
	assert.Equal(t, []Point{Pt(2, 2)}, g.PointsIn(Blocked))

	g.Clear()
	assert.Equal(t, 9, g.Count(Empty))
}

func TestPathAt(t *testing.T) {
	p := Path{Pt(0, 0), Pt(1, 0), Pt(1, 0), Pt(2, 0)}
	assert.Equal(t, Pt(0, 0), p.At(0))
	assert.Equal(t, Pt(1, 0), p.At(2))
	assert.Equal(t, Pt(2, 0), p.At(10))
	assert.Equal(t, 2, p.Moves())
}

func TestChebyshev(t *testing.T) {
	assert.Equal(t, 3, Chebyshev(Pt(0, 0), Pt(3, 1)))
	assert.Equal(t, 4, Chebyshev(Pt(5, 5), Pt(1, 4)))
	assert.Equal(t, 0, Chebyshev(Pt(2, 2), Pt(2, 2)))
}

func TestMoveReverse(t *testing.T) {
	m := Move{From: Pt(0, 0), To: Pt(1, 0)}
	assert.Equal(t, Move{From: Pt(1, 0), To: Pt(0, 0)}, m.Reverse())
	assert.False(t, m.IsWait())
	assert.True(t, Move{From: Pt(1, 1), To: Pt(1, 1)}.IsWait())
}
