// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
)

// CellSize is the side of one grid cell in world units.
const CellSize = 40.0

// Cell colors by state
var (
	ColorEmpty    = color.NRGBA{R: 45, G: 50, B: 56, A: 255}
	ColorBlocked  = color.NRGBA{R: 110, G: 115, B: 120, A: 255}
	ColorStart    = color.NRGBA{R: 60, G: 120, B: 80, A: 255}
	ColorGoal     = color.NRGBA{R: 160, G: 70, B: 70, A: 255}
	ColorOccupied = color.NRGBA{R: 90, G: 90, B: 150, A: 255}
	ColorPathMark = color.NRGBA{R: 70, G: 80, B: 95, A: 255}
	ColorPending  = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
	ColorGridLine = color.NRGBA{R: 30, G: 33, B: 37, A: 255}
)

// CellColor returns the fill color for a cell state.
func CellColor(s core.CellState) color.NRGBA {
	switch s {
	case core.Blocked:
		return ColorBlocked
	case core.Start:
		return ColorStart
	case core.Goal:
		return ColorGoal
	case core.Occupied:
		return ColorOccupied
	case core.PathMark:
		return ColorPathMark
	default:
		return ColorEmpty
	}
}

// CellCenter returns the world position of the center of p.
func CellCenter(p core.Point) (x, y float64) {
	return (float64(p.X) + 0.5) * CellSize, (float64(p.Y) + 0.5) * CellSize
}

// CellAt returns the cell under a screen point. ok is false outside a
// size×size grid.
func CellAt(screenX, screenY float32, size int, camera *interact.Camera) (p core.Point, ok bool) {
	wx, wy := camera.ScreenToWorld(screenX, screenY)
	p = core.Pt(int(math.Floor(wx/CellSize)), int(math.Floor(wy/CellSize)))
	return p, p.X >= 0 && p.Y >= 0 && p.X < size && p.Y < size
}

// DrawCells fills every cell of a row-major grid with its state color.
// Cells are inset by a pixel so the background shows as grid lines.
func DrawCells(gtx layout.Context, cells []core.Cell, size int, camera *interact.Camera) {
	for i, c := range cells {
		DrawCell(gtx, core.Pt(i%size, i/size), camera, CellColor(c.State))
	}
}

// DrawCell fills one cell.
func DrawCell(gtx layout.Context, p core.Point, camera *interact.Camera, col color.NRGBA) {
	x0, y0 := camera.WorldToScreen(float64(p.X)*CellSize, float64(p.Y)*CellSize)
	x1, y1 := camera.WorldToScreen(float64(p.X+1)*CellSize, float64(p.Y+1)*CellSize)
	rect := image.Rect(int(x0)+1, int(y0)+1, int(x1), int(y1))
	if rect.Empty() {
		return
	}
	paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
}

// DrawCellOutline draws a square ring just inside cell p.
func DrawCellOutline(gtx layout.Context, p core.Point, camera *interact.Camera, col color.NRGBA, width float32) {
	x0, y0 := camera.WorldToScreen(float64(p.X)*CellSize, float64(p.Y)*CellSize)
	x1, y1 := camera.WorldToScreen(float64(p.X+1)*CellSize, float64(p.Y+1)*CellSize)

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x0, y0))
	path.LineTo(f32.Pt(x1, y0))
	path.LineTo(f32.Pt(x1, y1))
	path.LineTo(f32.Pt(x0, y1))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: width}.Op())
}

// DrawGridBackground fills the area covered by a size×size grid.
func DrawGridBackground(gtx layout.Context, size int, camera *interact.Camera) {
	x0, y0 := camera.WorldToScreen(0, 0)
	x1, y1 := camera.WorldToScreen(float64(size)*CellSize, float64(size)*CellSize)
	rect := image.Rect(int(x0), int(y0), int(x1)+1, int(y1)+1)
	paint.FillShape(gtx.Ops, ColorGridLine, clip.Rect(rect).Op())
}
