package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
)

// DrawPath draws a path through cell centers. Waits are skipped.
func DrawPath(gtx layout.Context, path core.Path, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}

	w := width * camera.Zoom
	for i := 0; i < len(path)-1; i++ {
		if path[i] == path[i+1] {
			continue
		}
		x1, y1 := camera.WorldToScreen(CellCenter(path[i]))
		x2, y2 := camera.WorldToScreen(CellCenter(path[i+1]))
		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawRemaining draws the part of an agent's path it has not walked yet,
// from its current position on.
func DrawRemaining(gtx layout.Context, path core.Path, progress int, camera *interact.Camera, col color.NRGBA) {
	if progress < 0 || progress >= len(path)-1 {
		return
	}
	col.A = 160
	DrawPath(gtx, path[progress:], camera, col, 3)
}

// DrawPlan draws a planned path dimmed, with a dot on every wait.
func DrawPlan(gtx layout.Context, path core.Path, camera *interact.Camera, col color.NRGBA) {
	col.A = 70
	DrawPath(gtx, path, camera, col, 1.5)

	for i := 1; i < len(path); i++ {
		if path[i] != path[i-1] {
			continue
		}
		x, y := camera.WorldToScreen(CellCenter(path[i]))
		drawFilledCircle(gtx, x, y, 4*camera.Zoom, col)
	}
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
