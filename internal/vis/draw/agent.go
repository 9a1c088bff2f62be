package draw

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
)

// Agent palette, cycled by ID
var agentPalette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 150, B: 100, A: 255},
	{R: 200, G: 100, B: 255, A: 255},
	{R: 130, G: 220, B: 120, A: 255},
	{R: 255, G: 220, B: 90, A: 255},
	{R: 255, G: 110, B: 170, A: 255},
}

// AgentColor returns the color for an agent.
func AgentColor(id core.AgentID) color.NRGBA {
	n := len(agentPalette)
	return agentPalette[((int(id)-1)%n+n)%n]
}

// DrawAgent draws an agent as a disc on its cell, with its ID on top. An
// agent standing on its goal gets a ring instead of a disc.
func DrawAgent(gtx layout.Context, th *material.Theme, a core.Agent, pos core.Point, camera *interact.Camera) {
	wx, wy := CellCenter(pos)
	cx, cy := camera.WorldToScreen(wx, wy)
	r := float32(CellSize*0.35) * camera.Zoom
	col := AgentColor(a.ID)

	if pos == a.Goal {
		drawRing(gtx, cx, cy, r, r*0.3, col)
	} else {
		drawFilledCircle(gtx, cx, cy, r, col)
	}
	drawAgentID(gtx, th, cx, cy, a.ID)
}

// DrawGoalMarker draws a small square in the agent's color on its goal.
func DrawGoalMarker(gtx layout.Context, a core.Agent, camera *interact.Camera) {
	wx, wy := CellCenter(a.Goal)
	cx, cy := camera.WorldToScreen(wx, wy)
	drawSquare(gtx, cx, cy, float32(CellSize*0.25)*camera.Zoom, AgentColor(a.ID))
}

func drawSquare(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	halfSize := size / 2
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx-halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy+halfSize))
	path.LineTo(f32.Pt(cx-halfSize, cy+halfSize))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func circlePath(gtx layout.Context, cx, cy, radius float32, segments int) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+radius, cy))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()
	return path.End()
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: circlePath(gtx, cx, cy, radius, 20)}.Op())
}

func drawRing(gtx layout.Context, cx, cy, radius, width float32, col color.NRGBA) {
	spec := circlePath(gtx, cx, cy, radius-width/2, 20)
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: spec, Width: width}.Op())
}

func drawAgentID(gtx layout.Context, th *material.Theme, cx, cy float32, id core.AgentID) {
	if th == nil {
		return
	}
	label := material.Label(th, unit.Sp(11), fmt.Sprint(id))
	label.Color = color.NRGBA{R: 20, G: 20, B: 25, A: 255}

	// Measure first, then draw centered on the cell.
	macro := op.Record(gtx.Ops)
	lgtx := gtx
	lgtx.Constraints = layout.Constraints{Max: gtx.Constraints.Max}
	dims := label.Layout(lgtx)
	call := macro.Stop()

	off := image.Pt(int(cx)-dims.Size.X/2, int(cy)-dims.Size.Y/2)
	defer op.Offset(off).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}
