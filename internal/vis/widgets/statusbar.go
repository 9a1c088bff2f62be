package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dmapf/internal/vis/state"
)

// StatusBar shows the tick count, arrival progress and the last message.
type StatusBar struct {
	state *state.State
}

// NewStatusBar creates a new status bar.
func NewStatusBar(st *state.State) *StatusBar {
	return &StatusBar{state: st}
}

// Layout renders the status bar.
func (b *StatusBar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Dp(52)
	width := gtx.Constraints.Max.X

	// Background
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255},
		clip.Rect(image.Rect(0, 0, width, height)).Op())

	// Arrival track along the top edge
	margin := gtx.Dp(20)
	trackWidth := width - 2*margin
	trackRect := image.Rect(margin, 6, margin+trackWidth, 10)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	agents := len(b.state.Sim.Agents())
	last := b.state.Last
	if agents > 0 && last.Agents == agents {
		fill := trackWidth * last.Arrived / agents
		fillRect := image.Rect(margin, 6, margin+fill, 10)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fillRect).Op())
	}

	tick := fmt.Sprintf("tick %d", b.state.Sim.Ticks())
	if b.state.Sim.Halted() {
		tick += " (halted)"
	}
	info := fmt.Sprintf("%d agents  %s  %s mode", agents, b.state.Clock.Interval, b.state.Edit.Mode)

	label := func(txt string, col color.NRGBA) layout.Widget {
		return func(gtx layout.Context) layout.Dimensions {
			l := material.Label(th, 12, txt)
			l.Color = col
			return l.Layout(gtx)
		}
	}

	layout.Inset{Top: unit.Dp(18), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(label(tick, color.NRGBA{R: 200, G: 200, B: 200, A: 255})),
			layout.Rigid(label(b.state.Status, color.NRGBA{R: 150, G: 180, B: 200, A: 255})),
			layout.Rigid(label(info, color.NRGBA{R: 150, G: 150, B: 150, A: 255})),
		)
	})

	return layout.Dimensions{Size: image.Point{X: width, Y: height}}
}
