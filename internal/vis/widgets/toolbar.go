package widgets

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
	"github.com/elektrokombinacija/dmapf/internal/vis/state"
)

// Toolbar provides control buttons.
type Toolbar struct {
	state  *state.State
	camera *interact.Camera

	// Simulation
	runBtn   widget.Clickable
	stepBtn  widget.Clickable
	planBtn  widget.Clickable
	timedBtn widget.Clickable
	addBtn   widget.Clickable
	resetBtn widget.Clickable

	// Speed
	slowerBtn widget.Clickable
	fasterBtn widget.Clickable

	// Edit mode buttons
	placeModeBtn    widget.Clickable
	obstacleModeBtn widget.Clickable
	eraseModeBtn    widget.Clickable

	// Undo/redo
	undoBtn widget.Clickable
	redoBtn widget.Clickable

	fitBtn widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State, camera *interact.Camera) *Toolbar {
	return &Toolbar{
		state:  st,
		camera: camera,
	}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 48

	// Background
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	// Handle button clicks
	t.handleClicks(gtx)

	// Layout buttons
	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutSimControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutSpeedControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutEditControls(gtx, th)
			}),

			// Spacer
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.buttonBase(gtx, th, &t.fitBtn, "Fit", false)
			}),
		)
	})
}

func (t *Toolbar) layoutSimControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	run := "Run"
	if t.state.Clock.Running {
		run = "Stop"
	}
	return t.row(gtx, th, 4,
		button{&t.runBtn, run, t.state.Clock.Running},
		button{&t.stepBtn, "Step", false},
		button{&t.planBtn, "Plan", false},
		button{&t.timedBtn, "Timed", false},
		button{&t.addBtn, "+Agent", false},
		button{&t.resetBtn, "Reset", false},
	)
}

func (t *Toolbar) layoutSpeedControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return t.row(gtx, th, 4,
		button{&t.slowerBtn, "-", false},
		button{&t.fasterBtn, "+", false},
	)
}

func (t *Toolbar) layoutEditControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	mode := t.state.Edit.Mode
	return t.row(gtx, th, 2,
		button{&t.placeModeBtn, "Agent", mode == state.ModePlace},
		button{&t.obstacleModeBtn, "Wall", mode == state.ModeObstacle},
		button{&t.eraseModeBtn, "Erase", mode == state.ModeErase},
		button{&t.undoBtn, "<-", false},
		button{&t.redoBtn, "->", false},
	)
}

type button struct {
	btn    *widget.Clickable
	text   string
	active bool
}

func (t *Toolbar) row(gtx layout.Context, th *material.Theme, gap unit.Dp, buttons ...button) layout.Dimensions {
	children := make([]layout.FlexChild, 0, 2*len(buttons))
	for i, b := range buttons {
		if i > 0 {
			children = append(children, layout.Rigid(layout.Spacer{Width: gap}.Layout))
		}
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.buttonBase(gtx, th, b.btn, b.text, b.active)
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) buttonBase(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string, active bool) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if active {
		bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
	}
	if btn.Hovered() {
		bg.R = minU8(bg.R+15, 255)
		bg.G = minU8(bg.G+15, 255)
		bg.B = minU8(bg.B+15, 255)
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: gtx.Dp(32), Y: gtx.Dp(28)}
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Inset{Left: unit.Dp(6), Right: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						label := material.Label(th, 12, text)
						label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
						return label.Layout(gtx)
					})
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	st := t.state

	// Simulation
	for t.runBtn.Clicked(gtx) {
		st.ToggleRun(gtx.Now)
	}
	for t.stepBtn.Clicked(gtx) {
		st.Step()
	}
	for t.planBtn.Clicked(gtx) {
		st.Plan()
	}
	for t.timedBtn.Clicked(gtx) {
		st.PlanTimed()
	}
	for t.addBtn.Clicked(gtx) {
		st.AddRandomAgent()
	}
	for t.resetBtn.Clicked(gtx) {
		st.Reset()
	}

	// Speed
	for t.slowerBtn.Clicked(gtx) {
		st.Clock.Slower()
	}
	for t.fasterBtn.Clicked(gtx) {
		st.Clock.Faster()
	}

	// Edit modes
	for t.placeModeBtn.Clicked(gtx) {
		st.SetMode(state.ModePlace)
	}
	for t.obstacleModeBtn.Clicked(gtx) {
		st.SetMode(state.ModeObstacle)
	}
	for t.eraseModeBtn.Clicked(gtx) {
		st.SetMode(state.ModeErase)
	}

	// Undo/redo
	for t.undoBtn.Clicked(gtx) {
		st.Undo()
	}
	for t.redoBtn.Clicked(gtx) {
		st.Redo()
	}

	for t.fitBtn.Clicked(gtx) {
		t.camera.Reset()
	}
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
