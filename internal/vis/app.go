// Package vis implements a Gio-based view of a running simulation.
package vis

import (
	"image/color"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dmapf/internal/sim"
	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
	"github.com/elektrokombinacija/dmapf/internal/vis/state"
	"github.com/elektrokombinacija/dmapf/internal/vis/widgets"
)

const panStep = 40

// App is the main visualization application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	statusBar *widgets.StatusBar
	toolbar   *widgets.Toolbar
	camera    *interact.Camera
}

// NewApp creates an application showing s, ticking every interval while
// running. seed drives random agent placement.
func NewApp(s *sim.Simulation, interval time.Duration, seed int64) *App {
	st := state.NewState(s, interval, seed)
	camera := interact.NewCamera()

	return &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		statusBar: widgets.NewStatusBar(st),
		toolbar:   widgets.NewToolbar(st, camera),
		camera:    camera,
	}
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops

	// Event filters for keyboard input
	tag := new(int)
	focused := false

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			// Handle keyboard events
			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModCtrl | key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(gtx, ke)
				}
			}

			// Request focus for keyboard input
			event.Op(gtx.Ops, tag)
			if !focused {
				gtx.Execute(key.FocusCmd{Tag: tag})
				focused = true
			}

			a.state.Advance(gtx.Now)

			a.layout(gtx)

			// Wake up for the next tick while running
			if a.state.Clock.Running {
				gtx.Execute(op.InvalidateCmd{At: gtx.Now.Add(a.state.Clock.Until(gtx.Now))})
			}
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) handleKeyEvent(gtx layout.Context, e key.Event) {
	st := a.state
	switch e.Name {
	case key.NameSpace:
		st.ToggleRun(gtx.Now)
	case key.NameEscape:
		st.CancelPending()
	case key.NameLeftArrow:
		a.camera.Pan(panStep, 0)
	case key.NameRightArrow:
		a.camera.Pan(-panStep, 0)
	case key.NameUpArrow:
		a.camera.Pan(0, panStep)
	case key.NameDownArrow:
		a.camera.Pan(0, -panStep)
	case "N":
		st.Step()
	case "P":
		st.Plan()
	case "T":
		st.PlanTimed()
	case "A":
		st.AddRandomAgent()
	case "G":
		st.SetMode(state.ModePlace)
	case "O":
		st.SetMode(state.ModeObstacle)
	case "E":
		st.SetMode(state.ModeErase)
	case "F":
		a.camera.Reset()
	case "+", "=":
		st.Clock.Faster()
	case "-":
		st.Clock.Slower()
	case "R":
		if e.Modifiers.Contain(key.ModShift) {
			st.Reset()
		}
	case "Z":
		if e.Modifiers.Contain(key.ModCtrl) {
			st.Undo()
		}
	case "Y":
		if e.Modifiers.Contain(key.ModCtrl) {
			st.Redo()
		}
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		// Toolbar at top
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		// Grid
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.workspace.Layout(gtx, a.theme)
		}),
		// Status at bottom
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.statusBar.Layout(gtx, a.theme)
		}),
	)
}
