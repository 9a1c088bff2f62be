// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/vis/draw"
	"github.com/elektrokombinacija/dmapf/internal/vis/interact"
	"github.com/elektrokombinacija/dmapf/internal/vis/state"
)

var colorHover = color.NRGBA{R: 220, G: 220, B: 220, A: 120}

// Workspace is the grid view. Primary taps place agents or paint
// obstacles; the camera takes secondary drags and scrolling.
type Workspace struct {
	state  *state.State
	camera *interact.Camera

	hover   core.Point
	hovered bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	// Clip to bounds
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	// Fill background
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	size := w.state.Sim.Size()
	w.camera.FitGrid(float64(size)*draw.CellSize, float32(bounds.X), float32(bounds.Y))

	w.handlePointerEvents(gtx, size)

	snap := w.state.Sim.Snapshot()
	draw.DrawGridBackground(gtx, snap.Size, w.camera)
	draw.DrawCells(gtx, snap.Cells, snap.Size, w.camera)

	// Planned paths under the walked ones
	for _, a := range snap.Agents {
		if plan := snap.Plans[a.ID]; len(plan) > 1 {
			draw.DrawPlan(gtx, plan, w.camera, draw.AgentColor(a.ID))
		}
	}
	for _, a := range snap.Agents {
		draw.DrawRemaining(gtx, a.Path, a.Progress, w.camera, draw.AgentColor(a.ID))
	}

	for _, a := range snap.Agents {
		agent := core.Agent{ID: a.ID, Start: a.Start, Goal: a.Goal}
		if !a.AtGoal {
			draw.DrawGoalMarker(gtx, agent, w.camera)
		}
		draw.DrawAgent(gtx, th, agent, a.Position, w.camera)
	}

	if snap.Pending != nil {
		draw.DrawCellOutline(gtx, *snap.Pending, w.camera, draw.ColorPending, 3)
	}
	if w.hovered {
		draw.DrawCellOutline(gtx, w.hover, w.camera, colorHover, 1.5)
	}

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context, size int) {
	// Register for pointer events
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	// Process events
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move | pointer.Leave,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.handlePointerEvent(pe, size)
		}
	}
}

func (w *Workspace) handlePointerEvent(ev pointer.Event, size int) {
	// Camera handles pan and zoom
	w.camera.HandleEvent(ev)

	p, inside := draw.CellAt(ev.Position.X, ev.Position.Y, size, w.camera)

	switch ev.Kind {
	case pointer.Move:
		w.hover, w.hovered = p, inside

	case pointer.Leave:
		w.hovered = false

	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonPrimary) && inside {
			w.state.Press(p)
		}

	case pointer.Drag:
		w.hover, w.hovered = p, inside
		if w.state.Edit.Painting() && inside && !w.camera.Panning() {
			w.state.Drag(p)
		}

	case pointer.Release:
		if w.state.Edit.Painting() {
			w.state.Release()
		}
	}
}
