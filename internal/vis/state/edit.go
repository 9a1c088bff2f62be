package state

import (
	"errors"
	"slices"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

// EditAction represents an undoable edit action.
type EditAction interface {
	Do(s *sim.Simulation) error
	Undo(s *sim.Simulation) error
	Description() string
}

// EditMode represents what a primary tap on the grid does.
type EditMode int

const (
	ModePlace    EditMode = iota // Two-tap agent placement
	ModeObstacle                 // Paint obstacles
	ModeErase                    // Erase obstacles
)

func (m EditMode) String() string {
	switch m {
	case ModePlace:
		return "place"
	case ModeObstacle:
		return "obstacle"
	case ModeErase:
		return "erase"
	}
	return "unknown"
}

// EditState manages interactive editing state.
type EditState struct {
	Mode EditMode

	// Stroke being painted, nil when no button is down
	stroke *ObstacleAction

	// Undo/redo stacks
	undoStack []EditAction
	redoStack []EditAction
}

// NewEditState creates a new edit state.
func NewEditState() *EditState {
	return &EditState{Mode: ModePlace}
}

// Painting reports whether a stroke is in progress.
func (e *EditState) Painting() bool {
	return e.stroke != nil
}

// BeginStroke starts an obstacle stroke in the current mode.
func (e *EditState) BeginStroke() {
	e.stroke = &ObstacleAction{Erase: e.Mode == ModeErase}
}

// Paint applies the stroke to p. Cells that cannot change are skipped, as
// are cells already in the stroke.
func (e *EditState) Paint(s *sim.Simulation, p core.Point) bool {
	if e.stroke == nil || slices.Contains(e.stroke.Cells, p) {
		return false
	}
	if err := e.stroke.apply(s, p, e.stroke.Erase); err != nil {
		return false
	}
	e.stroke.Cells = append(e.stroke.Cells, p)
	return true
}

// EndStroke finishes the stroke and pushes it onto the undo stack if it
// changed anything.
func (e *EditState) EndStroke() {
	if e.stroke != nil && len(e.stroke.Cells) > 0 {
		e.push(e.stroke)
	}
	e.stroke = nil
}

func (e *EditState) push(action EditAction) {
	e.undoStack = append(e.undoStack, action)
	e.redoStack = nil // Clear redo stack on new action
}

// Undo reverts the last action. The action moves to the redo stack even
// when some of its cells could not be reverted.
func (e *EditState) Undo(s *sim.Simulation) (EditAction, error) {
	if len(e.undoStack) == 0 {
		return nil, nil
	}
	action := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.redoStack = append(e.redoStack, action)
	return action, action.Undo(s)
}

// Redo reapplies the last undone action.
func (e *EditState) Redo(s *sim.Simulation) (EditAction, error) {
	if len(e.redoStack) == 0 {
		return nil, nil
	}
	action := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	e.undoStack = append(e.undoStack, action)
	return action, action.Do(s)
}

// CanUndo returns true if there are actions to undo.
func (e *EditState) CanUndo() bool {
	return len(e.undoStack) > 0
}

// CanRedo returns true if there are actions to redo.
func (e *EditState) CanRedo() bool {
	return len(e.redoStack) > 0
}

// Forget drops both stacks, for when the grid they refer to is gone.
func (e *EditState) Forget() {
	e.undoStack = nil
	e.redoStack = nil
	e.stroke = nil
}

// ObstacleAction places (or with Erase, removes) obstacles on Cells.
type ObstacleAction struct {
	Cells []core.Point
	Erase bool
}

func (a *ObstacleAction) apply(s *sim.Simulation, p core.Point, erase bool) error {
	if erase {
		return s.ClearObstacle(p)
	}
	return s.SetObstacle(p)
}

func (a *ObstacleAction) Do(s *sim.Simulation) error {
	var errs []error
	for _, p := range a.Cells {
		errs = append(errs, a.apply(s, p, a.Erase))
	}
	return errors.Join(errs...)
}

func (a *ObstacleAction) Undo(s *sim.Simulation) error {
	var errs []error
	for i := len(a.Cells) - 1; i >= 0; i-- {
		errs = append(errs, a.apply(s, a.Cells[i], !a.Erase))
	}
	return errors.Join(errs...)
}

func (a *ObstacleAction) Description() string {
	if a.Erase {
		return "Erase obstacles"
	}
	return "Paint obstacles"
}
