package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

var glyphs = map[core.CellState]string{
	core.Empty:    " · ",
	core.Occupied: " @ ",
	core.Blocked:  "███",
	core.Start:    " S ",
	core.Goal:     " G ",
	core.PathMark: " • ",
}

var cellStyles = map[core.CellState]lipgloss.Style{
	core.Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A")),
	core.Occupied: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#89B4FA")),
	core.Blocked:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	core.Start:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
	core.Goal:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
	core.PathMark: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)
