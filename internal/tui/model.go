// Package tui is a terminal front end for a simulation.
package tui

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

type tickMsg struct{ gen int }

// Model is the bubbletea model. The simulation is driven from Update only.
type Model struct {
	sim      *sim.Simulation
	rng      *rand.Rand
	interval time.Duration

	cursor  core.Point
	running bool
	gen     int // invalidates ticks scheduled before a stop
	last    sim.TickResult
	status  string
}

// New creates a model ticking s every interval while running.
func New(s *sim.Simulation, interval time.Duration, seed int64) Model {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return Model{
		sim:      s,
		rng:      rand.New(rand.NewSource(seed)),
		interval: interval,
		status:   "enter: place agent  o: obstacle  space: run",
	}
}

// Run starts the program on the alternate screen.
func Run(s *sim.Simulation, interval time.Duration, seed int64) error {
	_, err := tea.NewProgram(New(s, interval, seed), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) tickEvery() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tickMsg:
		if !m.running || msg.gen != m.gen {
			return m, nil
		}
		m.last = m.sim.Tick()
		if m.last.Halted {
			m.running = false
			m.status = fmt.Sprintf("halted after %d ticks", m.last.TickIndex)
			return m, nil
		}
		return m, m.tickEvery()
	}
	return m, nil
}

func (m Model) handleKey(k string) (tea.Model, tea.Cmd) {
	size := m.sim.Size()
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor.Y = max(0, m.cursor.Y-1)
	case "down", "j":
		m.cursor.Y = min(size-1, m.cursor.Y+1)
	case "left", "h":
		m.cursor.X = max(0, m.cursor.X-1)
	case "right", "l":
		m.cursor.X = min(size-1, m.cursor.X+1)

	case "enter":
		id, created, err := m.sim.PlaceAgent(m.cursor)
		switch {
		case err != nil:
			m.status = err.Error()
		case created:
			m.status = fmt.Sprintf("agent %d created", id)
		default:
			if _, ok := m.sim.Pending(); ok {
				m.status = "start set, pick a goal"
			} else {
				m.status = "placement cancelled"
			}
		}
	case "esc":
		m.sim.CancelPending()
		m.status = "placement cancelled"
	case "o":
		err := m.sim.SetObstacle(m.cursor)
		if errors.Is(err, sim.ErrInvalidPlacement) {
			err = m.sim.ClearObstacle(m.cursor)
		}
		m.setErr(err, "")
	case "a":
		id, err := m.sim.AddRandomAgent(m.rng)
		m.setErr(err, fmt.Sprintf("agent %d added", id))

	case "p":
		m.status = planSummary(m.sim.PlanAll())
	case "t":
		m.status = "timed: " + planSummary(m.sim.PlanAllTimed())
	case "n":
		m.running = false
		m.gen++
		m.last = m.sim.Tick()
		m.status = fmt.Sprintf("tick %d: %d moved", m.last.TickIndex, m.last.Moved)
	case " ":
		if m.running {
			m.running = false
			m.gen++
			m.status = "stopped"
			return m, nil
		}
		if !m.sim.HasPlans() {
			m.sim.PlanAll()
		}
		m.running = true
		m.status = "running"
		return m, m.tickEvery()
	case "r":
		m.running = false
		m.gen++
		m.sim.Reset()
		m.last = sim.TickResult{}
		m.status = "reset"
	}
	return m, nil
}

func (m *Model) setErr(err error, ok string) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ok
}

func planSummary(plans map[core.AgentID]core.Path) string {
	return fmt.Sprintf("planned %d/%d agents", sim.CountPlanned(plans), len(plans))
}

func (m Model) View() string {
	snap := m.sim.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("dmapf"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%dx%d  tick %d  agents %d  arrived %d",
		snap.Size, snap.Size, snap.Ticks, len(snap.Agents), m.last.Arrived)))
	b.WriteString("\n\n")

	labels := make(map[core.Point]string, len(snap.Agents))
	for _, a := range snap.Agents {
		labels[a.Position] = fmt.Sprintf(" %d ", int(a.ID)%10)
	}

	for y := 0; y < snap.Size; y++ {
		row := make([]string, 0, snap.Size)
		for x := 0; x < snap.Size; x++ {
			p := core.Pt(x, y)
			st := snap.At(p)
			glyph := glyphs[st]
			if l, ok := labels[p]; ok {
				glyph = l
				st = core.Occupied
			}
			style := cellStyles[st]
			if p == m.cursor {
				style = style.Reverse(true)
			}
			row = append(row, style.Render(glyph))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	state := "paused"
	if m.running {
		state = "running"
	} else if snap.Halted {
		state = "halted"
	}
	b.WriteString(statusBarStyle.Render(fmt.Sprintf(" %s | %s ", state, m.status)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("arrows move  enter place  o obstacle  a random  p plan  t timed  n step  space run  r reset  q quit"))
	return b.String()
}
