// Package tui provides an interactive terminal view of a running
// self-consistent field solve.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plasmakit/torfield/internal/diag"
	"github.com/plasmakit/torfield/internal/scefield"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Stepper advances the coupled system by one effective field step and
// returns the resulting solver snapshot.
type Stepper func() (scefield.Snapshot, error)

type model struct {
	step    Stepper
	snap    scefield.Snapshot
	diags   []diag.Diagnostic
	stepN   int
	speed   int
	paused  bool
	err     error
	started time.Time

	width  int
	height int
}

// New builds the live view around a step function. Diagnostics are
// observed after every step and shown in the footer.
func New(step Stepper, diags ...diag.Diagnostic) tea.Model {
	return model{
		step:    step,
		diags:   diags,
		speed:   1,
		started: time.Now(),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.err != nil {
			return m, nil
		}
		if !m.paused {
			for i := 0; i < m.speed; i++ {
				snap, err := m.step()
				if err != nil {
					m.err = err
					return m, nil
				}
				m.snap = snap
				m.stepN++
				for _, d := range m.diags {
					d.Observe(snap)
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("torfield live") + dim.Render(fmt.Sprintf("  step %d  speed x%d  %s",
		m.stepN, m.speed, time.Since(m.started).Round(time.Second))))
	if m.paused {
		b.WriteString("  " + yellow.Render("paused"))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(yellow.Render("solver error: "+m.err.Error()) + "\n")
		b.WriteString(dim.Render("q to quit") + "\n")
		return b.String()
	}
	if len(m.snap.E) == 0 {
		b.WriteString(dim.Render("waiting for first solve...") + "\n")
		return b.String()
	}

	plotW := m.width - 12
	if plotW < 30 {
		plotW = 30
	}
	plotH := (m.height - 12) / 2
	if plotH < 5 {
		plotH = 5
	}

	b.WriteString(white.Render("parallel electric field") + "\n")
	b.WriteString(asciigraph.Plot(m.snap.E, asciigraph.Width(plotW), asciigraph.Height(plotH)))
	b.WriteString("\n\n")
	b.WriteString(white.Render("current density") + "\n")
	b.WriteString(asciigraph.Plot(m.snap.J, asciigraph.Width(plotW), asciigraph.Height(plotH)))
	b.WriteString("\n\n")

	for _, d := range m.diags {
		b.WriteString(green.Render(d.Name()) + dim.Render(fmt.Sprintf(" %.4e  ", d.Value())))
	}
	if len(m.diags) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(dim.Render("space pause  +/- speed  q quit") + "\n")
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(step Stepper, diags ...diag.Diagnostic) error {
	p := tea.NewProgram(New(step, diags...))
	_, err := p.Run()
	return err
}
