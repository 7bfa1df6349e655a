// Package viz renders a live optimization monitor in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// IterationMsg reports one finished optimization iteration.
type IterationMsg struct {
	Iteration int
	JT        float64
	Taus      []float64
}

// DoneMsg reports the end of the optimization run.
type DoneMsg struct {
	Err error
}

// Model displays a running optimization fed through a message channel. The
// channel is owned by the caller, which also owns the optimization goroutine;
// pressing q cancels the run through the supplied cancel function and the
// monitor exits once the final DoneMsg arrives.
type Model struct {
	modelName string
	updates   <-chan tea.Msg
	cancel    func()

	iteration int
	jt        float64
	taus      []float64
	history   []float64
	start     time.Time
	done      bool
	canceled  bool
	err       error
}

// NewModel initializes the monitor for one optimization run.
func NewModel(modelName string, updates <-chan tea.Msg, cancel func()) Model {
	return Model{
		modelName: modelName,
		updates:   updates,
		cancel:    cancel,
		history:   make([]float64, 0, historyCapacity),
		start:     time.Now(),
	}
}

// Canceled reports whether the user requested cancellation.
func (m Model) Canceled() bool { return m.canceled }

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg { return <-m.updates }
}

func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update handles key presses and optimization progress messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.canceled {
				m.canceled = true
				m.cancel()
			}
			return m, nil
		}
	case IterationMsg:
		m.iteration = msg.Iteration
		m.jt = msg.JT
		m.taus = msg.Taus
		m.history = append(m.history, msg.JT)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, m.waitForUpdate()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View renders the monitor.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.modelName)) + "\n")

	status := "OPTIMIZING"
	switch {
	case m.done && m.err != nil:
		status = "FAILED"
	case m.done:
		status = "DONE"
	case m.canceled:
		status = "CANCELLING"
	}
	s.WriteString(status + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(40),
			asciigraph.Caption("J_T"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Iteration") + valueStyle.Render(fmt.Sprintf("%d", m.iteration)) + "\n")
	s.WriteString(labelStyle.Render("J_T") + valueStyle.Render(fmt.Sprintf("%.6e", m.jt)) + "\n")
	s.WriteString(labelStyle.Render("Elapsed") + valueStyle.Render(time.Since(m.start).Truncate(100*time.Millisecond).String()) + "\n")

	if len(m.taus) > 0 {
		s.WriteString("\nOVERLAPS\n")
		for i, tau := range m.taus {
			barWidth, ratio := 10, tau
			if ratio > 1 {
				ratio = 1
			} else if ratio < 0 {
				ratio = 0
			}
			filled := int(ratio * float64(barWidth))
			bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
			line := fmt.Sprintf("%-8s %s %.4f", fmt.Sprintf("tau_%d", i), bar, tau)
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + m.err.Error() + "\n")
	}

	s.WriteString(helpStyle.Render("Q:Cancel"))
	return s.String()
}
