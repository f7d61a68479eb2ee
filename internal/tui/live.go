// Package tui shows a live view of a training run: loss curve, progress,
// and elapsed time, with q to stop training at the next iteration.
package tui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hybridsim/internal/viz"
)

// ProgressMsg reports one completed training iteration.
type ProgressMsg struct {
	Iteration int
	Loss      float64
}

// DoneMsg reports the end of training, successful or not.
type DoneMsg struct {
	Err error
}

type Model struct {
	scenario  string
	total     int
	iteration int
	losses    []float64
	start     time.Time
	halt      *atomic.Bool
	done      bool
	err       error
}

func NewModel(scenario string, total int, halt *atomic.Bool) Model {
	return Model{
		scenario: scenario,
		total:    total,
		losses:   make([]float64, 0, total),
		start:    time.Now(),
		halt:     halt,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			// Training notices at its next observer call and finishes the
			// current iteration first.
			m.halt.Store(true)
		}
	case ProgressMsg:
		m.iteration = msg.Iteration + 1
		m.losses = append(m.losses, msg.Loss)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(viz.HeaderStyle.Render("TRAINING "+strings.ToUpper(m.scenario)) + "\n")

	status := viz.StatusRunning.Render("RUNNING")
	if m.halt != nil && m.halt.Load() && !m.done {
		status = viz.StatusHalted.Render("STOPPING")
	}
	if m.done {
		if m.err != nil {
			status = viz.StatusHalted.Render("FAILED: " + m.err.Error())
		} else {
			status = viz.StatusRunning.Render("DONE")
		}
	}
	s.WriteString(status + "\n")

	s.WriteString(viz.LossCurve(m.losses) + "\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.iteration) / float64(m.total)
	}
	s.WriteString(viz.ProgressBar(percent, 40) + "\n\n")

	s.WriteString(viz.MetricLabel.Render("Iteration") +
		viz.MetricValue.Render(fmt.Sprintf("%d/%d", m.iteration, m.total)) + "\n")
	if len(m.losses) > 0 {
		s.WriteString(viz.MetricLabel.Render("Loss") +
			viz.MetricValue.Render(fmt.Sprintf("%.6g", m.losses[len(m.losses)-1])) + "\n")
	}
	s.WriteString(viz.MetricLabel.Render("Elapsed") +
		viz.MetricValue.Render(time.Since(m.start).Round(time.Second).String()) + "\n")

	s.WriteString(viz.KeyHint.Render("\nq: stop training"))
	return s.String()
}

// Run drives trainFn under the live view. The observer passed to trainFn
// reports each iteration and returns true once the user asked to stop.
func Run(scenario string, total int, trainFn func(observer func(iteration int, loss float64) bool) error) error {
	var halt atomic.Bool
	p := tea.NewProgram(NewModel(scenario, total, &halt))

	go func() {
		err := trainFn(func(iteration int, loss float64) bool {
			p.Send(ProgressMsg{Iteration: iteration, Loss: loss})
			return halt.Load()
		})
		p.Send(DoneMsg{Err: err})
	}()

	model, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := model.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
