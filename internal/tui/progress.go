// Package tui renders interactive feedback for `pipeline run`: a live
// bubbletea progress view driven by the controller's per-stage hook, and
// a huh confirmation prompt gating the self-correction router's high
// tier. Grounded on the teacher's bubbletea-based run display and its
// huh-gated interactive confirmations (cmd/wave/commands/run.go).
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/MatthewHRockwell/atomik-sub001/internal/pipeline"
)

var (
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

type stageMsg struct {
	stage   string
	message string
}

type doneMsg struct {
	run *pipeline.Run
	err error
}

type model struct {
	spin    spinner.Model
	history []stageMsg
	result  *pipeline.Run
	err     error
	done    bool
}

func newModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{spin: s}
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.history = append(m.history, msg)
		return m, nil
	case doneMsg:
		m.result = msg.run
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("atomik pipeline run") + "\n")
	for _, h := range m.history {
		b.WriteString(stageStyle.Render(fmt.Sprintf("  %-10s %s", h.stage, h.message)) + "\n")
	}
	if m.done {
		if m.err != nil {
			b.WriteString(failStyle.Render("  "+m.err.Error()) + "\n")
		} else if m.result != nil {
			b.WriteString(doneStyle.Render(fmt.Sprintf("  done: %s (exit %d)", m.result.State, m.result.ExitCode)) + "\n")
		}
	} else {
		b.WriteString("  " + m.spin.View() + " running\n")
	}
	return b.String()
}

// RunWithProgress drives one controller run behind a live bubbletea view,
// feeding the controller's OnStage hook into the program as it goes.
func RunWithProgress(ctx context.Context, c *pipeline.Controller, opts pipeline.Options) (*pipeline.Run, error) {
	p := tea.NewProgram(newModel())

	opts.OnStage = func(stage, message string) {
		p.Send(stageMsg{stage: stage, message: message})
	}

	var run *pipeline.Run
	var runErr error
	go func() {
		run, runErr = c.Run(ctx, opts)
		p.Send(doneMsg{run: run, err: runErr})
	}()

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("tui: rendering progress: %w", err)
	}
	return run, runErr
}
