package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chukul/ssostat/internal"
)

// ErrCancelled is returned when the user interrupts a wait.
var ErrCancelled = errors.New("cancelled by user")

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type waitResultMsg struct {
	snap internal.Snapshot
	err  error
}

type waitModel struct {
	spinner spinner.Model
	text    string
	task    func() (internal.Snapshot, error)
	cancel  context.CancelFunc
	snap    internal.Snapshot
	err     error
	done    bool
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			snap, err := m.task()
			return waitResultMsg{snap: snap, err: err}
		},
	)
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			// The task sees the cancellation and returns; its result is ignored.
			m.cancel()
			m.err = ErrCancelled
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case waitResultMsg:
		m.snap = msg.snap
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), textStyle.Render(m.text))
}

// WaitFor shows a spinner while task runs with ctx. Esc or Ctrl+C cancels
// the context and returns ErrCancelled.
func WaitFor(ctx context.Context, text string, task func(ctx context.Context) (internal.Snapshot, error)) (internal.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := waitModel{
		spinner: s,
		text:    text,
		task:    func() (internal.Snapshot, error) { return task(ctx) },
		cancel:  cancel,
	}

	// Use stderr to avoid polluting stdout
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return internal.Snapshot{}, err
	}

	fm, ok := finalModel.(waitModel)
	if !ok {
		return internal.Snapshot{}, fmt.Errorf("internal error: invalid model type")
	}
	return fm.snap, fm.err
}
