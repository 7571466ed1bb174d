package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type selectModel struct {
	title    string
	options  []string
	cursor   int
	chosen   string
	quitting bool
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.options[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.chosen != "" {
		return ""
	}
	if m.quitting {
		return quitTextStyle.Render("Cancelled.")
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(m.title) + "\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+opt) + "\n")
		} else {
			b.WriteString("  " + opt + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ move • enter select • esc cancel") + "\n")
	return b.String()
}

// SelectProfile asks the user to pick one of options, starting on initial
// when it is present.
func SelectProfile(title string, options []string, initial string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no profiles to choose from")
	}

	m := selectModel{title: title, options: options}
	for i, opt := range options {
		if opt == initial {
			m.cursor = i
		}
	}

	// Use stderr to avoid polluting stdout
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := finalModel.(selectModel); ok && fm.chosen != "" {
		return fm.chosen, nil
	}
	return "", ErrCancelled
}
