package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chukul/ssostat/internal"
)

type snapshotMsg internal.Snapshot

type noticeMsg struct {
	title, subtitle, message string
}

type alertMsg struct {
	title, message string
}

// Refresher queues a login request for a profile.
type Refresher interface {
	Refresh(profile string)
}

// TeaPresenter forwards reconciler output to a running watch program.
// Alerts raised before the program is attached are kept for its first frame.
type TeaPresenter struct {
	program      *tea.Program
	initialAlert string
}

func (p *TeaPresenter) Attach(program *tea.Program) {
	p.program = program
}

func (p *TeaPresenter) Publish(s internal.Snapshot) {
	if p.program != nil {
		p.program.Send(snapshotMsg(s))
	}
}

func (p *TeaPresenter) Notify(title, subtitle, message string) {
	if p.program != nil {
		p.program.Send(noticeMsg{title: title, subtitle: subtitle, message: message})
	}
}

func (p *TeaPresenter) Alert(title, message string) {
	if p.program == nil {
		p.initialAlert = title + ": " + message
		return
	}
	p.program.Send(alertMsg{title: title, message: message})
}

type watchModel struct {
	refresher Refresher
	profiles  []string
	cursor    int
	snap      *internal.Snapshot
	notice    string
	alert     string
	spinner   spinner.Model
}

func newWatchModel(refresher Refresher, profiles []string, active, alert string) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := watchModel{
		refresher: refresher,
		profiles:  profiles,
		alert:     alert,
		spinner:   s,
	}
	for i, p := range profiles {
		if p == active {
			m.cursor = i
		}
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.profiles)-1 {
				m.cursor++
			}
		case "enter", "r":
			if len(m.profiles) > 0 {
				m.refresher.Refresh(m.profiles[m.cursor])
			}
		}
		return m, nil

	case snapshotMsg:
		s := internal.Snapshot(msg)
		m.snap = &s
		return m, nil

	case noticeMsg:
		m.notice = fmt.Sprintf("%s — %s: %s", msg.title, msg.subtitle, msg.message)
		return m, nil

	case alertMsg:
		m.alert = msg.title + ": " + msg.message
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	glyph := internal.LevelExpired.Glyph()
	if m.snap != nil {
		glyph = LevelStyle(m.snap.Level).Render(m.snap.Level.Glyph())
	} else {
		glyph = expiredStyle.Render(glyph)
	}
	b.WriteString("\n " + glyph + "  " + titleStyle.Render("AWS SSO Login") + "\n\n")

	if m.snap != nil {
		b.WriteString("   Profile: " + m.snap.Profile + "\n")
		b.WriteString("   " + m.snap.ExpiryText() + "\n")
		b.WriteString("   " + internal.RemainingText(*m.snap) + "\n")
		if m.snap.Mode == internal.CadenceFast {
			b.WriteString("   " + m.spinner.View() + " waiting for login…\n")
		}
	} else {
		b.WriteString("   Checking…\n")
	}

	b.WriteString("\n " + titleStyle.Render("Refresh profile") + "\n")
	for i, p := range m.profiles {
		line := "   " + p
		if i == m.cursor {
			line = cursorStyle.Render(" > " + p)
		}
		b.WriteString(line + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n " + noticeStyle.Render(m.notice) + "\n")
	}
	if m.alert != "" {
		b.WriteString("\n " + alertStyle.Render(m.alert) + "\n")
	}
	b.WriteString("\n " + helpStyle.Render("↑/↓ choose • enter/r refresh • q quit") + "\n")
	return b.String()
}

// Watch runs the reconciler behind an interactive status view until the user
// quits or ctx is done.
func Watch(ctx context.Context, app *internal.App) error {
	presenter := &TeaPresenter{}
	rec := app.NewReconciler(presenter, "")

	m := newWatchModel(rec, app.Registry.Discover(), rec.ActiveProfile(), presenter.initialAlert)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	presenter.Attach(program)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Run(loopCtx)
	}()

	_, err := program.Run()
	cancel()
	<-done
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
