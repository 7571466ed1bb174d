package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chukul/ssostat/internal"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	quitTextStyle = lipgloss.NewStyle().Margin(1, 0, 1, 2)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Italic(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	expiredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// LevelStyle returns the color used for a status level.
func LevelStyle(l internal.Level) lipgloss.Style {
	switch l {
	case internal.LevelOK:
		return okStyle
	case internal.LevelWarning:
		return warningStyle
	default:
		return expiredStyle
	}
}
