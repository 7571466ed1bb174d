package internal

import (
	"github.com/ternarybob/arbor"
)

// Presenter receives everything the reconciler wants the user to see. It is
// outbound only.
type Presenter interface {
	Publish(s Snapshot)
	Notify(title, subtitle, message string)
	Alert(title, message string)
}

// LogPresenter writes status changes and notifications to a logger. Used by
// the daemon, where nobody is watching a screen.
type LogPresenter struct {
	logger arbor.ILogger
	last   *Snapshot
}

func NewLogPresenter(logger arbor.ILogger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// Publish logs a snapshot when its profile, login state, level or cadence
// differs from the previous one.
func (p *LogPresenter) Publish(s Snapshot) {
	if p.last != nil && p.last.Profile == s.Profile && p.last.LoggedIn == s.LoggedIn &&
		p.last.Level == s.Level && p.last.Mode == s.Mode {
		p.last = &s
		return
	}
	p.last = &s

	event := p.logger.Info()
	if s.Level != LevelOK {
		event = p.logger.Warn()
	}
	event.
		Str("profile", s.Profile).
		Str("status", s.Level.Glyph()+" "+s.Level.String()).
		Bool("logged_in", s.LoggedIn).
		Str("expiry", s.ExpiryText()).
		Str("remaining", RemainingText(s)).
		Str("cadence", s.Mode.String()).
		Msg("Session status changed")
}

func (p *LogPresenter) Notify(title, subtitle, message string) {
	p.logger.Info().Str("subtitle", subtitle).Str("message", message).Msg(title)
}

func (p *LogPresenter) Alert(title, message string) {
	p.logger.Error().Str("message", message).Msg(title)
}
