package internal

import (
	"encoding/json"
	"time"
)

// Level is the three-way session status shown to the user.
type Level int

const (
	LevelExpired Level = iota
	LevelWarning
	LevelOK
)

func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelWarning:
		return "warning"
	default:
		return "expired"
	}
}

// Glyph is the short status mark used in the status line.
func (l Level) Glyph() string {
	switch l {
	case LevelOK:
		return "✓"
	case LevelWarning:
		return "⚠"
	default:
		return "✕"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Cadence is the polling regime of the reconciler.
type Cadence int

const (
	CadenceNormal Cadence = iota
	CadenceAggressive
	CadenceFast
)

func (c Cadence) String() string {
	switch c {
	case CadenceAggressive:
		return "aggressive"
	case CadenceFast:
		return "fast"
	default:
		return "normal"
	}
}

func (c Cadence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

type Intervals struct {
	Normal     time.Duration
	Aggressive time.Duration
	Fast       time.Duration
}

func (i Intervals) For(c Cadence) time.Duration {
	switch c {
	case CadenceAggressive:
		return i.Aggressive
	case CadenceFast:
		return i.Fast
	default:
		return i.Normal
	}
}

type Thresholds struct {
	// WarningMinutes: remaining minutes below which the level is Warning.
	WarningMinutes int
	// AggressiveMinutes: remaining minutes at or below which polling speeds up.
	AggressiveMinutes int
}

// Snapshot is the result of one reconciliation tick. Expiry and
// MinutesRemaining are only meaningful when HasExpiry reports true.
type Snapshot struct {
	Profile          string    `json:"profile"`
	LoggedIn         bool      `json:"logged_in"`
	Expiry           time.Time `json:"expiry,omitzero"`
	MinutesRemaining int       `json:"minutes_remaining"`
	Level            Level     `json:"level"`
	Mode             Cadence   `json:"mode"`
	CheckedAt        time.Time `json:"checked_at"`
}

func (s Snapshot) HasExpiry() bool {
	return !s.Expiry.IsZero()
}

// ExpiryText describes the expiry relative to the moment the snapshot was
// taken.
func (s Snapshot) ExpiryText() string {
	return ExpiryText(s.Expiry, s.CheckedAt)
}

// LevelFor maps remaining minutes onto a status level.
func LevelFor(minutesRemaining int, t Thresholds) Level {
	switch {
	case minutesRemaining <= 0:
		return LevelExpired
	case minutesRemaining < t.WarningMinutes:
		return LevelWarning
	default:
		return LevelOK
	}
}

// AggressiveEligible reports whether remaining time is inside the
// near-expiry polling window.
func AggressiveEligible(minutesRemaining int, t Thresholds) bool {
	return minutesRemaining > 0 && minutesRemaining <= t.AggressiveMinutes
}
