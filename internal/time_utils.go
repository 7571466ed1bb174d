package internal

import (
	"fmt"
	"time"
)

const (
	// DisplayTimeFormat is the clock format used in expiry text
	DisplayTimeFormat = "3:04PM"
	// LogTimeFormat is the short time format used in daemon logs
	LogTimeFormat = "15:04:05"
)

// ExpiryText describes when a session expires relative to now, in now's
// location: "Expires today at 3:04PM", "Expires tomorrow at 9:00AM" or
// "Expires Jan 2 at 9:00AM".
func ExpiryText(expiry, now time.Time) string {
	if expiry.IsZero() {
		return "Expires at: —"
	}
	expiry = expiry.In(now.Location())

	ey, em, ed := expiry.Date()
	ny, nm, nd := now.Date()
	ty, tm, td := now.AddDate(0, 0, 1).Date()

	clock := expiry.Format(DisplayTimeFormat)
	switch {
	case ey == ny && em == nm && ed == nd:
		return "Expires today at " + clock
	case ey == ty && em == tm && ed == td:
		return "Expires tomorrow at " + clock
	default:
		return fmt.Sprintf("Expires %s at %s", expiry.Format("Jan 2"), clock)
	}
}

// RemainingText renders whole minutes left as "Time left: 2h 05m" or
// "Time left: 7m".
func RemainingText(s Snapshot) string {
	if !s.HasExpiry() {
		return "Time left: —"
	}
	if s.MinutesRemaining <= 0 {
		return "Time left: expired"
	}
	return "Time left: " + FormatMinutes(s.MinutesRemaining)
}

func FormatMinutes(total int) string {
	hours := total / 60
	minutes := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatLog formats the given time in the short log format
func FormatLog(t time.Time) string {
	return t.Local().Format(LogTimeFormat)
}
