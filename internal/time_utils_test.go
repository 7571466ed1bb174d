package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryText(t *testing.T) {
	now := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, "Expires at: —", ExpiryText(time.Time{}, now))
	assert.Equal(t, "Expires today at 10:00PM", ExpiryText(now.Add(8*time.Hour), now))
	assert.Equal(t, "Expires tomorrow at 9:05AM",
		ExpiryText(time.Date(2026, 5, 11, 9, 5, 0, 0, time.UTC), now))
	assert.Equal(t, "Expires May 13 at 1:00AM",
		ExpiryText(time.Date(2026, 5, 13, 1, 0, 0, 0, time.UTC), now))
}

func TestExpiryTextUsesNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2026, 5, 10, 20, 0, 0, 0, zone)
	// 16:00 UTC is 01:00 the next day at UTC+9.
	expiry := time.Date(2026, 5, 10, 16, 0, 0, 0, time.UTC)

	assert.Equal(t, "Expires tomorrow at 1:00AM", ExpiryText(expiry, now))
}

func TestSnapshotExpiryTextUsesCheckTime(t *testing.T) {
	checkedAt := time.Date(2026, 5, 10, 23, 30, 0, 0, time.UTC)
	snap := Snapshot{Expiry: checkedAt.Add(2 * time.Hour), CheckedAt: checkedAt}

	assert.Equal(t, "Expires tomorrow at 1:30AM", snap.ExpiryText())
	assert.Equal(t, "Expires at: —", Snapshot{CheckedAt: checkedAt}.ExpiryText())
}

func TestRemainingText(t *testing.T) {
	expiry := time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, "Time left: —", RemainingText(Snapshot{}))
	assert.Equal(t, "Time left: expired", RemainingText(Snapshot{Expiry: expiry, MinutesRemaining: 0}))
	assert.Equal(t, "Time left: 7m", RemainingText(Snapshot{Expiry: expiry, MinutesRemaining: 7}))
	assert.Equal(t, "Time left: 2h 05m", RemainingText(Snapshot{Expiry: expiry, MinutesRemaining: 125}))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "59m", FormatMinutes(59))
	assert.Equal(t, "1h 00m", FormatMinutes(60))
	assert.Equal(t, "7h 59m", FormatMinutes(479))
}
