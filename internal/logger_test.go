package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "state"))
	cfg.Logging.Level = "debug"
	cfg.Logging.Output = []string{"file"}

	logger := InitLogger(cfg)
	require.NotNil(t, logger)
	assert.Equal(t, filepath.Join(cfg.StateDir, "ssostat.log"), LogFilePath(cfg))
	assert.DirExists(t, cfg.StateDir)

	// A presenter on top of it logs status changes without failing.
	p := NewLogPresenter(logger)
	snap := Snapshot{Profile: "prod", LoggedIn: true, Level: LevelOK, Expiry: time.Now().Add(time.Hour), MinutesRemaining: 60}
	p.Publish(snap)
	p.Publish(snap)
	require.NotNil(t, p.last)
	assert.Equal(t, snap, *p.last)

	snap.Level = LevelWarning
	p.Publish(snap)
	assert.Equal(t, LevelWarning, p.last.Level)
	p.Notify("AWS SSO", "Login confirmed", "Session refreshed successfully.")
	p.Alert("AWS SSO Status", "AWS CLI not found. Cannot refresh login.")
}
