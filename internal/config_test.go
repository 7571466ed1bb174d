package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string { return m[key] }

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigFromEnv(mapEnv{"SSOSTAT_HOME": dir})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.StateDir)
	assert.Equal(t, IdentityCheckerCLI, cfg.Identity)
	assert.Equal(t, ExpirySourceTimestamp, cfg.ExpirySource)
	assert.Equal(t, 8*time.Hour, cfg.Session.Duration.Duration)
	assert.Equal(t, Thresholds{WarningMinutes: 10, AggressiveMinutes: 5}, cfg.Thresholds())
	assert.Equal(t, Intervals{
		Normal:     60 * time.Second,
		Aggressive: 15 * time.Second,
		Fast:       time.Second,
	}, cfg.Intervals())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	toml := `
identity_checker = "sdk"
expiry_source = "cli-cache"

[session]
duration = "12h"
warning_minutes = 20

[polling]
normal = "2m"
fast = "500ms"

[logging]
level = "debug"
output = ["console"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0600))

	cfg, err := LoadConfigFromEnv(mapEnv{
		"SSOSTAT_HOME":      dir,
		"AWS_CONFIG_FILE":   "/tmp/aws-config",
		"SSOSTAT_CLI":       "/opt/aws/bin/aws",
		"SSOSTAT_LOG_LEVEL": "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, IdentityCheckerSDK, cfg.Identity)
	assert.Equal(t, ExpirySourceCLICache, cfg.ExpirySource)
	assert.Equal(t, 12*time.Hour, cfg.Session.Duration.Duration)
	assert.Equal(t, 20, cfg.Session.WarningMinutes)
	assert.Equal(t, 5, cfg.Session.AggressiveMinutes, "unset keys keep their defaults")
	assert.Equal(t, 2*time.Minute, cfg.Polling.Normal.Duration)
	assert.Equal(t, 15*time.Second, cfg.Polling.Aggressive.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Polling.Fast.Duration)
	assert.Equal(t, []string{"console"}, cfg.Logging.Output)

	assert.Equal(t, "/tmp/aws-config", cfg.AWSConfigFile)
	assert.Equal(t, "/opt/aws/bin/aws", cfg.CLIPath)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad toml":        `identity_checker = `,
		"bad duration":    "[session]\nduration = \"soon\"\n",
		"bad checker":     `identity_checker = "keychain"`,
		"bad source":      `expiry_source = "guess"`,
		"zero interval":   "[polling]\nfast = \"0s\"\n",
		"bad log level":   "[logging]\nlevel = \"loud\"\n",
		"negative window": "[session]\naggressive_minutes = -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0600))

			_, err := LoadConfigFromEnv(mapEnv{"SSOSTAT_HOME": dir})
			assert.Error(t, err)
		})
	}
}
