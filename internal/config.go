package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/pelletier/go-toml/v2"
)

const (
	IdentityCheckerCLI = "cli"
	IdentityCheckerSDK = "sdk"

	ExpirySourceTimestamp = "timestamp"
	ExpirySourceCLICache  = "cli-cache"
	ExpirySourceSSOToken  = "sso-token"

	configFileName = "config.toml"
)

// Config holds the tool's own settings. It is loaded from defaults, then
// <state dir>/config.toml, then the environment.
type Config struct {
	StateDir      string        `toml:"-"`
	AWSConfigFile string        `toml:"aws_config_file"`
	CLIPath       string        `toml:"cli_path"`        // empty = search PATH
	Identity      string        `toml:"identity_checker"` // "cli" or "sdk"
	ExpirySource  string        `toml:"expiry_source"`   // "timestamp", "cli-cache" or "sso-token"
	CLICacheDir   string        `toml:"cli_cache_dir"`
	SSOCacheDir   string        `toml:"sso_cache_dir"`
	Session       SessionConfig `toml:"session"`
	Polling       PollingConfig `toml:"polling"`
	Logging       LoggingConfig `toml:"logging"`
}

type SessionConfig struct {
	Duration          Duration `toml:"duration"`
	WarningMinutes    int      `toml:"warning_minutes"`
	AggressiveMinutes int      `toml:"aggressive_minutes"`
}

type PollingConfig struct {
	Normal       Duration `toml:"normal"`
	Aggressive   Duration `toml:"aggressive"`
	Fast         Duration `toml:"fast"`
	CheckTimeout Duration `toml:"check_timeout"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "file", "console"
}

// Duration is a time.Duration that reads from TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// DefaultConfig returns the built-in settings rooted at stateDir.
func DefaultConfig(stateDir string) Config {
	home, _ := os.UserHomeDir()
	return Config{
		StateDir:      stateDir,
		AWSConfigFile: config.DefaultSharedConfigFilename(),
		Identity:      IdentityCheckerCLI,
		ExpirySource:  ExpirySourceTimestamp,
		CLICacheDir:   filepath.Join(home, ".aws", "cli", "cache"),
		SSOCacheDir:   filepath.Join(home, ".aws", "sso", "cache"),
		Session: SessionConfig{
			Duration:          Duration{8 * time.Hour},
			WarningMinutes:    10,
			AggressiveMinutes: 5,
		},
		Polling: PollingConfig{
			Normal:       Duration{60 * time.Second},
			Aggressive:   Duration{15 * time.Second},
			Fast:         Duration{1 * time.Second},
			CheckTimeout: Duration{30 * time.Second},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"file"},
		},
	}
}

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	stateDir := env.Getenv("SSOSTAT_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("home dir: %w", err)
		}
		stateDir = filepath.Join(home, ".ssostat")
	}

	cfg := DefaultConfig(stateDir)

	data, err := os.ReadFile(filepath.Join(stateDir, configFileName))
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configFileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", configFileName, err)
	}

	if raw := env.Getenv("AWS_CONFIG_FILE"); raw != "" {
		cfg.AWSConfigFile = raw
	}
	if raw := env.Getenv("SSOSTAT_CLI"); raw != "" {
		cfg.CLIPath = raw
	}
	if raw := env.Getenv("SSOSTAT_LOG_LEVEL"); raw != "" {
		cfg.Logging.Level = raw
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Identity {
	case IdentityCheckerCLI, IdentityCheckerSDK:
	default:
		return fmt.Errorf("invalid identity_checker %q", c.Identity)
	}
	switch c.ExpirySource {
	case ExpirySourceTimestamp, ExpirySourceCLICache, ExpirySourceSSOToken:
	default:
		return fmt.Errorf("invalid expiry_source %q", c.ExpirySource)
	}
	if c.Session.Duration.Duration <= 0 {
		return fmt.Errorf("invalid session.duration")
	}
	if c.Session.AggressiveMinutes < 0 || c.Session.WarningMinutes < 0 {
		return fmt.Errorf("invalid session thresholds")
	}
	if c.Polling.Normal.Duration <= 0 || c.Polling.Aggressive.Duration <= 0 || c.Polling.Fast.Duration <= 0 {
		return fmt.Errorf("polling intervals must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

func (c Config) Intervals() Intervals {
	return Intervals{
		Normal:     c.Polling.Normal.Duration,
		Aggressive: c.Polling.Aggressive.Duration,
		Fast:       c.Polling.Fast.Duration,
	}
}

func (c Config) Thresholds() Thresholds {
	return Thresholds{
		WarningMinutes:    c.Session.WarningMinutes,
		AggressiveMinutes: c.Session.AggressiveMinutes,
	}
}
