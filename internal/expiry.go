package internal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials/ssocreds"
	"github.com/ternarybob/arbor"
)

const loginKeyPrefix = "login_"

// ExpiryOracle decides when a profile's session is considered expired.
type ExpiryOracle interface {
	// RecordLogin notes a confirmed login for profile at the current time.
	RecordLogin(profile string)
	// Expiry returns the session expiry for profile, if one is known.
	Expiry(profile string) (time.Time, bool)
}

// TimestampOracle derives expiry from the last login this tool observed plus
// a fixed session length. The real SSO session may be shorter or longer, and
// logins made by other tools are not seen.
type TimestampOracle struct {
	store    *Store
	duration time.Duration
	now      func() time.Time
	logger   arbor.ILogger
}

func NewTimestampOracle(store *Store, duration time.Duration, now func() time.Time, logger arbor.ILogger) *TimestampOracle {
	if now == nil {
		now = time.Now
	}
	return &TimestampOracle{store: store, duration: duration, now: now, logger: logger}
}

func (o *TimestampOracle) RecordLogin(profile string) {
	ts := o.now().UTC().Format(time.RFC3339Nano)
	if err := o.store.Write(loginKeyPrefix+profile, ts); err != nil {
		o.logger.Warn().Err(err).Str("profile", profile).Msg("Failed to record login")
		return
	}
	o.logger.Info().Str("profile", profile).Str("at", ts).Msg("Login recorded")
}

func (o *TimestampOracle) Expiry(profile string) (time.Time, bool) {
	raw, err := o.store.Read(loginKeyPrefix + profile)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			o.logger.Warn().Err(err).Str("profile", profile).Msg("Failed to read login timestamp")
		}
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		o.logger.Warn().Err(err).Str("profile", profile).Msg("Ignoring unparsable login timestamp")
		return time.Time{}, false
	}
	return ts.Add(o.duration).Local(), true
}

// LoginTime returns the recorded login instant for profile.
func (o *TimestampOracle) LoginTime(profile string) (time.Time, bool) {
	expiry, ok := o.Expiry(profile)
	if !ok {
		return time.Time{}, false
	}
	return expiry.Add(-o.duration), true
}

// cliCacheEntry is the part of an AWS CLI credential cache file we read.
type cliCacheEntry struct {
	Credentials struct {
		Expiration string `json:"Expiration"`
	} `json:"Credentials"`
}

// CacheOracle reads the expiration of the most recently modified AWS CLI
// credential cache file. The cache is not scoped per profile, so profile is
// ignored, and RecordLogin does nothing.
type CacheOracle struct {
	dir    string
	logger arbor.ILogger
}

func NewCacheOracle(dir string, logger arbor.ILogger) *CacheOracle {
	return &CacheOracle{dir: dir, logger: logger}
}

func (o *CacheOracle) RecordLogin(string) {}

func (o *CacheOracle) Expiry(string) (time.Time, bool) {
	latest := latestJSON(o.dir)
	if latest == "" {
		return time.Time{}, false
	}
	data, err := os.ReadFile(latest)
	if err != nil {
		o.logger.Debug().Err(err).Str("file", latest).Msg("Failed to read cli cache")
		return time.Time{}, false
	}
	var entry cliCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Credentials.Expiration == "" {
		return time.Time{}, false
	}
	exp, err := time.Parse(time.RFC3339, entry.Credentials.Expiration)
	if err != nil {
		return time.Time{}, false
	}
	return exp.Local(), true
}

func latestJSON(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return ""
	}
	var latest string
	var latestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest, latestMod = m, info.ModTime()
		}
	}
	return latest
}

// ssoToken is the part of an SSO token cache file we read.
type ssoToken struct {
	ExpiresAt string `json:"expiresAt"`
}

// Older CLI versions wrote expiresAt with a literal UTC suffix.
var ssoTokenTimeFormats = []string{time.RFC3339, "2006-01-02T15:04:05UTC"}

// TokenOracle reads the expiry of the SSO access token the AWS CLI cached for
// a profile's sso-session or start URL. Logins are observed through the
// cache, so RecordLogin does nothing.
type TokenOracle struct {
	profiles func(name string) (ProfileInfo, bool)
	dir      string
	logger   arbor.ILogger
}

func NewTokenOracle(profiles func(name string) (ProfileInfo, bool), dir string, logger arbor.ILogger) *TokenOracle {
	return &TokenOracle{profiles: profiles, dir: dir, logger: logger}
}

func (o *TokenOracle) RecordLogin(string) {}

// TokenPath returns the cache file for profile, or "" when the profile has no
// SSO settings.
func (o *TokenOracle) TokenPath(profile string) string {
	info, ok := o.profiles(profile)
	if !ok || info.TokenCacheKey() == "" {
		return ""
	}
	standard, err := ssocreds.StandardCachedTokenFilepath(info.TokenCacheKey())
	if err != nil {
		o.logger.Debug().Err(err).Str("profile", profile).Msg("Failed to resolve sso token path")
		return ""
	}
	return filepath.Join(o.dir, filepath.Base(standard))
}

func (o *TokenOracle) Expiry(profile string) (time.Time, bool) {
	path := o.TokenPath(profile)
	if path == "" {
		return time.Time{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			o.logger.Debug().Err(err).Str("file", path).Msg("Failed to read sso token cache")
		}
		return time.Time{}, false
	}
	var token ssoToken
	if err := json.Unmarshal(data, &token); err != nil || token.ExpiresAt == "" {
		return time.Time{}, false
	}
	for _, layout := range ssoTokenTimeFormats {
		if exp, err := time.Parse(layout, token.ExpiresAt); err == nil {
			return exp.Local(), true
		}
	}
	o.logger.Warn().Str("file", path).Str("expires_at", token.ExpiresAt).Msg("Ignoring unparsable sso token expiry")
	return time.Time{}, false
}

// NewExpiryOracle builds the oracle selected by cfg.ExpirySource.
func NewExpiryOracle(cfg Config, store *Store, logger arbor.ILogger) ExpiryOracle {
	switch cfg.ExpirySource {
	case ExpirySourceCLICache:
		return NewCacheOracle(cfg.CLICacheDir, logger)
	case ExpirySourceSSOToken:
		lookup := func(name string) (ProfileInfo, bool) {
			return LookupProfile(cfg.AWSConfigFile, name)
		}
		return NewTokenOracle(lookup, cfg.SSOCacheDir, logger)
	}
	return NewTimestampOracle(store, cfg.Session.Duration.Duration, time.Now, logger)
}
