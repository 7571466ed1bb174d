package internal

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
)

const (
	DefaultProfile   = "default"
	activeProfileKey = "active_profile"
	profilePrefix    = "profile "
)

// ProfileInfo is the SSO part of one profile section.
type ProfileInfo struct {
	Name       string
	SSOSession string
	StartURL   string
}

// TokenCacheKey is the key the AWS CLI hashes to name the profile's SSO token
// cache file: the sso-session name when set, else the start URL.
func (p ProfileInfo) TokenCacheKey() string {
	if p.SSOSession != "" {
		return p.SSOSession
	}
	return p.StartURL
}

// readProfiles scans the AWS shared config file for [default] and
// [profile name] sections that set sso_start_url or sso_session. Repeated
// sections are merged into the first occurrence.
func readProfiles(configPath string) ([]ProfileInfo, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var profiles []ProfileInfo
	index := make(map[string]int)
	current := ""
	eligible := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		// Section header
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			current, eligible = sectionProfile(strings.TrimSpace(strings.Trim(trimmed, "[]")))
			continue
		}

		if !eligible {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key != "sso_start_url" && key != "sso_session" {
			continue
		}

		i, seen := index[current]
		if !seen {
			i = len(profiles)
			index[current] = i
			profiles = append(profiles, ProfileInfo{Name: current})
		}
		if key == "sso_session" && profiles[i].SSOSession == "" {
			profiles[i].SSOSession = value
		}
		if key == "sso_start_url" && profiles[i].StartURL == "" {
			profiles[i].StartURL = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DiscoverProfiles lists SSO-enabled profiles in the AWS shared config file,
// in file order. Anything that goes wrong, including finding no SSO
// profile, yields just "default".
func DiscoverProfiles(configPath string) []string {
	profiles, err := readProfiles(configPath)
	if err != nil || len(profiles) == 0 {
		return []string{DefaultProfile}
	}
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// LookupProfile returns the SSO settings of the named profile.
func LookupProfile(configPath, name string) (ProfileInfo, bool) {
	profiles, err := readProfiles(configPath)
	if err != nil {
		return ProfileInfo{}, false
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileInfo{}, false
}

// sectionProfile maps a section name to the profile it configures.
func sectionProfile(section string) (string, bool) {
	if section == DefaultProfile {
		return DefaultProfile, true
	}
	if strings.HasPrefix(section, profilePrefix) {
		name := strings.TrimSpace(strings.TrimPrefix(section, profilePrefix))
		return name, name != ""
	}
	return "", false
}

// ProfileRegistry discovers profiles and remembers which one is active.
type ProfileRegistry struct {
	configPath string
	store      *Store
	logger     arbor.ILogger
}

func NewProfileRegistry(configPath string, store *Store, logger arbor.ILogger) *ProfileRegistry {
	return &ProfileRegistry{configPath: configPath, store: store, logger: logger}
}

func (r *ProfileRegistry) Discover() []string {
	return DiscoverProfiles(r.configPath)
}

func (r *ProfileRegistry) Lookup(name string) (ProfileInfo, bool) {
	return LookupProfile(r.configPath, name)
}

// LoadActive returns the persisted active profile, or "default".
func (r *ProfileRegistry) LoadActive() string {
	name, err := r.store.Read(activeProfileKey)
	if err != nil {
		if !errors.Is(err, ErrNoValue) {
			r.logger.Warn().Err(err).Msg("Failed to read active profile")
		}
		return DefaultProfile
	}
	return name
}

// SaveActive persists name as the active profile. A failed write only means
// the selection will not survive a restart.
func (r *ProfileRegistry) SaveActive(name string) {
	if err := r.store.Write(activeProfileKey, name); err != nil {
		r.logger.Warn().Err(err).Str("profile", name).Msg("Failed to save active profile")
	}
}
