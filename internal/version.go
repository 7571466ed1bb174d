package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// CurrentVersion is set with -ldflags "-X github.com/chukul/ssostat/internal.CurrentVersion=..."
var CurrentVersion = "v0.1.0"

const (
	releasesURL         = "https://api.github.com/repos/chukul/ssostat/releases/latest"
	updateCheckKey      = "update_check"
	updateCheckInterval = 24 * time.Hour
)

// Release is the latest published release.
type Release struct {
	Version string `json:"tag_name"`
	URL     string `json:"html_url"`
}

type updateCheck struct {
	CheckedAt time.Time `json:"checked_at"`
	Latest    string    `json:"latest"`
}

// UpdateChecker looks up the latest release at most once per interval,
// remembering the last lookup in the state store.
type UpdateChecker struct {
	url      string
	client   *http.Client
	store    *Store
	interval time.Duration
	now      func() time.Time
	logger   arbor.ILogger
}

func NewUpdateChecker(store *Store, logger arbor.ILogger) *UpdateChecker {
	return &UpdateChecker{
		url:      releasesURL,
		client:   &http.Client{Timeout: 3 * time.Second},
		store:    store,
		interval: updateCheckInterval,
		now:      time.Now,
		logger:   logger,
	}
}

// Latest fetches the latest release regardless of when it was last checked.
func (u *UpdateChecker) Latest(ctx context.Context) (Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("release lookup: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Release{}, err
	}
	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return Release{}, fmt.Errorf("decode release: %w", err)
	}
	u.remember(rel.Version)
	return rel, nil
}

// Due reports whether the last lookup is older than the check interval.
func (u *UpdateChecker) Due() bool {
	raw, err := u.store.Read(updateCheckKey)
	if err != nil {
		return true
	}
	var last updateCheck
	if err := json.Unmarshal([]byte(raw), &last); err != nil {
		return true
	}
	return u.now().Sub(last.CheckedAt) > u.interval
}

func (u *UpdateChecker) remember(latest string) {
	data, _ := json.Marshal(updateCheck{CheckedAt: u.now(), Latest: latest})
	if err := u.store.Write(updateCheckKey, string(data)); err != nil {
		u.logger.Debug().Err(err).Msg("Failed to save update check")
	}
}

// Notify runs a lookup in the background when one is due and calls found
// with a newer release. Failures are only logged.
func (u *UpdateChecker) Notify(ctx context.Context, found func(Release)) {
	if !u.Due() {
		return
	}
	go func() {
		rel, err := u.Latest(ctx)
		if err != nil {
			u.logger.Debug().Err(err).Msg("Update check failed")
			return
		}
		if IsNewer(rel.Version, CurrentVersion) {
			found(rel)
		}
	}()
}

// IsNewer compares dotted numeric versions, ignoring a leading "v".
func IsNewer(latest, current string) bool {
	lp := strings.Split(strings.TrimPrefix(latest, "v"), ".")
	cp := strings.Split(strings.TrimPrefix(current, "v"), ".")
	for i := 0; i < len(lp) || i < len(cp); i++ {
		var l, c int
		if i < len(lp) {
			fmt.Sscanf(lp[i], "%d", &l)
		}
		if i < len(cp) {
			fmt.Sscanf(cp[i], "%d", &c)
		}
		if l != c {
			return l > c
		}
	}
	return false
}
