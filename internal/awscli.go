package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

const fallbackCLIPath = "/usr/local/bin/aws"

// ErrCLIUnavailable is returned by every CLI operation when the aws binary
// was not found at startup.
var ErrCLIUnavailable = errors.New("aws cli not available")

// IdentityChecker confirms that credentials for a profile are usable right
// now. A nil error means logged in.
type IdentityChecker interface {
	CheckIdentity(ctx context.Context, profile string) error
}

// LoginDispatcher starts an interactive login for a profile and returns
// without waiting for it to finish.
type LoginDispatcher interface {
	Dispatch(profile string) error
}

// LocateCLI resolves the aws binary: an explicit path, then PATH, then
// /usr/local/bin/aws. It returns "" when none exists. Discovery is done once.
func LocateCLI(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	if path, err := exec.LookPath("aws"); err == nil {
		return path
	}
	if _, err := os.Stat(fallbackCLIPath); err == nil {
		return fallbackCLIPath
	}
	return ""
}

// CLI runs the aws binary as an opaque collaborator.
type CLI struct {
	path    string
	timeout time.Duration
	logger  arbor.ILogger
}

// NewCLI wraps the binary at path. An empty path makes every call return
// ErrCLIUnavailable.
func NewCLI(path string, timeout time.Duration, logger arbor.ILogger) *CLI {
	return &CLI{path: path, timeout: timeout, logger: logger}
}

func (c *CLI) Available() bool {
	return c.path != ""
}

func (c *CLI) Path() string {
	return c.path
}

func profileArgs(args []string, profile string) []string {
	if profile == "" {
		return args
	}
	return append(args, "--profile", profile)
}

// CheckIdentity runs `aws sts get-caller-identity`.
func (c *CLI) CheckIdentity(ctx context.Context, profile string) error {
	if !c.Available() {
		return ErrCLIUnavailable
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, profileArgs([]string{"sts", "get-caller-identity"}, profile)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("get-caller-identity: %w: %s", err, msg)
		}
		return fmt.Errorf("get-caller-identity: %w", err)
	}
	return nil
}

// Dispatch starts `aws sso login` in the background. The process is reaped
// in its own goroutine; its exit status is only logged.
func (c *CLI) Dispatch(profile string) error {
	if !c.Available() {
		return ErrCLIUnavailable
	}
	cmd := exec.Command(c.path, profileArgs([]string{"sso", "login"}, profile)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start sso login: %w", err)
	}
	go func() {
		err := cmd.Wait()
		c.logger.Debug().Err(err).Str("profile", profile).Msg("sso login exited")
	}()
	return nil
}
