package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/ternarybob/arbor"
)

// SDKIdentityChecker calls STS GetCallerIdentity in-process, resolving the
// profile from the shared config files (including its SSO token cache).
type SDKIdentityChecker struct {
	timeout time.Duration
	logger  arbor.ILogger
}

func NewSDKIdentityChecker(timeout time.Duration, logger arbor.ILogger) *SDKIdentityChecker {
	return &SDKIdentityChecker{timeout: timeout, logger: logger}
}

func (c *SDKIdentityChecker) CheckIdentity(ctx context.Context, profile string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("get-caller-identity: %w", err)
	}
	c.logger.Debug().
		Str("profile", profile).
		Str("arn", aws.ToString(out.Arn)).
		Msg("Caller identity confirmed")
	return nil
}

// NewIdentityChecker returns the checker selected by cfg.Identity. The CLI
// checker shares cli with the login dispatcher.
func NewIdentityChecker(cfg Config, cli *CLI, logger arbor.ILogger) IdentityChecker {
	if cfg.Identity == IdentityCheckerSDK {
		return NewSDKIdentityChecker(cfg.Polling.CheckTimeout.Duration, logger)
	}
	return cli
}
