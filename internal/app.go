package internal

import (
	"github.com/ternarybob/arbor"
)

// App wires the collaborators shared by every command.
type App struct {
	Config   Config
	Logger   arbor.ILogger
	Store    *Store
	Registry *ProfileRegistry
	CLI      *CLI
	Checker  IdentityChecker
	Oracle   ExpiryOracle
	Updates  *UpdateChecker

	alerted bool
}

// NewApp locates the aws binary once; if it is missing, the CLI stays
// unavailable for the life of the process.
func NewApp(cfg Config, logger arbor.ILogger) *App {
	store := NewStore(cfg.StateDir)

	cliPath := LocateCLI(cfg.CLIPath)
	if cliPath == "" {
		logger.Warn().Str("configured", cfg.CLIPath).Msg("AWS CLI not found")
	} else {
		logger.Debug().Str("path", cliPath).Msg("AWS CLI located")
	}
	cli := NewCLI(cliPath, cfg.Polling.CheckTimeout.Duration, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Registry: NewProfileRegistry(cfg.AWSConfigFile, store, logger),
		CLI:      cli,
		Checker:  NewIdentityChecker(cfg, cli, logger),
		Oracle:   NewExpiryOracle(cfg, store, logger),
		Updates:  NewUpdateChecker(store, logger),
	}
}

// NewReconciler builds a reconciler publishing to p, tracking profile or, when
// profile is empty, the persisted active profile. The missing-CLI alert is
// raised through the first presenter only.
func (a *App) NewReconciler(p Presenter, profile string) *Reconciler {
	if !a.CLI.Available() && !a.alerted {
		a.alerted = true
		p.Alert("AWS SSO Status",
			"Could not find AWS CLI on your system.\n\nPlease install it via Homebrew or pipx and restart.")
	}
	return NewReconciler(ReconcilerConfig{
		Registry:   a.Registry,
		Oracle:     a.Oracle,
		Checker:    a.Checker,
		Dispatcher: a.CLI,
		Presenter:  p,
		Profile:    profile,
		Logger:     a.Logger,
		Intervals:  a.Config.Intervals(),
		Thresholds: a.Config.Thresholds(),
	})
}
