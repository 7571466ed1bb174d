package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chukul/ssostat/internal"
	"github.com/chukul/ssostat/internal/ui"
	"github.com/spf13/cobra"
)

var loginTimeout time.Duration

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the login to be confirmed")
	rootCmd.AddCommand(loginCmd)
}

type profileChooser func(title string, options []string, initial string) (string, error)

// loginProfile returns the profile named on the command line, or asks choose
// to pick one of the discovered profiles.
func loginProfile(args []string, choose profileChooser) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return choose("Select Profile to Log In", app.Registry.Discover(), app.Registry.LoadActive())
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Run aws sso login for a profile and wait until it is confirmed",
	Long: `Makes the profile active, starts "aws sso login" in the background and polls the
live identity check every second until it succeeds. Without an argument you pick from
the SSO profiles found in the AWS config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loginProfile(args, ui.SelectProfile)
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		rec := app.NewReconciler(internal.NewLogPresenter(app.Logger), profile)
		if err := rec.RequestLogin(cmd.Context(), profile); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
		defer cancel()

		snap, err := ui.WaitFor(ctx, fmt.Sprintf("Waiting for login to '%s'...", profile), rec.WaitForLogin)
		switch {
		case errors.Is(err, ui.ErrCancelled):
			fmt.Println("❌ Cancelled.")
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			return fmt.Errorf("login for '%s' not confirmed within %s", profile, loginTimeout)
		case err != nil:
			return err
		}

		fmt.Printf("✅ Logged in to '%s'\n", snap.Profile)
		fmt.Printf("   %s\n", snap.ExpiryText())
		fmt.Printf("   %s\n", internal.RemainingText(snap))
		return nil
	},
}
