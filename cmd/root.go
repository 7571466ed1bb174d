package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chukul/ssostat/internal"
	"github.com/spf13/cobra"
)

// Shared by every command; set up in PersistentPreRunE.
var app *internal.App

func printLogo() {
	// Gradient colors (Orange -> Pink)
	// Orange: 255, 153, 0
	// Pink: 255, 0, 128
	line := "  ssostat · AWS SSO session status"

	fmt.Println()
	for i, char := range line {
		ratio := float64(i) / float64(len(line))
		r := 255
		g := int(153 * (1 - ratio))
		b := int(128 * ratio)
		fmt.Printf("\x1b[1;38;2;%d;%d;%dm%c\x1b[0m", r, g, b, char)
	}
	fmt.Println()
	fmt.Println("  Watches SSO login expiry for your AWS CLI profiles and re-runs `aws sso login` on demand")
	fmt.Println()
}

var rootCmd = &cobra.Command{
	Use:           "ssostat",
	Short:         "ssostat shows whether your AWS SSO session is still logged in",
	Long:          `ssostat tracks the login state and estimated expiry of an AWS SSO profile, polls faster as expiry approaches, and starts a new login when asked.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger := internal.InitLogger(cfg)
		app = internal.NewApp(cfg, logger)

		// Check for updates on every command (non-blocking)
		app.Updates.Notify(cmd.Context(), func(rel internal.Release) {
			fmt.Fprintf(os.Stderr, "\n💡 Update available: %s → %s\n", internal.CurrentVersion, rel.Version)
			fmt.Fprintf(os.Stderr, "   Download: %s\n\n", rel.URL)
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCmd.RunE(cmd, args)
	},
}

// Execute runs the CLI
func Execute() {
	if len(os.Args) > 1 && os.Args[1] == "help" {
		printLogo()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
