package cmd

import (
	"github.com/chukul/ssostat/internal/ui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live session status and refresh logins interactively",
	Long: `Polls the active profile's login state, shows the estimated expiry and time left,
and polls faster as expiry approaches. Pick a profile and press enter to run "aws sso login" for it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.Watch(cmd.Context(), app)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
