package cmd

import (
	"fmt"

	"github.com/chukul/ssostat/internal"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, AWS CLI and expiry source information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ssostat version %s\n", internal.CurrentVersion)
		if app.CLI.Available() {
			fmt.Printf("aws cli:        %s\n", app.CLI.Path())
		} else {
			fmt.Println("aws cli:        not found")
		}
		fmt.Printf("identity check: %s\n", app.Config.Identity)
		fmt.Printf("expiry source:  %s\n", app.Config.ExpirySource)
		fmt.Printf("state dir:      %s\n", app.Config.StateDir)

		rel, err := app.Updates.Latest(cmd.Context())
		if err != nil {
			fmt.Printf("\nUnable to check for updates: %v\n", err)
			return
		}
		if internal.IsNewer(rel.Version, internal.CurrentVersion) {
			fmt.Printf("\n💡 Update available: %s → %s\n", internal.CurrentVersion, rel.Version)
			fmt.Printf("   Download: %s\n", rel.URL)
		} else {
			fmt.Println("\n✅ You're running the latest version")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
