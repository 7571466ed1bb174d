package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List SSO-enabled profiles from the AWS config file",
	Run: func(cmd *cobra.Command, args []string) {
		active := app.Registry.LoadActive()
		for _, p := range app.Registry.Discover() {
			marker := "  "
			if p == active {
				marker = "➜ "
			}
			fmt.Println(marker + "📦 " + p)
		}
	},
}
