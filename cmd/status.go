package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/chukul/ssostat/internal"
	"github.com/chukul/ssostat/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	statusProfile string
	outputJSON    bool
)

// stderrPresenter reports alerts and notifications on stderr and leaves the
// snapshot to the caller.
type stderrPresenter struct{}

func (stderrPresenter) Publish(internal.Snapshot) {}

func (stderrPresenter) Notify(title, subtitle, message string) {
	fmt.Fprintf(os.Stderr, "🔔 %s: %s. %s\n", title, subtitle, message)
}

func (stderrPresenter) Alert(title, message string) {
	fmt.Fprintf(os.Stderr, "❌ %s: %s\n", title, message)
}

func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the login state and expiry of the active profile once",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := app.NewReconciler(stderrPresenter{}, statusProfile)
		snap := rec.Tick(cmd.Context())

		if outputJSON {
			jsonData, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(jsonData))
			return nil
		}

		printSnapshot(snap, isTTY())
		if snap.Level == internal.LevelExpired {
			os.Exit(2)
		}
		return nil
	},
}

func printSnapshot(s internal.Snapshot, color bool) {
	glyph := s.Level.Glyph()
	header := "AWS SSO Login"
	if color {
		glyph = ui.LevelStyle(s.Level).Render(glyph)
		header = lipgloss.NewStyle().Bold(true).Render(header)
	}

	loggedIn := "no"
	if s.LoggedIn {
		loggedIn = "yes"
	}

	fmt.Printf("%s %s (%s)\n", glyph, header, s.Profile)
	fmt.Printf("   Logged in: %s\n", loggedIn)
	fmt.Printf("   %s\n", s.ExpiryText())
	fmt.Printf("   %s\n", internal.RemainingText(s))
}

func init() {
	statusCmd.Flags().StringVar(&statusProfile, "profile", "", "Check this profile instead of the active one")
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output the status snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}
