package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/chukul/ssostat/internal"
	"github.com/spf13/cobra"
)

// promptState reads persisted state only: no identity check, so it is fast
// enough to run on every shell prompt.
func promptState() (profile string, expiry time.Time, minutes int, ok bool) {
	profile = app.Registry.LoadActive()
	expiry, ok = app.Oracle.Expiry(profile)
	if ok {
		minutes = int(math.Floor(time.Until(expiry).Minutes()))
	}
	return profile, expiry, minutes, ok
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Display the active profile's estimated time left for a shell prompt",
	Long:  `Display the active SSO profile and its estimated time left, formatted for shell prompts. Uses only locally recorded logins.`,
	Run: func(cmd *cobra.Command, args []string) {
		profile, _, minutes, ok := promptState()
		if !ok {
			return // No output if no login was recorded
		}

		if minutes <= 0 {
			fmt.Printf("☁️  %s (expired)", profile)
			return
		}

		level := internal.LevelFor(minutes, app.Config.Thresholds())
		if level == internal.LevelWarning {
			fmt.Printf("☁️  %s %s(%dm)", profile, level.Glyph(), minutes)
			return
		}
		hours := minutes / 60
		if hours > 0 {
			fmt.Printf("☁️  %s (%dh%dm)", profile, hours, minutes%60)
		} else {
			fmt.Printf("☁️  %s (%dm)", profile, minutes)
		}
	},
}

var promptInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display the active profile's estimated session state in JSON format",
	Run: func(cmd *cobra.Command, args []string) {
		profile, expiry, minutes, ok := promptState()
		info := map[string]interface{}{
			"profile": profile,
			"expired": !ok || minutes <= 0,
		}
		if ok {
			info["expiration"] = expiry.Format(time.RFC3339)
			info["remaining"] = int(time.Until(expiry).Seconds())
			info["level"] = internal.LevelFor(minutes, app.Config.Thresholds()).String()
		}
		if ts, ok := app.Oracle.(*internal.TimestampOracle); ok {
			if at, found := ts.LoginTime(profile); found {
				info["logged_in_at"] = at.Format(time.RFC3339)
			}
		}

		output, _ := json.Marshal(info)
		fmt.Println(string(output))
	},
}

var promptSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Show shell integration setup instructions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(`
Shell Prompt Integration Setup
================================

Add the active SSO profile and its time left to your shell prompt:

Bash (~/.bashrc or ~/.bash_profile):
------------------------------------
ssostat_prompt() {
  ssostat prompt 2>/dev/null
}

PS1='$(ssostat_prompt) \u@\h:\w\$ '


Zsh (~/.zshrc):
---------------
ssostat_prompt() {
  ssostat prompt 2>/dev/null
}

setopt PROMPT_SUBST
PROMPT='$(ssostat_prompt) %n@%m:%~%# '


Fish (~/.config/fish/config.fish):
----------------------------------
function fish_prompt
    set_color green
    ssostat prompt 2>/dev/null
    set_color normal
    echo -n ' '
    set_color blue
    echo -n (whoami)@(hostname):(prompt_pwd)
    set_color normal
    echo -n '> '
end


After setup, your prompt will show:
☁️  prod (7h42m) user@host:~$

The estimate comes from the last login ssostat confirmed ("ssostat login" or the
watch view). Logins made with other tools are not seen.
`)
	},
}

func init() {
	promptCmd.AddCommand(promptInfoCmd)
	promptCmd.AddCommand(promptSetupCmd)
	rootCmd.AddCommand(promptCmd)
}
