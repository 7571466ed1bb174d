package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/chukul/ssostat/internal"
	"github.com/spf13/cobra"
)

const (
	daemonPIDKey = "daemon_pid"
	launchLabel  = "com.chukul.ssostat"
)

var daemonLogLines int

// daemonPID returns the recorded daemon PID if that process is still alive.
func daemonPID() (int, bool) {
	raw, err := app.Store.Read(daemonPIDKey)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the status loop in the background",
	Long: `The daemon runs the same status loop as the watch view without a screen.
Status changes, login confirmations and alerts are written to the ssostat log.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the status daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pid, ok := daemonPID(); ok {
			fmt.Printf("❌ Daemon is already running (PID: %d).\n", pid)
			fmt.Println("💡 Use 'ssostat daemon stop' first if you want to restart.")
			return nil
		}

		if err := app.Store.Write(daemonPIDKey, strconv.Itoa(os.Getpid())); err != nil {
			return fmt.Errorf("record daemon pid: %w", err)
		}
		defer app.Store.Remove(daemonPIDKey)

		rec := app.NewReconciler(internal.NewLogPresenter(app.Logger), "")
		fmt.Printf("🚀 Watching profile '%s' every %s\n", rec.ActiveProfile(), app.Config.Polling.Normal.Duration)
		fmt.Printf("📝 Logs: %s\n", internal.LogFilePath(app.Config))

		if err := rec.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Println("🛑 Daemon stopped.")
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, ok := daemonPID()
		if !ok {
			app.Store.Remove(daemonPIDKey)
			fmt.Println("⚪ Daemon is not running.")
			return nil
		}

		process, err := os.FindProcess(pid)
		if err != nil {
			return err
		}
		fmt.Printf("🛑 Stopping ssostat daemon (PID: %d)...\n", pid)
		if err := process.Signal(syscall.SIGTERM); err != nil {
			return fmt.Errorf("signal daemon: %w", err)
		}
		fmt.Println("✅ Stop signal sent.")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		pid, ok := daemonPID()
		if !ok {
			fmt.Println("⚪ Daemon is NOT running.")
			return
		}
		fmt.Printf("🟢 Daemon is running (PID: %d) for profile '%s'\n", pid, app.Registry.LoadActive())
	},
}

var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the last lines of the ssostat log",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(internal.LogFilePath(app.Config))
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("❌ No logs found.")
			return nil
		}
		if err != nil {
			return err
		}
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
			if daemonLogLines > 0 && len(lines) > daemonLogLines {
				lines = lines[1:]
			}
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return scanner.Err()
	},
}

const launchAgentTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%[1]s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%[2]s</string>
        <string>daemon</string>
        <string>start</string>
    </array>
    <key>EnvironmentVariables</key>
    <dict>
        <key>SSOSTAT_HOME</key>
        <string>%[3]s</string>
    </dict>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>%[3]s/daemon.stdout.log</string>
    <key>StandardErrorPath</key>
    <string>%[3]s/daemon.stderr.log</string>
</dict>
</plist>
`

var daemonSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install a LaunchAgent that starts the daemon at login (macOS)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runtime.GOOS != "darwin" {
			fmt.Println("❌ Setup is only supported on macOS.")
			return nil
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		execPath, err := os.Executable()
		if err != nil {
			return err
		}
		plistPath := filepath.Join(home, "Library", "LaunchAgents", launchLabel+".plist")

		if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
			return err
		}
		plist := fmt.Sprintf(launchAgentTemplate, launchLabel, execPath, app.Config.StateDir)
		if err := os.WriteFile(plistPath, []byte(plist), 0644); err != nil {
			return fmt.Errorf("write plist: %w", err)
		}

		fmt.Println("✅ LaunchAgent plist created.")
		fmt.Println("🚀 To enable, run:")
		fmt.Printf("   launchctl load %s\n", plistPath)
		return nil
	},
}

func init() {
	daemonLogsCmd.Flags().IntVarP(&daemonLogLines, "lines", "n", 50, "Number of lines to show (0 for all)")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonSetupCmd)

	rootCmd.AddCommand(daemonCmd)
}
