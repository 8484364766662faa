package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"postmark/internal/daemonctl"
	"postmark/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the postmark daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the postmark daemon (closes all sessions)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			status, err := fetchStatus(ctx)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if status == nil {
					status = &ipc.StatusResponse{}
				}
				return writeJSON(cmd, status)
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if status == nil || !status.Running {
				fmt.Fprintln(stdout, renderStatusLine("Postmark", statusWarn, "Not running (run `postmark start`)", colorize))
				return nil
			}
			fmt.Fprintln(stdout, renderStatusLine("Postmark", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Sessions", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if len(status.Sessions) == 0 {
				fmt.Fprintln(stdout, "No open sessions")
				return nil
			}

			rows := make([][]string, 0, len(status.Sessions))
			for _, s := range status.Sessions {
				marker := ""
				if s.Current {
					marker = "*"
				}
				rows = append(rows, []string{
					marker,
					shortID(s.ID),
					s.Archive,
					s.State,
					strconv.Itoa(s.Records),
					fmt.Sprintf("%d/%d", s.Annotated, s.Records),
					strconv.Itoa(s.Collisions),
				})
			}
			fmt.Fprintln(stdout, sessionTable(rows))
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

// fetchStatus returns nil when the daemon is unreachable instead of an
// error so status output can degrade gracefully.
func fetchStatus(ctx *commandContext) (*ipc.StatusResponse, error) {
	client, err := ipc.Dial(ctx.socketPath())
	if err != nil {
		return nil, nil
	}
	defer client.Close()
	return client.Status()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
