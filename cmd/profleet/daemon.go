package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"profleet/internal/daemon"
)

func init() {
	rootCmd.AddCommand(cmdDaemon)
	cmdDaemon.AddCommand(cmdDaemonStop)
}

var daemonForceRestart bool

func init() {
	cmdDaemon.Flags().BoolVarP(&daemonForceRestart, "force", "f", false, "Restart the daemon if it is already running")
	cmdDaemonStop.Flags().BoolVarP(&daemonForceRestart, "force", "f", false, "Send SIGKILL if the daemon does not exit")
}

var cmdDaemon = &cobra.Command{
	Use:   "daemon",
	Short: "Start the daemon process",
	Long:  `The daemon owns process discovery, launching and termination for the configured root. If the daemon is not running, it will be started. Otherwise, nothing will happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if daemon.IsRunning() {
			if !daemonForceRestart {
				pid, err := daemon.RunningPID()
				var message string
				if pid != 0 {
					message = fmt.Sprintf("Daemon is already running (pid %d). Stop it manually or re-run with --force.", pid)
				} else {
					message = "Daemon is already running. Stop it manually or re-run with --force."
				}
				if err != nil {
					message = fmt.Sprintf("Error checking if daemon is running: %v", err)
				}
				fmt.Fprintln(out, message)
				return nil
			}
			fmt.Fprintln(out, "Stopping existing daemon process...")
			if err := daemon.StopRunningDaemon(true); err != nil {
				return err
			}
		}

		srv, err := daemon.StartDaemon(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Started daemon process (socket %s)\n", daemon.SocketPath())
		runSpin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stdout))
		runSpin.Suffix = " Running..."
		runSpin.Start()

		sigc := make(chan os.Signal, 2)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		runSpin.Stop()
		return srv.Close()
	},
}

var cmdDaemonStop = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controller().StopDaemon(daemonForceRestart); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
		return nil
	},
}
