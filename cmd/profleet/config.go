package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"profleet/internal/config"
)

func init() {
	rootCmd.AddCommand(cmdConfig)
	cmdConfig.AddCommand(cmdConfigShow, cmdConfigSet)
}

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change settings",
}

var cmdConfigShow = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()
		s, err := ctrl.Settings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		target := s.ProcessTarget()
		layout := s.Layout()
		timing := s.Timing()

		rows := [][2]string{
			{"file", ctrl.SettingsPath()},
			{"root_path", valueOrDash(s.Root())},
			{"batch_size", strconv.Itoa(s.BatchSizeValue())},
			{"target.name_token", target.NameToken},
			{"target.executable", target.Executable},
			{"target.vendor_segment", target.VendorSegment},
			{"target.profile_prefix", layout.Prefix},
			{"target.marker_dir", layout.MarkerDir},
			{"target.hidden_flag", valueOrDash(s.Target.HiddenFlag)},
			{"launch.settle_delay", timing.SettleDelay.String()},
			{"launch.followup_delay", timing.FollowupDelay.String()},
			{"launch.spawn_timeout", timing.SpawnTimeout.String()},
			{"terminate.attempts", strconv.Itoa(timing.TerminateAttempts)},
			{"terminate.backoff", timing.TerminateBackoff.String()},
			{"daemon.metrics_addr", valueOrDash(s.Daemon.MetricsAddr)},
		}
		for _, row := range rows {
			fmt.Fprintf(out, "%-22s %s\n", row[0]+":", row[1])
		}
		return nil
	},
}

var cmdConfigSet = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "Store one setting in the settings file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()
		if err := ctrl.SetSetting(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], ctrl.SettingsPath())
		return nil
	},
}
