package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusRoot    string
	statusTimeout int
)

func init() {
	rootCmd.AddCommand(cmdStatus)
	cmdStatus.Flags().StringVar(&statusRoot, "root", "", "Reconcile this directory instead of the configured root")
	cmdStatus.Flags().IntVar(&statusTimeout, "timeout", 10, "Timeout in seconds")
}

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Summarise the fleet: total, running, disabled and unknown profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := controller().FleetSummary(cmd.Context(), statusRoot, time.Duration(statusTimeout)*time.Second)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "root:     %s\n", s.Root)
		fmt.Fprintf(out, "total:    %d\n", s.Total)
		fmt.Fprintf(out, "running:  %d\n", s.Running)
		fmt.Fprintf(out, "idle:     %d\n", s.Idle())
		fmt.Fprintf(out, "disabled: %d\n", s.Disabled)
		fmt.Fprintf(out, "unknown:  %d\n", s.Unknown)
		return nil
	},
}
