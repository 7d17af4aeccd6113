package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cmdPIDs)
}

var cmdPIDs = &cobra.Command{
	Use:   "pids ID...",
	Short: "Show the running pids of the given profiles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseProfileIDs(args)
		if err != nil {
			return err
		}
		byProfile, err := controller().ProfilePIDs(commandContext(cmd), ids, 10*time.Second)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range ids {
			pids := byProfile[id]
			if len(pids) == 0 {
				fmt.Fprintf(out, "profile %d: -\n", id)
				continue
			}
			parts := make([]string, len(pids))
			for i, pid := range pids {
				parts[i] = strconv.FormatUint(uint64(pid), 10)
			}
			fmt.Fprintf(out, "profile %d: %s\n", id, strings.Join(parts, ","))
		}
		return nil
	},
}
