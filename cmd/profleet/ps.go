package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var psTimeout int

func init() {
	rootCmd.AddCommand(cmdPS)
	cmdPS.Flags().IntVar(&psTimeout, "timeout", 5, "Timeout in seconds")
}

var cmdPS = &cobra.Command{
	Use:   "ps",
	Short: "List running instances of the managed application",
	RunE: func(cmd *cobra.Command, args []string) error {
		procs, err := controller().Processes(cmd.Context(), time.Duration(psTimeout)*time.Second)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(procs) == 0 {
			fmt.Fprintln(out, "No running instances")
			return nil
		}
		for _, p := range procs {
			path := p.Path
			if path == "" {
				path = "-"
			}
			fmt.Fprintf(out, "pid=%d name=%s path=%s\n", p.PID, p.Name, path)
		}
		return nil
	},
}
