package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"profleet/internal/app"
)

var (
	closePIDs     []uint
	closeProfiles []int
	closeTimeout  int
)

func init() {
	rootCmd.AddCommand(cmdClose, cmdCloseOne)
	cmdClose.Flags().UintSliceVar(&closePIDs, "pid", nil, "Close these pids (repeatable)")
	cmdClose.Flags().IntSliceVar(&closeProfiles, "profile", nil, "Close every instance of these profiles (repeatable)")
	cmdClose.Flags().IntVar(&closeTimeout, "timeout", 30, "Timeout in seconds")
	cmdCloseOne.Flags().IntVar(&closeTimeout, "timeout", 30, "Timeout in seconds")
}

var cmdClose = &cobra.Command{
	Use:   "close",
	Short: "Close instances by pid or by profile",
	Long:  "Only processes whose executable lives under the configured root are closed; other pids are ignored.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(closePIDs) == 0 && len(closeProfiles) == 0 {
			return errors.New("provide --pid or --profile")
		}
		if len(closePIDs) > 0 && len(closeProfiles) > 0 {
			return errors.New("--pid and --profile are mutually exclusive")
		}
		timeout := time.Duration(closeTimeout) * time.Second
		out := cmd.OutOrStdout()
		ctx := commandContext(cmd)

		if len(closePIDs) > 0 {
			pids := make([]uint32, 0, len(closePIDs))
			for _, pid := range closePIDs {
				if pid == 0 || uint64(pid) > math.MaxUint32 {
					return fmt.Errorf("invalid pid %d", pid)
				}
				pids = append(pids, uint32(pid))
			}
			n, err := controller().ClosePIDs(ctx, pids, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Closed %d of %d pids\n", n, len(pids))
			return nil
		}

		n, err := controller().CloseProfiles(ctx, closeProfiles, timeout)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Closed %d instances across %d profiles\n", n, len(closeProfiles))
		return nil
	},
}

var cmdCloseOne = &cobra.Command{
	Use:   "close-one ID",
	Short: "Close every instance of one profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProfileID(args[0])
		if err != nil {
			return err
		}
		n, err := controller().CloseOne(commandContext(cmd), id, time.Duration(closeTimeout)*time.Second)
		if errors.Is(err, app.ErrNoProcessFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %d is not running\n", id)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Closed %d instances of profile %d\n", n, id)
		return nil
	},
}
