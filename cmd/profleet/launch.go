package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"profleet/internal/app"
	"profleet/internal/deeplink"
)

// linkFlags are the deep-link inputs shared by the launch commands.
type linkFlags struct {
	appName string
	appType string
	ref     string
	mixed   string
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.appName, "app-name", "", "Bot username to open in each instance")
	cmd.Flags().StringVar(&f.appType, "app-type", "", "Mini app short name")
	cmd.Flags().StringVar(&f.ref, "ref", "", "Start parameter or full t.me / tg:// referral link")
	cmd.Flags().StringVar(&f.mixed, "mixed", "no", "Shuffle profile order (yes|no)")
}

func (f *linkFlags) params() deeplink.Params {
	return deeplink.Params{
		AppName:    f.appName,
		AppVariant: f.appType,
		RefToken:   f.ref,
		Shuffle:    deeplink.ParseShuffle(f.mixed),
	}
}

var (
	launchLink      linkFlags
	launchBatchSize int
	launchFollow    bool
	launchInterval  time.Duration
	launchTimeout   time.Duration
)

func init() {
	rootCmd.AddCommand(cmdLaunch)
	cmdLaunch.AddCommand(cmdLaunchRange, cmdLaunchIDs, cmdLaunchResume, cmdLaunchStatus, cmdLaunchReset)

	cmdLaunch.PersistentFlags().DurationVar(&launchTimeout, "timeout", 30*time.Minute, "Timeout for one batch")

	launchLink.register(cmdLaunchRange)
	cmdLaunchRange.Flags().IntVar(&launchBatchSize, "batch-size", 0, "Profiles per batch (default from settings)")
	cmdLaunchRange.Flags().BoolVar(&launchFollow, "follow", false, "Keep launching batches until the range is done")
	cmdLaunchRange.Flags().DurationVar(&launchInterval, "interval", time.Minute, "Pause between batches with --follow")

	launchLink.register(cmdLaunchIDs)
	cmdLaunchResume.Flags().BoolVar(&launchFollow, "follow", false, "Keep launching batches until the range is done")
	cmdLaunchResume.Flags().DurationVar(&launchInterval, "interval", time.Minute, "Pause between batches with --follow")
}

var cmdLaunch = &cobra.Command{
	Use:   "launch",
	Short: "Launch profiles through the daemon",
}

var cmdLaunchRange = &cobra.Command{
	Use:   "range START END",
	Short: "Launch the first batch of profiles START..END",
	Long:  "Launches profiles START..END in batches. The remaining ids are kept by the daemon for `launch resume`; --follow resumes automatically.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseProfileID(args[0])
		if err != nil {
			return err
		}
		end, err := parseProfileID(args[1])
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		ctrl := controller()

		stop := startSpinner(cmd.ErrOrStderr(), " Launching...")
		res, err := ctrl.LaunchRange(ctx, app.LaunchRangeParams{
			Start:     start,
			End:       end,
			Link:      launchLink.params(),
			BatchSize: launchBatchSize,
			Timeout:   launchTimeout,
		})
		stop()
		if err != nil {
			return err
		}
		printBatch(cmd.OutOrStdout(), res)
		if launchFollow {
			return followBatches(ctx, cmd, ctrl, res)
		}
		return nil
	},
}

var cmdLaunchResume = &cobra.Command{
	Use:   "resume",
	Short: "Launch the next batch of the pending range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		ctrl := controller()

		stop := startSpinner(cmd.ErrOrStderr(), " Launching...")
		res, err := ctrl.ResumeLaunch(ctx, launchTimeout)
		stop()
		if err != nil {
			return err
		}
		printBatch(cmd.OutOrStdout(), res)
		if launchFollow {
			return followBatches(ctx, cmd, ctrl, res)
		}
		return nil
	},
}

var cmdLaunchIDs = &cobra.Command{
	Use:   "ids ID...",
	Short: "Launch the given profiles now, ignoring the batch size",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseProfileIDs(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		res, err := controller().LaunchIDs(commandContext(cmd), app.LaunchIDsParams{
			IDs:     ids,
			Link:    launchLink.params(),
			Timeout: launchTimeout,
			Progress: func(p app.Progress) {
				fmt.Fprintf(out, "[%d/%d] profile %d\n", p.Index, p.Total, p.ProfileID)
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Launched %d instances: %s\n", len(res.PIDs), joinInts(res.PIDs))
		return nil
	},
}

var cmdLaunchStatus = &cobra.Command{
	Use:   "status",
	Short: "Show the current launch session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := controller().LaunchStatus(commandContext(cmd), 5*time.Second)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Exists {
			fmt.Fprintln(out, "No launch session")
			return nil
		}
		state := "finished"
		if st.Active {
			state = "pending"
		}
		fmt.Fprintf(out, "state:      %s\n", state)
		fmt.Fprintf(out, "root:       %s\n", st.Root)
		fmt.Fprintf(out, "app:        %s\n", valueOrDash(st.Link.AppName))
		fmt.Fprintf(out, "batch size: %d\n", st.BatchSize)
		fmt.Fprintf(out, "progress:   %d/%d profiles\n", st.TotalProfiles-len(st.Pending), st.TotalProfiles)
		fmt.Fprintf(out, "launched:   %d instances\n", len(st.LaunchedPIDs))
		fmt.Fprintf(out, "pending:    %s\n", valueOrDash(joinInts(st.Pending)))
		if !st.UpdatedAt.IsZero() {
			fmt.Fprintf(out, "updated:    %s\n", st.UpdatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var cmdLaunchReset = &cobra.Command{
	Use:   "reset",
	Short: "Forget the pending launch session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controller().ResetLaunch(commandContext(cmd), 5*time.Second); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Launch session cleared")
		return nil
	},
}

func followBatches(ctx context.Context, cmd *cobra.Command, ctrl controllerAPI, res app.LaunchResult) error {
	out := cmd.OutOrStdout()
	for len(res.Remaining) > 0 {
		fmt.Fprintf(out, "Next batch in %s\n", launchInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(launchInterval):
		}

		stop := startSpinner(cmd.ErrOrStderr(), " Launching...")
		var err error
		res, err = ctrl.ResumeLaunch(ctx, launchTimeout)
		stop()
		if err != nil {
			return err
		}
		printBatch(out, res)
	}
	fmt.Fprintln(out, "Range complete")
	return nil
}

func printBatch(out io.Writer, res app.LaunchResult) {
	fmt.Fprintf(out, "Launched %d instances: %s\n", len(res.PIDs), valueOrDash(joinInts(res.PIDs)))
	if len(res.Remaining) > 0 {
		fmt.Fprintf(out, "%d profiles remaining: %s\n", len(res.Remaining), joinInts(res.Remaining))
	}
}

func startSpinner(w io.Writer, suffix string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseProfileID(raw string) (int, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", raw)
	}
	return int(id), nil
}

func parseProfileIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseProfileID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
