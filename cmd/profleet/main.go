package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"profleet/internal/app"
	"profleet/internal/config"
	"profleet/internal/deeplink"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "profleet [command]",
	Short: "profleet: launch and close a fleet of desktop app profiles",
	Long:  `profleet reconciles a directory of numbered app profiles against the running processes, launches profiles in batches and closes them again.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to settings.yaml (default $PROFLEET_HOME/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// controllerAPI is the subset of app.App the commands use.
type controllerAPI interface {
	Ping(ctx context.Context, timeout time.Duration) (string, error)
	Status() (app.DaemonStatus, error)
	StopDaemon(force bool) error
	StartDaemon() (*app.DaemonHandle, error)

	FleetSummary(ctx context.Context, root string, timeout time.Duration) (app.Summary, error)
	Processes(ctx context.Context, timeout time.Duration) ([]app.Process, error)

	LaunchRange(ctx context.Context, params app.LaunchRangeParams) (app.LaunchResult, error)
	LaunchIDs(ctx context.Context, params app.LaunchIDsParams) (app.LaunchResult, error)
	ResumeLaunch(ctx context.Context, timeout time.Duration) (app.LaunchResult, error)
	LaunchStatus(ctx context.Context, timeout time.Duration) (app.LaunchState, error)
	ResetLaunch(ctx context.Context, timeout time.Duration) error

	ClosePIDs(ctx context.Context, pids []uint32, timeout time.Duration) (int, error)
	CloseProfiles(ctx context.Context, ids []int, timeout time.Duration) (int, error)
	CloseOne(ctx context.Context, id int, timeout time.Duration) (int, error)
	ProfilePIDs(ctx context.Context, ids []int, timeout time.Duration) (map[int][]uint32, error)

	Settings() (config.Settings, error)
	SettingsPath() string
	SetSetting(key, value string) error
	PreviewLink(p deeplink.Params) (string, error)
}

var controllerFactory = func() controllerAPI {
	return app.New(app.Options{ConfigPath: configPath})
}

func controller() controllerAPI {
	return controllerFactory()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
