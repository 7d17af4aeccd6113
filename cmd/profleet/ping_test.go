package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"profleet/internal/app"
	"profleet/internal/config"
	"profleet/internal/deeplink"
)

type stubController struct {
	pingFunc         func(ctx context.Context, timeout time.Duration) (string, error)
	summaryFunc      func(ctx context.Context, root string, timeout time.Duration) (app.Summary, error)
	launchRangeFunc  func(ctx context.Context, params app.LaunchRangeParams) (app.LaunchResult, error)
	launchIDsFunc    func(ctx context.Context, params app.LaunchIDsParams) (app.LaunchResult, error)
	resumeFunc       func(ctx context.Context, timeout time.Duration) (app.LaunchResult, error)
	launchStatusFunc func(ctx context.Context, timeout time.Duration) (app.LaunchState, error)
	closePIDsFunc    func(ctx context.Context, pids []uint32, timeout time.Duration) (int, error)
	closeProfileFunc func(ctx context.Context, ids []int, timeout time.Duration) (int, error)
	closeOneFunc     func(ctx context.Context, id int, timeout time.Duration) (int, error)
	profilePIDsFunc  func(ctx context.Context, ids []int, timeout time.Duration) (map[int][]uint32, error)
}

func (s *stubController) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	if s.pingFunc != nil {
		return s.pingFunc(ctx, timeout)
	}
	return "", errors.New("ping not implemented")
}

func (s *stubController) Status() (app.DaemonStatus, error) {
	panic("Status not implemented")
}

func (s *stubController) StopDaemon(force bool) error {
	panic("StopDaemon not implemented")
}

func (s *stubController) StartDaemon() (*app.DaemonHandle, error) {
	panic("StartDaemon not implemented")
}

func (s *stubController) FleetSummary(ctx context.Context, root string, timeout time.Duration) (app.Summary, error) {
	if s.summaryFunc != nil {
		return s.summaryFunc(ctx, root, timeout)
	}
	panic("FleetSummary not implemented")
}

func (s *stubController) Processes(ctx context.Context, timeout time.Duration) ([]app.Process, error) {
	panic("Processes not implemented")
}

func (s *stubController) LaunchRange(ctx context.Context, params app.LaunchRangeParams) (app.LaunchResult, error) {
	if s.launchRangeFunc != nil {
		return s.launchRangeFunc(ctx, params)
	}
	panic("LaunchRange not implemented")
}

func (s *stubController) LaunchIDs(ctx context.Context, params app.LaunchIDsParams) (app.LaunchResult, error) {
	if s.launchIDsFunc != nil {
		return s.launchIDsFunc(ctx, params)
	}
	panic("LaunchIDs not implemented")
}

func (s *stubController) ResumeLaunch(ctx context.Context, timeout time.Duration) (app.LaunchResult, error) {
	if s.resumeFunc != nil {
		return s.resumeFunc(ctx, timeout)
	}
	panic("ResumeLaunch not implemented")
}

func (s *stubController) LaunchStatus(ctx context.Context, timeout time.Duration) (app.LaunchState, error) {
	if s.launchStatusFunc != nil {
		return s.launchStatusFunc(ctx, timeout)
	}
	panic("LaunchStatus not implemented")
}

func (s *stubController) ResetLaunch(ctx context.Context, timeout time.Duration) error {
	panic("ResetLaunch not implemented")
}

func (s *stubController) ClosePIDs(ctx context.Context, pids []uint32, timeout time.Duration) (int, error) {
	if s.closePIDsFunc != nil {
		return s.closePIDsFunc(ctx, pids, timeout)
	}
	panic("ClosePIDs not implemented")
}

func (s *stubController) CloseProfiles(ctx context.Context, ids []int, timeout time.Duration) (int, error) {
	if s.closeProfileFunc != nil {
		return s.closeProfileFunc(ctx, ids, timeout)
	}
	panic("CloseProfiles not implemented")
}

func (s *stubController) CloseOne(ctx context.Context, id int, timeout time.Duration) (int, error) {
	if s.closeOneFunc != nil {
		return s.closeOneFunc(ctx, id, timeout)
	}
	panic("CloseOne not implemented")
}

func (s *stubController) ProfilePIDs(ctx context.Context, ids []int, timeout time.Duration) (map[int][]uint32, error) {
	if s.profilePIDsFunc != nil {
		return s.profilePIDsFunc(ctx, ids, timeout)
	}
	panic("ProfilePIDs not implemented")
}

func (s *stubController) Settings() (config.Settings, error) {
	panic("Settings not implemented")
}

func (s *stubController) SettingsPath() string {
	panic("SettingsPath not implemented")
}

func (s *stubController) SetSetting(key, value string) error {
	panic("SetSetting not implemented")
}

func (s *stubController) PreviewLink(p deeplink.Params) (string, error) {
	return deeplink.Build(p)
}

func withController(t *testing.T, stub controllerAPI) {
	t.Helper()
	origFactory := controllerFactory
	controllerFactory = func() controllerAPI {
		return stub
	}
	t.Cleanup(func() {
		controllerFactory = origFactory
	})
}

func withOutput(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	return buf
}

func TestPingSuccess(t *testing.T) {
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (string, error) {
			if timeout != 2*time.Second {
				t.Fatalf("expected timeout 2s, got %v", timeout)
			}
			return "pong", nil
		},
	})
	buf := withOutput(t, cmdPing)

	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 2
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	if err := cmdPing.RunE(cmdPing, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := buf.String(); got != "pong\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPingError(t *testing.T) {
	expected := errors.New("daemon down")
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (string, error) {
			return "", expected
		},
	})
	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 1
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	err := cmdPing.RunE(cmdPing, nil)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error %v, got %v", expected, err)
	}
}
