package app

import (
	"context"
	"fmt"
	"time"

	"profleet/api/fleetv1"
)

// Summary is the reconciled fleet state.
type Summary struct {
	Root     string
	Total    int
	Running  int
	Disabled int
	Unknown  int
}

// Idle returns the usable profiles with no live instance.
func (s Summary) Idle() int {
	n := s.Total - s.Running - s.Disabled
	if n < 0 {
		return 0
	}
	return n
}

// Process is one live instance of the managed application.
type Process struct {
	PID  uint32
	Name string
	Path string
}

// FleetSummary asks the daemon to reconcile root, or the configured root
// when root is empty.
func (a *App) FleetSummary(ctx context.Context, root string, timeout time.Duration) (Summary, error) {
	var out Summary
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.GetFleetSummary(ctx, &fleetv1.SummaryRequest{Root: root})
		if err != nil {
			return fmt.Errorf("daemon summary RPC failed: %w", err)
		}
		out = Summary{
			Root:     resp.Root,
			Total:    int(resp.Total),
			Running:  int(resp.Running),
			Disabled: int(resp.Disabled),
			Unknown:  int(resp.Unknown),
		}
		return nil
	})
	return out, err
}

// Processes lists the live instances the daemon can see.
func (a *App) Processes(ctx context.Context, timeout time.Duration) ([]Process, error) {
	var out []Process
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.ListTargetProcesses(ctx, &fleetv1.ListProcessesRequest{})
		if err != nil {
			return fmt.Errorf("daemon list RPC failed: %w", err)
		}
		out = make([]Process, 0, len(resp.GetProcesses()))
		for _, p := range resp.GetProcesses() {
			if p == nil {
				continue
			}
			out = append(out, Process{PID: p.Pid, Name: p.Name, Path: p.Path})
		}
		return nil
	})
	return out, err
}
