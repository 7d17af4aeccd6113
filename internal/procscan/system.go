package procscan

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessNotFound is returned by Kill when the pid no longer exists.
var ErrProcessNotFound = errors.New("process not found")

// GopsutilSystem implements System on top of gopsutil.
type GopsutilSystem struct{}

// NewSystem returns the System implementation for the running OS.
func NewSystem() *GopsutilSystem {
	return &GopsutilSystem{}
}

// ListProcesses snapshots every process. Per-process read failures are
// tolerated: a missing name or executable path becomes an empty string.
func (GopsutilSystem) ListProcesses(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		if p.Pid <= 0 {
			continue
		}
		name, _ := p.NameWithContext(ctx)
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			exe = ""
		}
		out = append(out, Process{
			PID:     uint32(p.Pid),
			Name:    name,
			ExePath: exe,
		})
	}
	return out, nil
}

// Kill terminates pid forcefully.
func (GopsutilSystem) Kill(ctx context.Context, pid uint32) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return fmt.Errorf("%w: %d", ErrProcessNotFound, pid)
		}
		return err
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("kill %d: %w", pid, err)
	}
	return nil
}
