package fleet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"profleet/internal/catalog"
	"profleet/internal/procscan"
)

// Terminator kills profile instances that live under one authorized root.
// A pid is only ever killed when its executable path normalizes to a
// location inside that root.
type Terminator struct {
	system   procscan.System
	scanner  *procscan.Scanner
	layout   catalog.Layout
	sleeper  Sleeper
	timing   Timing
	logger   *log.Logger
	metrics  Recorder
	root     string
	normRoot string
}

// NewTerminator builds a Terminator bound to root.
func NewTerminator(opts Options, root string) (*Terminator, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrRootNotConfigured
	}
	opts = opts.withDefaults()
	return &Terminator{
		system:   opts.System,
		scanner:  procscan.NewScanner(opts.System, opts.Target),
		layout:   opts.Layout,
		sleeper:  opts.Sleeper,
		timing:   opts.Timing,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		root:     root,
		normRoot: catalog.NormalizePath(root),
	}, nil
}

// Root returns the root this terminator is authorized for.
func (t *Terminator) Root() string { return t.root }

// TerminatePIDs kills each authorized pid and returns how many were
// killed. Unauthorized or unknown pids are skipped silently.
func (t *Terminator) TerminatePIDs(ctx context.Context, pids []uint32) int {
	if len(pids) == 0 {
		return 0
	}
	procs, err := t.system.ListProcesses(ctx)
	if err != nil {
		t.logger.Warn("process listing failed", "err", err)
		return 0
	}
	authorized := make(map[uint32]bool, len(procs))
	for _, p := range procs {
		if t.authorized(p) {
			authorized[p.PID] = true
		}
	}

	closed := 0
	seen := make(map[uint32]bool, len(pids))
	for _, pid := range pids {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if !authorized[pid] {
			t.logger.Debug("pid outside root skipped", "pid", pid)
			continue
		}
		if t.kill(ctx, pid) {
			closed++
		}
	}
	return closed
}

// TerminateProfiles kills every instance owned by ids. It re-scans after
// each round so children spawned by a killed launcher are caught too, and
// stops early once a round finds nothing.
func (t *Terminator) TerminateProfiles(ctx context.Context, ids []int) int {
	paths := profilePaths(catalog.BuildDirs(ids, t.root, t.layout))
	if len(paths) == 0 {
		return 0
	}

	closed := make(map[uint32]bool)
	for attempt := 1; attempt <= t.timing.TerminateAttempts; attempt++ {
		if attempt > 1 {
			if err := t.sleeper.Sleep(ctx, t.timing.TerminateBackoff*time.Duration(attempt-1)); err != nil {
				break
			}
		}
		candidates, err := t.candidates(ctx, paths)
		if err != nil {
			t.logger.Warn("process scan failed", "attempt", attempt, "err", err)
			break
		}
		fresh := candidates[:0]
		for _, pid := range candidates {
			if !closed[pid] {
				fresh = append(fresh, pid)
			}
		}
		if len(fresh) == 0 {
			break
		}
		for _, pid := range fresh {
			if t.kill(ctx, pid) {
				closed[pid] = true
			}
		}
		t.logger.Debug("terminate round", "attempt", attempt, "targets", len(fresh), "closed", len(closed))
	}
	return len(closed)
}

// TerminateProfile closes one profile. It returns ErrNoProcessFound when
// no running instance belongs to the profile.
func (t *Terminator) TerminateProfile(ctx context.Context, id int) (int, error) {
	paths := profilePaths(catalog.BuildDirs([]int{id}, t.root, t.layout))
	if len(paths) == 0 {
		return 0, ErrNoProcessFound
	}
	candidates, err := t.candidates(ctx, paths)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, ErrNoProcessFound
	}
	return t.TerminateProfiles(ctx, []int{id}), nil
}

// ProfilePIDs maps each id to the pids of its authorized running instances.
// Ids with no instance are absent from the result.
func (t *Terminator) ProfilePIDs(ctx context.Context, ids []int) (map[int][]uint32, error) {
	procs, err := t.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]uint32)
	for _, id := range ids {
		dirs := catalog.BuildDirs([]int{id}, t.root, t.layout)
		if len(dirs) == 0 {
			continue
		}
		pp := newProfilePath(dirs[0])
		for _, p := range procs {
			if t.authorized(p) && pp.owns(catalog.NormalizePath(p.ExePath)) {
				out[id] = append(out[id], p.PID)
			}
		}
	}
	return out, nil
}

func (t *Terminator) candidates(ctx context.Context, paths []profilePath) ([]uint32, error) {
	procs, err := t.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []uint32
	for _, p := range procs {
		if !t.authorized(p) {
			continue
		}
		exe := catalog.NormalizePath(p.ExePath)
		for _, pp := range paths {
			if pp.owns(exe) {
				out = append(out, p.PID)
				break
			}
		}
	}
	return out, nil
}

func (t *Terminator) authorized(p procscan.Process) bool {
	return catalog.WithinRoot(catalog.NormalizePath(p.ExePath), t.normRoot)
}

func (t *Terminator) kill(ctx context.Context, pid uint32) bool {
	err := t.system.Kill(ctx, pid)
	t.metrics.ProcessTerminated(err)
	if errors.Is(err, procscan.ErrProcessNotFound) {
		t.logger.Debug("process already gone", "pid", pid)
		return false
	}
	if err != nil {
		t.logger.Warn("kill failed", "pid", pid, "err", err)
		return false
	}
	t.logger.Info("process closed", "pid", pid)
	return true
}
