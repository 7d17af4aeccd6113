package fleet

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"profleet/internal/catalog"
	"profleet/internal/deeplink"
	"profleet/internal/procscan"
)

// BatchRequest asks for a batch-capped launch of ProfileIDs.
type BatchRequest struct {
	ProfileIDs []int
	Root       string
	Link       deeplink.Params
	BatchSize  int
}

// LaunchResult lists the primary pids started and the ids left for a
// later invocation once the batch cap was reached.
type LaunchResult struct {
	PIDs      []int `json:"pids"`
	Remaining []int `json:"remaining,omitempty"`
}

// Progress is emitted after each attempted profile of an explicit launch.
type Progress struct {
	Index     int `json:"batch_index"`
	Total     int `json:"batch_total"`
	ProfileID int `json:"profile_id"`
}

// ProgressFunc receives launch progress. It must not block for long.
type ProgressFunc func(Progress)

// Launcher starts profiles sequentially using the two-phase protocol: a
// bare start that creates the instance, then a second start of the same
// executable carrying the deep link.
type Launcher struct {
	target     procscan.Target
	layout     catalog.Layout
	spawner    Spawner
	sleeper    Sleeper
	timing     Timing
	hiddenFlag string
	logger     *log.Logger
	metrics    Recorder
	shuffle    func([]int)
}

// NewLauncher builds a Launcher from opts.
func NewLauncher(opts Options) *Launcher {
	opts = opts.withDefaults()
	return &Launcher{
		target:     opts.Target,
		layout:     opts.Layout,
		spawner:    opts.Spawner,
		sleeper:    opts.Sleeper,
		timing:     opts.Timing,
		hiddenFlag: opts.HiddenFlag,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		shuffle: func(ids []int) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
	}
}

// ProfileRange returns the ascending ids start..end inclusive. Ranges
// wider than MaxRangeSize are rejected.
func ProfileRange(start, end int) ([]int, error) {
	if start <= 0 || end < start {
		return nil, fmt.Errorf("invalid profile range %d..%d", start, end)
	}
	if end-start >= MaxRangeSize {
		return nil, fmt.Errorf("profile range %d..%d exceeds %d profiles", start, end, MaxRangeSize)
	}
	ids := make([]int, 0, end-start+1)
	for id := start; id <= end; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

// LaunchRange launches profiles start..end, capped at batchSize.
func (l *Launcher) LaunchRange(ctx context.Context, start, end int, root string, link deeplink.Params, batchSize int) (LaunchResult, error) {
	ids, err := ProfileRange(start, end)
	if err != nil {
		return LaunchResult{}, err
	}
	return l.LaunchBatch(ctx, BatchRequest{
		ProfileIDs: ids,
		Root:       root,
		Link:       link,
		BatchSize:  batchSize,
	})
}

// LaunchBatch launches req.ProfileIDs in order (shuffled when the link
// asks for it) and stops before the item whose index is a multiple of the
// batch size. Per-profile failures are logged and skipped.
func (l *Launcher) LaunchBatch(ctx context.Context, req BatchRequest) (LaunchResult, error) {
	var result LaunchResult
	root, link, err := l.prepare(req.Root, req.Link)
	if err != nil {
		return result, err
	}

	ids := append([]int(nil), req.ProfileIDs...)
	if req.Link.Shuffle {
		l.shuffle(ids)
	}
	size := ClampBatchSize(req.BatchSize)
	hidden := strings.TrimSpace(req.Link.AppVariant) != ""

	for i, id := range ids {
		if i > 0 && i%size == 0 {
			result.Remaining = append([]int(nil), ids[i:]...)
			l.logger.Info("batch limit reached", "batch_size", size, "launched", len(result.PIDs), "remaining", len(result.Remaining))
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			result.Remaining = append([]int(nil), ids[i:]...)
			return result, err
		}
		pid, err := l.launchOne(ctx, root, id, link, hidden)
		if pid > 0 {
			result.PIDs = append(result.PIDs, pid)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Remaining = append([]int(nil), ids[i+1:]...)
				return result, ctxErr
			}
			l.logger.Warn("profile launch failed", "profile", id, "err", err)
		}
	}
	return result, nil
}

// LaunchExplicit launches every id in order without a batch cap and
// reports progress after each attempt.
func (l *Launcher) LaunchExplicit(ctx context.Context, ids []int, root string, linkParams deeplink.Params, progress ProgressFunc) (LaunchResult, error) {
	var result LaunchResult
	root, link, err := l.prepare(root, linkParams)
	if err != nil {
		return result, err
	}
	hidden := strings.TrimSpace(linkParams.AppVariant) != ""

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Remaining = append([]int(nil), ids[i:]...)
			return result, err
		}
		pid, err := l.launchOne(ctx, root, id, link, hidden)
		if pid > 0 {
			result.PIDs = append(result.PIDs, pid)
		}
		if err != nil && ctx.Err() == nil {
			l.logger.Warn("profile launch failed", "profile", id, "err", err)
		}
		if progress != nil {
			progress(Progress{Index: i + 1, Total: len(ids), ProfileID: id})
		}
	}
	return result, ctx.Err()
}

func (l *Launcher) prepare(root string, params deeplink.Params) (string, string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", "", ErrRootNotConfigured
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	link, err := deeplink.Build(params)
	if err != nil {
		if !errors.Is(err, deeplink.ErrNoAppName) {
			return "", "", err
		}
		link = ""
	}
	return root, link, nil
}

// launchOne runs the two-phase protocol for one profile and returns the
// pid of the first spawn. A failed second spawn is logged, not returned.
func (l *Launcher) launchOne(ctx context.Context, root string, id int, link string, hidden bool) (int, error) {
	dir := l.layout.Dir(root, id)
	exe := filepath.Join(dir, l.target.Executable)
	if _, err := os.Stat(exe); err != nil {
		l.metrics.SpawnAttempt("primary", err)
		return 0, fmt.Errorf("%w: executable %s: %v", ErrSpawn, exe, err)
	}

	var base []string
	if hidden && l.hiddenFlag != "" {
		base = append(base, l.hiddenFlag)
	}

	pid, err := l.spawn(ctx, SpawnSpec{Path: exe, Args: base, Dir: dir})
	l.metrics.SpawnAttempt("primary", err)
	if err != nil {
		return 0, err
	}
	l.logger.Info("profile started", "profile", id, "pid", pid)

	if err := l.sleeper.Sleep(ctx, l.timing.SettleDelay); err != nil {
		return pid, err
	}
	if link == "" {
		return pid, nil
	}

	args := append(append([]string(nil), base...), "--", link)
	_, err = l.spawn(ctx, SpawnSpec{Path: exe, Args: args, Dir: dir})
	l.metrics.SpawnAttempt("link", err)
	if err != nil {
		l.logger.Warn("link delivery failed", "profile", id, "err", err)
	}
	if err := l.sleeper.Sleep(ctx, l.timing.FollowupDelay); err != nil {
		return pid, err
	}
	return pid, nil
}

func (l *Launcher) spawn(ctx context.Context, spec SpawnSpec) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timing.SpawnTimeout)
	defer cancel()
	pid, err := l.spawner.Spawn(ctx, spec)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Path, err)
	}
	return pid, nil
}
