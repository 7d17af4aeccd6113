package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"profleet/internal/catalog"
	"profleet/internal/health"
	"profleet/internal/procscan"
)

// Summary is the aggregate fleet status for one root.
type Summary struct {
	Total    int    `json:"total"`
	Running  int    `json:"running"`
	Disabled int    `json:"disabled"`
	Unknown  int    `json:"unknown"`
	Root     string `json:"root_path"`
}

// Reconciler derives fleet status from the process table and the profile directories.
type Reconciler struct {
	scanner *procscan.Scanner
	layout  catalog.Layout
	logger  *log.Logger
	metrics Recorder
}

// NewReconciler builds a Reconciler from opts.
func NewReconciler(opts Options) *Reconciler {
	opts = opts.withDefaults()
	return &Reconciler{
		scanner: procscan.NewScanner(opts.System, opts.Target),
		layout:  opts.Layout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Reconcile counts running, disabled and unknown profiles under root.
func (r *Reconciler) Reconcile(ctx context.Context, root string) (Summary, error) {
	started := time.Now()
	root = strings.TrimSpace(root)
	if root == "" {
		return Summary{}, ErrRootNotConfigured
	}

	profiles, err := catalog.List(root, r.layout)
	if err != nil {
		return Summary{Root: root}, err
	}
	summary := Summary{Total: len(profiles), Root: root}
	if len(profiles) == 0 {
		return summary, nil
	}

	procs, err := r.scanner.Scan(ctx)
	if err != nil {
		r.logger.Warn("process scan failed, treating fleet as idle", "err", err)
		procs = nil
	}
	exes := make([]string, len(procs))
	for i, p := range procs {
		exes[i] = catalog.NormalizePath(p.ExePath)
	}
	used := make([]bool, len(procs))

	for _, profile := range profiles {
		pp := newProfilePath(profile.Dir)
		matched := false
		for i, exe := range exes {
			if used[i] || !pp.owns(exe) {
				continue
			}
			used[i] = true
			matched = true
			break
		}
		if matched {
			summary.Running++
			continue
		}
		verdict := health.Classify(profile.Marker)
		if verdict.Disabled {
			summary.Disabled++
		}
		r.logger.Debug("profile idle", "profile", profile.Label, "disabled", verdict.Disabled, "reason", verdict.Reason)
	}

	summary.Unknown = max(0, summary.Total-summary.Running-summary.Disabled)
	r.metrics.FleetObserved(summary, time.Since(started))
	return summary, nil
}
