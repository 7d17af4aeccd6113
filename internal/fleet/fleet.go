// Package fleet reconciles running processes against profile directories
// and launches or terminates profile instances.
//
// Nothing here keeps fleet state between calls. Every operation takes a
// fresh process snapshot and re-reads the filesystem.
//
// Launch batches are not serialized against each other: two concurrent
// batches over overlapping ids can spawn duplicate instances. Callers that
// need exclusivity must enforce it themselves.
package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"profleet/internal/catalog"
	"profleet/internal/procscan"
)

var (
	ErrRootNotConfigured = errors.New("root path is not configured")
	ErrRootNotFound      = catalog.ErrRootNotFound
	ErrDirectoryRead     = catalog.ErrDirectoryRead
	ErrSpawn             = errors.New("spawn failed")
	ErrNoProcessFound    = errors.New("no running process found")
)

// MaxBatchSize caps the number of profiles launched by one batch call.
const MaxBatchSize = 200

// MaxRangeSize caps the number of profile ids one range launch may cover.
const MaxRangeSize = 10000

// Timing holds the delays and limits used by launch and terminate.
type Timing struct {
	SettleDelay       time.Duration
	FollowupDelay     time.Duration
	SpawnTimeout      time.Duration
	TerminateAttempts int
	TerminateBackoff  time.Duration
}

// DefaultTiming returns the delays the launch protocol was tuned with.
func DefaultTiming() Timing {
	return Timing{
		SettleDelay:       3 * time.Second,
		FollowupDelay:     time.Second,
		SpawnTimeout:      15 * time.Second,
		TerminateAttempts: 3,
		TerminateBackoff:  500 * time.Millisecond,
	}
}

// Options wires the OS seams and policy shared by the fleet components.
type Options struct {
	System  procscan.System
	Target  procscan.Target
	Layout  catalog.Layout
	Spawner Spawner
	Sleeper Sleeper
	Timing  Timing
	Logger  *log.Logger
	Metrics Recorder
	// HiddenFlag is passed to instances started for an app variant.
	HiddenFlag string
}

func (o Options) withDefaults() Options {
	if o.System == nil {
		o.System = procscan.NewSystem()
	}
	if o.Target == (procscan.Target{}) {
		o.Target = procscan.DefaultTarget()
	}
	if o.Layout == (catalog.Layout{}) {
		o.Layout = catalog.DefaultLayout()
	}
	if o.Spawner == nil {
		o.Spawner = ExecSpawner{}
	}
	if o.Sleeper == nil {
		o.Sleeper = RealSleeper{}
	}
	def := DefaultTiming()
	if o.Timing.SpawnTimeout <= 0 {
		o.Timing.SpawnTimeout = def.SpawnTimeout
	}
	if o.Timing.TerminateAttempts <= 0 {
		o.Timing.TerminateAttempts = def.TerminateAttempts
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Metrics == nil {
		o.Metrics = NoopRecorder{}
	}
	return o
}

// Sleeper pauses between launch phases and terminate attempts.
type Sleeper interface {
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Recorder receives operational measurements.
type Recorder interface {
	FleetObserved(summary Summary, took time.Duration)
	SpawnAttempt(phase string, err error)
	ProcessTerminated(err error)
}

// NoopRecorder discards all measurements.
type NoopRecorder struct{}

func (NoopRecorder) FleetObserved(Summary, time.Duration) {}
func (NoopRecorder) SpawnAttempt(string, error)           {}
func (NoopRecorder) ProcessTerminated(error)              {}

// ClampBatchSize maps a requested batch size to the accepted range.
func ClampBatchSize(n int) int {
	switch {
	case n <= 0:
		return 1
	case n > MaxBatchSize:
		return MaxBatchSize
	default:
		return n
	}
}
