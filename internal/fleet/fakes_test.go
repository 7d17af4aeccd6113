package fleet_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"profleet/internal/fleet"
	"profleet/internal/procscan"
)

var errFakeNoProcess = errors.New("fake: no such process")

// fakeSystem is an in-memory process table. Killing a pid removes it and
// may reveal children registered through onKill.
type fakeSystem struct {
	mu      sync.Mutex
	procs   []procscan.Process
	killed  []uint32
	onKill  map[uint32][]procscan.Process
	killErr map[uint32]error
	listErr error
}

func newFakeSystem(procs ...procscan.Process) *fakeSystem {
	return &fakeSystem{procs: procs, onKill: map[uint32][]procscan.Process{}}
}

func (f *fakeSystem) ListProcesses(context.Context) ([]procscan.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]procscan.Process(nil), f.procs...), nil
}

func (f *fakeSystem) Kill(_ context.Context, pid uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.killErr[pid]; err != nil {
		return err
	}
	for i, p := range f.procs {
		if p.PID != pid {
			continue
		}
		f.procs = append(f.procs[:i], f.procs[i+1:]...)
		f.killed = append(f.killed, pid)
		f.procs = append(f.procs, f.onKill[pid]...)
		return nil
	}
	return errFakeNoProcess
}

func (f *fakeSystem) killedPIDs() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.killed...)
}

type fakeSpawner struct {
	mu      sync.Mutex
	next    int
	specs   []fleet.SpawnSpec
	failFor map[string]error
}

func (s *fakeSpawner) Spawn(_ context.Context, spec fleet.SpawnSpec) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	if err := s.failFor[spec.Dir]; err != nil {
		return 0, err
	}
	s.next++
	return 1000 + s.next, nil
}

type fakeSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

func testTarget() procscan.Target {
	return procscan.Target{
		NameToken:     "telegram",
		Executable:    "Telegram",
		VendorSegment: "/telegram desktop/",
	}
}

func testOptions(sys procscan.System, sp fleet.Spawner, sl fleet.Sleeper) fleet.Options {
	return fleet.Options{
		System:     sys,
		Target:     testTarget(),
		Spawner:    sp,
		Sleeper:    sl,
		Timing:     fleet.DefaultTiming(),
		Logger:     log.New(io.Discard),
		HiddenFlag: "-startintray",
	}
}

// makeProfile creates "TG <id>" under root with a marker holding entries
// and an empty executable file.
func makeProfile(t *testing.T, root string, id int, entries ...string) string {
	t.Helper()
	dir := filepath.Join(root, "TG "+strconv.Itoa(id))
	marker := filepath.Join(dir, "tdata")
	require.NoError(t, os.MkdirAll(marker, 0o755))
	for _, name := range entries {
		require.NoError(t, os.WriteFile(filepath.Join(marker, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Telegram"), nil, 0o755))
	return dir
}
