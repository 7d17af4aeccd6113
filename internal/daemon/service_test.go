package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"profleet/api/fleetv1"
	"profleet/internal/config"
	"profleet/internal/fleet"
	"profleet/internal/launchstate"
	"profleet/internal/procscan"
)

type stubSystem struct {
	mu    sync.Mutex
	procs []procscan.Process
}

func (s *stubSystem) ListProcesses(context.Context) ([]procscan.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]procscan.Process(nil), s.procs...), nil
}

func (s *stubSystem) Kill(_ context.Context, pid uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.procs {
		if p.PID == pid {
			s.procs = append(s.procs[:i], s.procs[i+1:]...)
			return nil
		}
	}
	return os.ErrProcessDone
}

type countingSpawner struct {
	mu   sync.Mutex
	next int
}

func (c *countingSpawner) Spawn(context.Context, fleet.SpawnSpec) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return 500 + c.next, nil
}

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type fakeLaunchStream struct {
	grpc.ServerStream
	ctx    context.Context
	events []*fleetv1.LaunchEvent
}

func (f *fakeLaunchStream) Context() context.Context { return f.ctx }

func (f *fakeLaunchStream) Send(ev *fleetv1.LaunchEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func newTestService(t *testing.T, root string, sys *stubSystem) *service {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	body := "batch_size: \"2\"\ntarget:\n  executable: Telegram\n"
	if root != "" {
		body += "root_path: " + strconv.Quote(root) + "\n"
	}
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	state, err := launchstate.Open(filepath.Join(dir, "launch.json"))
	require.NoError(t, err)
	return newService(serviceDeps{
		Settings: config.NewLoader(cfgPath),
		System:   sys,
		Spawner:  &countingSpawner{},
		Sleeper:  instantSleeper{},
		State:    state,
		Logger:   log.New(io.Discard),
	})
}

func makeFarm(t *testing.T, ids ...int) string {
	t.Helper()
	root := t.TempDir()
	for _, id := range ids {
		dir := filepath.Join(root, "TG "+strconv.Itoa(id))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "tdata"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Telegram"), nil, 0o755))
	}
	return root
}

func TestServicePing(t *testing.T) {
	svc := newTestService(t, "", &stubSystem{})
	resp, err := svc.Ping(context.Background(), &fleetv1.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.GetOk())
	assert.Equal(t, int32(os.Getpid()), resp.Pid)
}

func TestServiceRequiresRoot(t *testing.T) {
	svc := newTestService(t, "", &stubSystem{})

	_, err := svc.GetFleetSummary(context.Background(), &fleetv1.SummaryRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = svc.TerminatePids(context.Background(), &fleetv1.TerminatePidsRequest{Pids: []uint32{1}})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = svc.LaunchRange(context.Background(), &fleetv1.LaunchRangeRequest{Start: 1, End: 2})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestServiceLaunchRangeAndResume(t *testing.T) {
	root := makeFarm(t, 1, 2, 3)
	svc := newTestService(t, root, &stubSystem{})
	ctx := context.Background()

	_, err := svc.LaunchRange(ctx, &fleetv1.LaunchRangeRequest{Start: 3, End: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.LaunchRange(ctx, &fleetv1.LaunchRangeRequest{Start: 1, End: 2_000_000_000})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, ok := svc.state.Current()
	assert.False(t, ok)

	resp, err := svc.LaunchRange(ctx, &fleetv1.LaunchRangeRequest{Start: 1, End: 3})
	require.NoError(t, err)
	assert.Equal(t, []int32{501, 502}, resp.GetPids())
	assert.Equal(t, []int32{3}, resp.GetRemaining())

	st, err := svc.LaunchStatus(ctx, &fleetv1.LaunchStatusRequest{})
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.True(t, st.Active)
	assert.Equal(t, int32(3), st.TotalProfiles)
	assert.Equal(t, []int32{3}, st.Pending)

	resp, err = svc.ResumeLaunch(ctx, &fleetv1.ResumeLaunchRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int32{503}, resp.GetPids())
	assert.Empty(t, resp.GetRemaining())

	_, err = svc.ResumeLaunch(ctx, &fleetv1.ResumeLaunchRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	st, err = svc.LaunchStatus(ctx, &fleetv1.LaunchStatusRequest{})
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.False(t, st.Active)
	assert.Equal(t, []int32{501, 502, 503}, st.LaunchedPids)

	_, err = svc.ResetLaunch(ctx, &fleetv1.ResetLaunchRequest{})
	require.NoError(t, err)
	st, err = svc.LaunchStatus(ctx, &fleetv1.LaunchStatusRequest{})
	require.NoError(t, err)
	assert.False(t, st.Exists)
	assert.False(t, st.Active)
}

func TestServiceLaunchRejectsBadLink(t *testing.T) {
	root := makeFarm(t, 1)
	svc := newTestService(t, root, &stubSystem{})

	_, err := svc.LaunchRange(context.Background(), &fleetv1.LaunchRangeRequest{
		Start: 1,
		End:   1,
		Link:  fleetv1.LinkParams{AppName: "not a bot"},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, ok := svc.state.Current()
	assert.False(t, ok)
}

func TestServiceLaunchProfilesStreamsProgress(t *testing.T) {
	root := makeFarm(t, 4, 6)
	svc := newTestService(t, root, &stubSystem{})
	stream := &fakeLaunchStream{ctx: context.Background()}

	require.NoError(t, svc.LaunchProfiles(&fleetv1.LaunchProfilesRequest{Ids: []int32{6, 4}}, stream))
	require.Len(t, stream.events, 3)
	assert.Equal(t, int32(6), stream.events[0].Progress.ProfileId)
	assert.Equal(t, int32(2), stream.events[1].Progress.Index)
	require.NotNil(t, stream.events[2].Result)
	assert.Equal(t, []int32{501, 502}, stream.events[2].Result.GetPids())

	err := svc.LaunchProfiles(&fleetv1.LaunchProfilesRequest{Ids: []int32{0}}, stream)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServiceTerminate(t *testing.T) {
	root := makeFarm(t, 1, 2)
	exe := filepath.Join(root, "TG 1", "Telegram")
	sys := &stubSystem{procs: []procscan.Process{
		{PID: 70, Name: "Telegram", ExePath: exe},
		{PID: 71, Name: "Telegram", ExePath: "/opt/other/Telegram"},
	}}
	svc := newTestService(t, root, sys)
	ctx := context.Background()

	summary, err := svc.GetFleetSummary(ctx, &fleetv1.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), summary.Total)
	assert.Equal(t, int32(1), summary.Running)

	procs, err := svc.ListTargetProcesses(ctx, &fleetv1.ListProcessesRequest{})
	require.NoError(t, err)
	assert.Len(t, procs.GetProcesses(), 2)

	pids, err := svc.ProfilePids(ctx, &fleetv1.ProfilePidsRequest{Ids: []int32{1, 2}})
	require.NoError(t, err)
	require.Len(t, pids.GetProfiles(), 1)
	assert.Equal(t, []uint32{70}, pids.Profiles[0].Pids)

	resp, err := svc.TerminatePids(ctx, &fleetv1.TerminatePidsRequest{Pids: []uint32{71}})
	require.NoError(t, err)
	assert.Equal(t, int32(0), resp.GetClosed())

	_, err = svc.TerminateProfile(ctx, &fleetv1.TerminateProfileRequest{Id: 2})
	assert.Equal(t, codes.NotFound, status.Code(err))

	resp, err = svc.TerminateProfile(ctx, &fleetv1.TerminateProfileRequest{Id: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), resp.GetClosed())

	resp, err = svc.TerminateProfiles(ctx, &fleetv1.TerminateProfilesRequest{Ids: []int32{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, int32(0), resp.GetClosed())
}
