package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"profleet/api/fleetv1"
	"profleet/internal/config"
	"profleet/internal/deeplink"
	"profleet/internal/fleet"
	"profleet/internal/launchstate"
	"profleet/internal/procscan"
)

// service implements the fleet gRPC service. Settings are re-read on every
// call and no fleet state is cached between calls.
type service struct {
	fleetv1.UnimplementedFleetServiceServer

	settings *config.Loader
	system   procscan.System
	spawner  fleet.Spawner
	sleeper  fleet.Sleeper
	state    *launchstate.Store
	metrics  fleet.Recorder
	logger   *log.Logger
}

type serviceDeps struct {
	Settings *config.Loader
	System   procscan.System
	Spawner  fleet.Spawner
	Sleeper  fleet.Sleeper
	State    *launchstate.Store
	Metrics  fleet.Recorder
	Logger   *log.Logger
}

func newService(deps serviceDeps) *service {
	s := &service{
		settings: deps.Settings,
		system:   deps.System,
		spawner:  deps.Spawner,
		sleeper:  deps.Sleeper,
		state:    deps.State,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	if s.system == nil {
		s.system = procscan.NewSystem()
	}
	if s.spawner == nil {
		s.spawner = fleet.ExecSpawner{}
	}
	if s.sleeper == nil {
		s.sleeper = fleet.RealSleeper{}
	}
	if s.metrics == nil {
		s.metrics = fleet.NoopRecorder{}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

func (s *service) load() (config.Settings, fleet.Options, error) {
	settings, err := s.settings.Load()
	if err != nil {
		return settings, fleet.Options{}, status.Errorf(codes.Internal, "load settings: %v", err)
	}
	opts := settings.FleetOptions(s.logger)
	opts.System = s.system
	opts.Spawner = s.spawner
	opts.Sleeper = s.sleeper
	opts.Metrics = s.metrics
	return settings, opts, nil
}

func (s *service) Ping(ctx context.Context, _ *fleetv1.PingRequest) (*fleetv1.PingResponse, error) {
	return &fleetv1.PingResponse{Ok: "pong", Pid: int32(os.Getpid())}, nil
}

func (s *service) GetFleetSummary(ctx context.Context, req *fleetv1.SummaryRequest) (*fleetv1.SummaryResponse, error) {
	settings, opts, err := s.load()
	if err != nil {
		return nil, err
	}
	root := settings.Root()
	if req.Root != "" {
		root = req.Root
	}
	summary, err := fleet.NewReconciler(opts).Reconcile(ctx, root)
	if err != nil {
		return nil, statusError(err)
	}
	return &fleetv1.SummaryResponse{
		Total:    int32(summary.Total),
		Running:  int32(summary.Running),
		Disabled: int32(summary.Disabled),
		Unknown:  int32(summary.Unknown),
		Root:     summary.Root,
	}, nil
}

func (s *service) ListTargetProcesses(ctx context.Context, _ *fleetv1.ListProcessesRequest) (*fleetv1.ListProcessesResponse, error) {
	settings, _, err := s.load()
	if err != nil {
		return nil, err
	}
	procs, err := procscan.NewScanner(s.system, settings.ProcessTarget()).Scan(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "process scan failed: %v", err)
	}
	resp := &fleetv1.ListProcessesResponse{
		Processes: make([]*fleetv1.Process, 0, len(procs)),
	}
	for _, p := range procs {
		resp.Processes = append(resp.Processes, &fleetv1.Process{Pid: p.PID, Name: p.Name, Path: p.ExePath})
	}
	return resp, nil
}

func (s *service) LaunchRange(ctx context.Context, req *fleetv1.LaunchRangeRequest) (*fleetv1.LaunchResponse, error) {
	settings, opts, err := s.load()
	if err != nil {
		return nil, err
	}
	ids, err := fleet.ProfileRange(int(req.Start), int(req.End))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	batchSize := settings.BatchSizeValue()
	if req.BatchSize > 0 {
		batchSize = int(req.BatchSize)
	}
	link := linkFromProto(req.Link)
	if err := checkRoot(settings.Root()); err != nil {
		return nil, statusError(err)
	}
	if _, err := deeplink.Build(link); err != nil && !errors.Is(err, deeplink.ErrNoAppName) {
		return nil, statusError(err)
	}
	batch := fleet.BatchRequest{
		ProfileIDs: ids,
		Root:       settings.Root(),
		Link:       link,
		BatchSize:  batchSize,
	}

	s.state.Begin(launchstate.Session{
		Root:      batch.Root,
		Link:      link,
		BatchSize: batchSize,
		Pending:   ids,
	})
	return s.runBatch(ctx, opts, batch)
}

func (s *service) ResumeLaunch(ctx context.Context, _ *fleetv1.ResumeLaunchRequest) (*fleetv1.LaunchResponse, error) {
	_, opts, err := s.load()
	if err != nil {
		return nil, err
	}
	sess, ok := s.state.Current()
	if !ok || sess.Done() {
		return nil, status.Error(codes.FailedPrecondition, "no pending launch to resume")
	}
	link := sess.Link
	// Pending ids are already in launch order.
	link.Shuffle = false
	return s.runBatch(ctx, opts, fleet.BatchRequest{
		ProfileIDs: sess.Pending,
		Root:       sess.Root,
		Link:       link,
		BatchSize:  sess.BatchSize,
	})
}

func (s *service) runBatch(ctx context.Context, opts fleet.Options, batch fleet.BatchRequest) (*fleetv1.LaunchResponse, error) {
	res, launchErr := fleet.NewLauncher(opts).LaunchBatch(ctx, batch)
	if launchErr != nil && !isContextErr(launchErr) {
		return nil, statusError(launchErr)
	}
	if _, err := s.state.Advance(res.PIDs, res.Remaining); err != nil {
		s.logger.Warn("launch state not saved", "err", err)
	}
	if launchErr != nil {
		return nil, statusError(launchErr)
	}
	return launchResponse(res), nil
}

func (s *service) LaunchProfiles(req *fleetv1.LaunchProfilesRequest, stream grpc.ServerStreamingServer[fleetv1.LaunchEvent]) error {
	settings, opts, err := s.load()
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(req.Ids))
	for _, id := range req.Ids {
		if id <= 0 {
			return status.Errorf(codes.InvalidArgument, "invalid profile id %d", id)
		}
		ids = append(ids, int(id))
	}

	progress := func(p fleet.Progress) {
		ev := &fleetv1.LaunchEvent{Progress: &fleetv1.LaunchProgress{
			Index:     int32(p.Index),
			Total:     int32(p.Total),
			ProfileId: int32(p.ProfileID),
		}}
		if err := stream.Send(ev); err != nil {
			s.logger.Debug("progress not delivered", "err", err)
		}
	}
	res, err := fleet.NewLauncher(opts).LaunchExplicit(stream.Context(), ids, settings.Root(), linkFromProto(req.Link), progress)
	if err != nil {
		return statusError(err)
	}
	return stream.Send(&fleetv1.LaunchEvent{Result: launchResponse(res)})
}

func (s *service) LaunchStatus(ctx context.Context, _ *fleetv1.LaunchStatusRequest) (*fleetv1.LaunchStatusResponse, error) {
	sess, ok := s.state.Current()
	if !ok {
		return &fleetv1.LaunchStatusResponse{}, nil
	}
	return &fleetv1.LaunchStatusResponse{
		Exists:        true,
		Active:        !sess.Done(),
		Root:          sess.Root,
		Link:          linkToProto(sess.Link),
		BatchSize:     int32(sess.BatchSize),
		Pending:       toInt32(sess.Pending),
		LaunchedPids:  toInt32(sess.LaunchedPIDs),
		TotalProfiles: int32(sess.TotalProfiles),
		UpdatedUnix:   sess.UpdatedAt.Unix(),
	}, nil
}

func (s *service) ResetLaunch(ctx context.Context, _ *fleetv1.ResetLaunchRequest) (*fleetv1.ResetLaunchResponse, error) {
	if err := s.state.Clear(); err != nil {
		return nil, status.Errorf(codes.Internal, "reset launch state: %v", err)
	}
	return &fleetv1.ResetLaunchResponse{}, nil
}

func (s *service) terminator() (*fleet.Terminator, error) {
	settings, opts, err := s.load()
	if err != nil {
		return nil, err
	}
	term, err := fleet.NewTerminator(opts, settings.Root())
	if err != nil {
		return nil, statusError(err)
	}
	return term, nil
}

func (s *service) TerminatePids(ctx context.Context, req *fleetv1.TerminatePidsRequest) (*fleetv1.TerminateResponse, error) {
	term, err := s.terminator()
	if err != nil {
		return nil, err
	}
	closed := term.TerminatePIDs(ctx, req.Pids)
	return &fleetv1.TerminateResponse{Closed: int32(closed), Requested: int32(len(req.Pids))}, nil
}

func (s *service) TerminateProfiles(ctx context.Context, req *fleetv1.TerminateProfilesRequest) (*fleetv1.TerminateResponse, error) {
	term, err := s.terminator()
	if err != nil {
		return nil, err
	}
	closed := term.TerminateProfiles(ctx, toInts(req.Ids))
	return &fleetv1.TerminateResponse{Closed: int32(closed), Requested: int32(len(req.Ids))}, nil
}

func (s *service) TerminateProfile(ctx context.Context, req *fleetv1.TerminateProfileRequest) (*fleetv1.TerminateResponse, error) {
	if req.Id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid profile id %d", req.Id)
	}
	term, err := s.terminator()
	if err != nil {
		return nil, err
	}
	closed, err := term.TerminateProfile(ctx, int(req.Id))
	if err != nil {
		return nil, statusError(err)
	}
	return &fleetv1.TerminateResponse{Closed: int32(closed), Requested: 1}, nil
}

func (s *service) ProfilePids(ctx context.Context, req *fleetv1.ProfilePidsRequest) (*fleetv1.ProfilePidsResponse, error) {
	term, err := s.terminator()
	if err != nil {
		return nil, err
	}
	byID, err := term.ProfilePIDs(ctx, toInts(req.Ids))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "process scan failed: %v", err)
	}
	resp := &fleetv1.ProfilePidsResponse{}
	for _, id := range req.Ids {
		pids, ok := byID[int(id)]
		if !ok {
			continue
		}
		resp.Profiles = append(resp.Profiles, &fleetv1.ProfilePids{Id: id, Pids: pids})
	}
	return resp, nil
}

// statusError maps fleet errors to gRPC codes the client can tell apart.
func statusError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fleet.ErrNoProcessFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, fleet.ErrRootNotConfigured), errors.Is(err, fleet.ErrRootNotFound):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, deeplink.ErrInvalidAppName):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, fleet.ErrDirectoryRead):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// checkRoot rejects a launch before it replaces the stored session.
func checkRoot(root string) error {
	if root == "" {
		return fleet.ErrRootNotConfigured
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", fleet.ErrRootNotFound, root)
	}
	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func linkFromProto(p fleetv1.LinkParams) deeplink.Params {
	return deeplink.Params{
		AppName:    p.AppName,
		AppVariant: p.AppVariant,
		RefToken:   p.RefToken,
		Shuffle:    p.Shuffle,
	}
}

func linkToProto(p deeplink.Params) fleetv1.LinkParams {
	return fleetv1.LinkParams{
		AppName:    p.AppName,
		AppVariant: p.AppVariant,
		RefToken:   p.RefToken,
		Shuffle:    p.Shuffle,
	}
}

func launchResponse(res fleet.LaunchResult) *fleetv1.LaunchResponse {
	return &fleetv1.LaunchResponse{
		Pids:      toInt32(res.PIDs),
		Remaining: toInt32(res.Remaining),
	}
}

func toInt32(in []int) []int32 {
	if len(in) == 0 {
		return nil
	}
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
