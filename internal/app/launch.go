package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"profleet/api/fleetv1"
	"profleet/internal/deeplink"
)

// LaunchResult lists the spawned pids and the profiles left for the next batch.
type LaunchResult struct {
	PIDs      []int
	Remaining []int
}

// Progress reports one finished profile of an explicit launch.
type Progress struct {
	Index     int
	Total     int
	ProfileID int
}

// LaunchRangeParams configures a batched launch.
type LaunchRangeParams struct {
	Start     int
	End       int
	Link      deeplink.Params
	BatchSize int
	Timeout   time.Duration
}

// LaunchIDsParams configures a launch of explicit profile ids.
type LaunchIDsParams struct {
	IDs      []int
	Link     deeplink.Params
	Timeout  time.Duration
	Progress func(Progress)
}

// LaunchState is the daemon's view of the current batched session.
// LaunchState describes the batched session. Exists is false when there is
// none; Active is false once a session has no pending profiles.
type LaunchState struct {
	Exists        bool
	Active        bool
	Root          string
	Link          deeplink.Params
	BatchSize     int
	Pending       []int
	LaunchedPIDs  []int
	TotalProfiles int
	UpdatedAt     time.Time
}

// LaunchRange starts the first batch of profiles start..end.
func (a *App) LaunchRange(ctx context.Context, params LaunchRangeParams) (LaunchResult, error) {
	start, err := profileID32(params.Start)
	if err != nil {
		return LaunchResult{}, err
	}
	end, err := profileID32(params.End)
	if err != nil {
		return LaunchResult{}, err
	}
	if end < start {
		return LaunchResult{}, fmt.Errorf("invalid profile range %d-%d", params.Start, params.End)
	}
	var out LaunchResult
	err = a.withClient(ctx, params.Timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.LaunchRange(ctx, &fleetv1.LaunchRangeRequest{
			Start:     start,
			End:       end,
			Link:      linkToProto(params.Link),
			BatchSize: int32(min(max(params.BatchSize, 0), math.MaxInt32)),
		})
		if err != nil {
			return fmt.Errorf("daemon launch RPC failed: %w", err)
		}
		out = resultFromProto(resp)
		return nil
	})
	return out, err
}

// ResumeLaunch runs the next batch of the pending session.
func (a *App) ResumeLaunch(ctx context.Context, timeout time.Duration) (LaunchResult, error) {
	var out LaunchResult
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.ResumeLaunch(ctx, &fleetv1.ResumeLaunchRequest{})
		if err != nil {
			return fmt.Errorf("daemon resume RPC failed: %w", err)
		}
		out = resultFromProto(resp)
		return nil
	})
	return out, err
}

// LaunchIDs launches the given profiles and reports progress as each one
// is attempted.
func (a *App) LaunchIDs(ctx context.Context, params LaunchIDsParams) (LaunchResult, error) {
	if len(params.IDs) == 0 {
		return LaunchResult{}, errors.New("no profile ids given")
	}
	ids := make([]int32, 0, len(params.IDs))
	for _, id := range params.IDs {
		id32, err := profileID32(id)
		if err != nil {
			return LaunchResult{}, err
		}
		ids = append(ids, id32)
	}

	var out LaunchResult
	err := a.withClient(ctx, params.Timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		stream, err := client.LaunchProfiles(ctx, &fleetv1.LaunchProfilesRequest{
			Ids:  ids,
			Link: linkToProto(params.Link),
		})
		if err != nil {
			return fmt.Errorf("daemon launch RPC failed: %w", err)
		}
		for {
			ev, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return errors.New("launch stream ended without a result")
			}
			if err != nil {
				return fmt.Errorf("daemon launch stream failed: %w", err)
			}
			if ev.Progress != nil && params.Progress != nil {
				params.Progress(Progress{
					Index:     int(ev.Progress.Index),
					Total:     int(ev.Progress.Total),
					ProfileID: int(ev.Progress.ProfileId),
				})
			}
			if ev.Result != nil {
				out = resultFromProto(ev.Result)
				return nil
			}
		}
	})
	return out, err
}

// LaunchStatus returns the current batched session, if any.
func (a *App) LaunchStatus(ctx context.Context, timeout time.Duration) (LaunchState, error) {
	var out LaunchState
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.LaunchStatus(ctx, &fleetv1.LaunchStatusRequest{})
		if err != nil {
			return fmt.Errorf("daemon launch status RPC failed: %w", err)
		}
		out = LaunchState{
			Exists:        resp.Exists,
			Active:        resp.Active,
			Root:          resp.Root,
			Link:          linkFromProto(resp.Link),
			BatchSize:     int(resp.BatchSize),
			Pending:       toInts(resp.Pending),
			LaunchedPIDs:  toInts(resp.LaunchedPids),
			TotalProfiles: int(resp.TotalProfiles),
		}
		if resp.UpdatedUnix > 0 {
			out.UpdatedAt = time.Unix(resp.UpdatedUnix, 0)
		}
		return nil
	})
	return out, err
}

// ResetLaunch discards the pending session.
func (a *App) ResetLaunch(ctx context.Context, timeout time.Duration) error {
	return a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		if _, err := client.ResetLaunch(ctx, &fleetv1.ResetLaunchRequest{}); err != nil {
			return fmt.Errorf("daemon reset RPC failed: %w", err)
		}
		return nil
	})
}

// profileID32 narrows a profile id for the wire, rejecting ids that would wrap.
func profileID32(id int) (int32, error) {
	if id <= 0 || id > math.MaxInt32 {
		return 0, fmt.Errorf("invalid profile id %d", id)
	}
	return int32(id), nil
}

func resultFromProto(resp *fleetv1.LaunchResponse) LaunchResult {
	return LaunchResult{
		PIDs:      toInts(resp.GetPids()),
		Remaining: toInts(resp.GetRemaining()),
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

func linkFromProto(p fleetv1.LinkParams) deeplink.Params {
	return deeplink.Params{
		AppName:    p.AppName,
		AppVariant: p.AppVariant,
		RefToken:   p.RefToken,
		Shuffle:    p.Shuffle,
	}
}

func toInts(in []int32) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
