package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"profleet/api/fleetv1"
)

// ErrNoProcessFound is returned by CloseOne when the profile has no live instance.
var ErrNoProcessFound = errors.New("no running instance for profile")

// ClosePIDs terminates the given pids. The daemon ignores pids outside the
// configured root. Returns the number closed.
func (a *App) ClosePIDs(ctx context.Context, pids []uint32, timeout time.Duration) (int, error) {
	if len(pids) == 0 {
		return 0, errors.New("no pids given")
	}
	var closed int
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.TerminatePids(ctx, &fleetv1.TerminatePidsRequest{Pids: pids})
		if err != nil {
			return fmt.Errorf("daemon terminate RPC failed: %w", err)
		}
		closed = int(resp.GetClosed())
		return nil
	})
	return closed, err
}

// CloseProfiles terminates every instance of the given profiles.
func (a *App) CloseProfiles(ctx context.Context, ids []int, timeout time.Duration) (int, error) {
	if len(ids) == 0 {
		return 0, errors.New("no profile ids given")
	}
	req := &fleetv1.TerminateProfilesRequest{Ids: make([]int32, 0, len(ids))}
	for _, id := range ids {
		id32, err := profileID32(id)
		if err != nil {
			return 0, err
		}
		req.Ids = append(req.Ids, id32)
	}
	var closed int
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.TerminateProfiles(ctx, req)
		if err != nil {
			return fmt.Errorf("daemon terminate RPC failed: %w", err)
		}
		closed = int(resp.GetClosed())
		return nil
	})
	return closed, err
}

// CloseOne terminates a single profile. It returns ErrNoProcessFound when
// nothing was running for it.
func (a *App) CloseOne(ctx context.Context, id int, timeout time.Duration) (int, error) {
	id32, err := profileID32(id)
	if err != nil {
		return 0, err
	}
	var closed int
	err = a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.TerminateProfile(ctx, &fleetv1.TerminateProfileRequest{Id: id32})
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w %d", ErrNoProcessFound, id)
		}
		if err != nil {
			return fmt.Errorf("daemon terminate RPC failed: %w", err)
		}
		closed = int(resp.GetClosed())
		return nil
	})
	return closed, err
}

// ProfilePIDs maps each given profile to its live pids. Profiles with no
// instance are absent.
func (a *App) ProfilePIDs(ctx context.Context, ids []int, timeout time.Duration) (map[int][]uint32, error) {
	req := &fleetv1.ProfilePidsRequest{Ids: make([]int32, 0, len(ids))}
	for _, id := range ids {
		id32, err := profileID32(id)
		if err != nil {
			return nil, err
		}
		req.Ids = append(req.Ids, id32)
	}
	out := make(map[int][]uint32)
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.ProfilePids(ctx, req)
		if err != nil {
			return fmt.Errorf("daemon profile pids RPC failed: %w", err)
		}
		for _, p := range resp.GetProfiles() {
			if p == nil || len(p.Pids) == 0 {
				continue
			}
			out[int(p.Id)] = append([]uint32(nil), p.Pids...)
		}
		return nil
	})
	return out, err
}
