package app

import (
	"context"
	"fmt"
	"time"

	"profleet/api/fleetv1"
)

// Ping contacts the daemon and returns its health response.
func (a *App) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	var ok string
	err := a.withClient(ctx, timeout, func(ctx context.Context, client fleetv1.FleetServiceClient) error {
		resp, err := client.Ping(ctx, &fleetv1.PingRequest{})
		if err != nil {
			return fmt.Errorf("daemon ping RPC failed: %w", err)
		}
		ok = resp.GetOk()
		return nil
	})
	return ok, err
}
