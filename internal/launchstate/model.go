package launchstate

import (
	"time"

	"profleet/internal/deeplink"
)

// Session is the persisted progress of a batch-capped launch. Pending
// holds the ids left behind by the last batch cutoff, in launch order.
type Session struct {
	Root          string          `json:"root_path"`
	Link          deeplink.Params `json:"launch_params"`
	BatchSize     int             `json:"batch_size"`
	Pending       []int           `json:"pending_profiles"`
	LaunchedPIDs  []int           `json:"launched_pids"`
	TotalProfiles int             `json:"total_profiles"`
	StartedAt     time.Time       `json:"started_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Done reports whether the session has nothing left to launch.
func (s Session) Done() bool {
	return len(s.Pending) == 0
}

// Launched returns how many profiles of the session have been attempted.
func (s Session) Launched() int {
	return max(0, s.TotalProfiles-len(s.Pending))
}

func now() time.Time {
	return time.Now().UTC()
}
