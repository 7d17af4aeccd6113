package fleetv1

// LinkParams are the deep-link inputs of a launch.
type LinkParams struct {
	AppName    string `json:"app_name,omitempty"`
	AppVariant string `json:"app_type,omitempty"`
	RefToken   string `json:"ref_link,omitempty"`
	Shuffle    bool   `json:"shuffle,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Ok  string `json:"ok"`
	Pid int32  `json:"pid"`
}

func (x *PingResponse) GetOk() string {
	if x == nil {
		return ""
	}
	return x.Ok
}

// SummaryRequest asks for a reconcile. An empty Root uses the configured one.
type SummaryRequest struct {
	Root string `json:"root_path,omitempty"`
}

type SummaryResponse struct {
	Total    int32  `json:"total"`
	Running  int32  `json:"running"`
	Disabled int32  `json:"disabled"`
	Unknown  int32  `json:"unknown"`
	Root     string `json:"root_path"`
}

type Process struct {
	Pid  uint32 `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type ListProcessesRequest struct{}

type ListProcessesResponse struct {
	Processes []*Process `json:"processes"`
}

func (x *ListProcessesResponse) GetProcesses() []*Process {
	if x == nil {
		return nil
	}
	return x.Processes
}

type LaunchRangeRequest struct {
	Start int32      `json:"start"`
	End   int32      `json:"end"`
	Link  LinkParams `json:"link"`
	// BatchSize overrides the configured batch size when positive.
	BatchSize int32 `json:"batch_size,omitempty"`
}

type LaunchResponse struct {
	Pids      []int32 `json:"pids"`
	Remaining []int32 `json:"remaining,omitempty"`
}

func (x *LaunchResponse) GetPids() []int32 {
	if x == nil {
		return nil
	}
	return x.Pids
}

func (x *LaunchResponse) GetRemaining() []int32 {
	if x == nil {
		return nil
	}
	return x.Remaining
}

type LaunchProfilesRequest struct {
	Ids  []int32    `json:"ids"`
	Link LinkParams `json:"link"`
}

type LaunchProgress struct {
	Index     int32 `json:"batch_index"`
	Total     int32 `json:"batch_total"`
	ProfileId int32 `json:"profile_id"`
}

// LaunchEvent is one message of the LaunchProfiles stream: progress
// events followed by a single final result.
type LaunchEvent struct {
	Progress *LaunchProgress `json:"progress,omitempty"`
	Result   *LaunchResponse `json:"result,omitempty"`
}

type ResumeLaunchRequest struct{}

type LaunchStatusRequest struct{}

type LaunchStatusResponse struct {
	Exists        bool       `json:"exists"`
	Active        bool       `json:"active"`
	Root          string     `json:"root_path,omitempty"`
	Link          LinkParams `json:"link"`
	BatchSize     int32      `json:"batch_size"`
	Pending       []int32    `json:"pending_profiles,omitempty"`
	LaunchedPids  []int32    `json:"launched_pids,omitempty"`
	TotalProfiles int32      `json:"total_profiles"`
	UpdatedUnix   int64      `json:"updated_unix"`
}

type ResetLaunchRequest struct{}

type ResetLaunchResponse struct{}

type TerminatePidsRequest struct {
	Pids []uint32 `json:"pids"`
}

type TerminateProfilesRequest struct {
	Ids []int32 `json:"ids"`
}

type TerminateProfileRequest struct {
	Id int32 `json:"id"`
}

type TerminateResponse struct {
	Closed    int32 `json:"closed"`
	Requested int32 `json:"requested"`
}

func (x *TerminateResponse) GetClosed() int32 {
	if x == nil {
		return 0
	}
	return x.Closed
}

type ProfilePidsRequest struct {
	Ids []int32 `json:"ids"`
}

type ProfilePids struct {
	Id   int32    `json:"id"`
	Pids []uint32 `json:"pids"`
}

type ProfilePidsResponse struct {
	Profiles []*ProfilePids `json:"profiles"`
}

func (x *ProfilePidsResponse) GetProfiles() []*ProfilePids {
	if x == nil {
		return nil
	}
	return x.Profiles
}
