// Package fleetv1 defines the daemon's gRPC service. Messages are plain Go
// structs encoded with the JSON codec registered under CodecName.
package fleetv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	FleetService_Ping_FullMethodName                = "/profleet.fleet.v1.FleetService/Ping"
	FleetService_GetFleetSummary_FullMethodName     = "/profleet.fleet.v1.FleetService/GetFleetSummary"
	FleetService_ListTargetProcesses_FullMethodName = "/profleet.fleet.v1.FleetService/ListTargetProcesses"
	FleetService_LaunchRange_FullMethodName         = "/profleet.fleet.v1.FleetService/LaunchRange"
	FleetService_LaunchProfiles_FullMethodName      = "/profleet.fleet.v1.FleetService/LaunchProfiles"
	FleetService_ResumeLaunch_FullMethodName        = "/profleet.fleet.v1.FleetService/ResumeLaunch"
	FleetService_LaunchStatus_FullMethodName        = "/profleet.fleet.v1.FleetService/LaunchStatus"
	FleetService_ResetLaunch_FullMethodName         = "/profleet.fleet.v1.FleetService/ResetLaunch"
	FleetService_TerminatePids_FullMethodName       = "/profleet.fleet.v1.FleetService/TerminatePids"
	FleetService_TerminateProfiles_FullMethodName   = "/profleet.fleet.v1.FleetService/TerminateProfiles"
	FleetService_TerminateProfile_FullMethodName    = "/profleet.fleet.v1.FleetService/TerminateProfile"
	FleetService_ProfilePids_FullMethodName         = "/profleet.fleet.v1.FleetService/ProfilePids"
)

// FleetServiceClient is the client API for FleetService.
type FleetServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetFleetSummary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error)
	ListTargetProcesses(ctx context.Context, in *ListProcessesRequest, opts ...grpc.CallOption) (*ListProcessesResponse, error)
	LaunchRange(ctx context.Context, in *LaunchRangeRequest, opts ...grpc.CallOption) (*LaunchResponse, error)
	LaunchProfiles(ctx context.Context, in *LaunchProfilesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LaunchEvent], error)
	ResumeLaunch(ctx context.Context, in *ResumeLaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error)
	LaunchStatus(ctx context.Context, in *LaunchStatusRequest, opts ...grpc.CallOption) (*LaunchStatusResponse, error)
	ResetLaunch(ctx context.Context, in *ResetLaunchRequest, opts ...grpc.CallOption) (*ResetLaunchResponse, error)
	TerminatePids(ctx context.Context, in *TerminatePidsRequest, opts ...grpc.CallOption) (*TerminateResponse, error)
	TerminateProfiles(ctx context.Context, in *TerminateProfilesRequest, opts ...grpc.CallOption) (*TerminateResponse, error)
	TerminateProfile(ctx context.Context, in *TerminateProfileRequest, opts ...grpc.CallOption) (*TerminateResponse, error)
	ProfilePids(ctx context.Context, in *ProfilePidsRequest, opts ...grpc.CallOption) (*ProfilePidsResponse, error)
}

type fleetServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFleetServiceClient(cc grpc.ClientConnInterface) FleetServiceClient {
	return &fleetServiceClient{cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fleetServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, FleetService_Ping_FullMethodName, in, opts)
}

func (c *fleetServiceClient) GetFleetSummary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error) {
	return invoke[SummaryRequest, SummaryResponse](ctx, c.cc, FleetService_GetFleetSummary_FullMethodName, in, opts)
}

func (c *fleetServiceClient) ListTargetProcesses(ctx context.Context, in *ListProcessesRequest, opts ...grpc.CallOption) (*ListProcessesResponse, error) {
	return invoke[ListProcessesRequest, ListProcessesResponse](ctx, c.cc, FleetService_ListTargetProcesses_FullMethodName, in, opts)
}

func (c *fleetServiceClient) LaunchRange(ctx context.Context, in *LaunchRangeRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[LaunchRangeRequest, LaunchResponse](ctx, c.cc, FleetService_LaunchRange_FullMethodName, in, opts)
}

func (c *fleetServiceClient) LaunchProfiles(ctx context.Context, in *LaunchProfilesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LaunchEvent], error) {
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &FleetService_ServiceDesc.Streams[0], FleetService_LaunchProfiles_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[LaunchProfilesRequest, LaunchEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *fleetServiceClient) ResumeLaunch(ctx context.Context, in *ResumeLaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[ResumeLaunchRequest, LaunchResponse](ctx, c.cc, FleetService_ResumeLaunch_FullMethodName, in, opts)
}

func (c *fleetServiceClient) LaunchStatus(ctx context.Context, in *LaunchStatusRequest, opts ...grpc.CallOption) (*LaunchStatusResponse, error) {
	return invoke[LaunchStatusRequest, LaunchStatusResponse](ctx, c.cc, FleetService_LaunchStatus_FullMethodName, in, opts)
}

func (c *fleetServiceClient) ResetLaunch(ctx context.Context, in *ResetLaunchRequest, opts ...grpc.CallOption) (*ResetLaunchResponse, error) {
	return invoke[ResetLaunchRequest, ResetLaunchResponse](ctx, c.cc, FleetService_ResetLaunch_FullMethodName, in, opts)
}

func (c *fleetServiceClient) TerminatePids(ctx context.Context, in *TerminatePidsRequest, opts ...grpc.CallOption) (*TerminateResponse, error) {
	return invoke[TerminatePidsRequest, TerminateResponse](ctx, c.cc, FleetService_TerminatePids_FullMethodName, in, opts)
}

func (c *fleetServiceClient) TerminateProfiles(ctx context.Context, in *TerminateProfilesRequest, opts ...grpc.CallOption) (*TerminateResponse, error) {
	return invoke[TerminateProfilesRequest, TerminateResponse](ctx, c.cc, FleetService_TerminateProfiles_FullMethodName, in, opts)
}

func (c *fleetServiceClient) TerminateProfile(ctx context.Context, in *TerminateProfileRequest, opts ...grpc.CallOption) (*TerminateResponse, error) {
	return invoke[TerminateProfileRequest, TerminateResponse](ctx, c.cc, FleetService_TerminateProfile_FullMethodName, in, opts)
}

func (c *fleetServiceClient) ProfilePids(ctx context.Context, in *ProfilePidsRequest, opts ...grpc.CallOption) (*ProfilePidsResponse, error) {
	return invoke[ProfilePidsRequest, ProfilePidsResponse](ctx, c.cc, FleetService_ProfilePids_FullMethodName, in, opts)
}

// FleetServiceServer is the server API for FleetService.
// All implementations must embed UnimplementedFleetServiceServer.
type FleetServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetFleetSummary(context.Context, *SummaryRequest) (*SummaryResponse, error)
	ListTargetProcesses(context.Context, *ListProcessesRequest) (*ListProcessesResponse, error)
	LaunchRange(context.Context, *LaunchRangeRequest) (*LaunchResponse, error)
	LaunchProfiles(*LaunchProfilesRequest, grpc.ServerStreamingServer[LaunchEvent]) error
	ResumeLaunch(context.Context, *ResumeLaunchRequest) (*LaunchResponse, error)
	LaunchStatus(context.Context, *LaunchStatusRequest) (*LaunchStatusResponse, error)
	ResetLaunch(context.Context, *ResetLaunchRequest) (*ResetLaunchResponse, error)
	TerminatePids(context.Context, *TerminatePidsRequest) (*TerminateResponse, error)
	TerminateProfiles(context.Context, *TerminateProfilesRequest) (*TerminateResponse, error)
	TerminateProfile(context.Context, *TerminateProfileRequest) (*TerminateResponse, error)
	ProfilePids(context.Context, *ProfilePidsRequest) (*ProfilePidsResponse, error)
	mustEmbedUnimplementedFleetServiceServer()
}

// UnimplementedFleetServiceServer must be embedded to have forward compatible implementations.
type UnimplementedFleetServiceServer struct{}

func (UnimplementedFleetServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedFleetServiceServer) GetFleetSummary(context.Context, *SummaryRequest) (*SummaryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFleetSummary not implemented")
}
func (UnimplementedFleetServiceServer) ListTargetProcesses(context.Context, *ListProcessesRequest) (*ListProcessesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTargetProcesses not implemented")
}
func (UnimplementedFleetServiceServer) LaunchRange(context.Context, *LaunchRangeRequest) (*LaunchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method LaunchRange not implemented")
}
func (UnimplementedFleetServiceServer) LaunchProfiles(*LaunchProfilesRequest, grpc.ServerStreamingServer[LaunchEvent]) error {
	return status.Error(codes.Unimplemented, "method LaunchProfiles not implemented")
}
func (UnimplementedFleetServiceServer) ResumeLaunch(context.Context, *ResumeLaunchRequest) (*LaunchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResumeLaunch not implemented")
}
func (UnimplementedFleetServiceServer) LaunchStatus(context.Context, *LaunchStatusRequest) (*LaunchStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method LaunchStatus not implemented")
}
func (UnimplementedFleetServiceServer) ResetLaunch(context.Context, *ResetLaunchRequest) (*ResetLaunchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetLaunch not implemented")
}
func (UnimplementedFleetServiceServer) TerminatePids(context.Context, *TerminatePidsRequest) (*TerminateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TerminatePids not implemented")
}
func (UnimplementedFleetServiceServer) TerminateProfiles(context.Context, *TerminateProfilesRequest) (*TerminateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TerminateProfiles not implemented")
}
func (UnimplementedFleetServiceServer) TerminateProfile(context.Context, *TerminateProfileRequest) (*TerminateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TerminateProfile not implemented")
}
func (UnimplementedFleetServiceServer) ProfilePids(context.Context, *ProfilePidsRequest) (*ProfilePidsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProfilePids not implemented")
}
func (UnimplementedFleetServiceServer) mustEmbedUnimplementedFleetServiceServer() {}

func RegisterFleetServiceServer(s grpc.ServiceRegistrar, srv FleetServiceServer) {
	s.RegisterService(&FleetService_ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(FleetServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FleetServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FleetServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _FleetService_LaunchProfiles_Handler(srv any, stream grpc.ServerStream) error {
	m := new(LaunchProfilesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FleetServiceServer).LaunchProfiles(m, &grpc.GenericServerStream[LaunchProfilesRequest, LaunchEvent]{ServerStream: stream})
}

// FleetService_ServiceDesc is the grpc.ServiceDesc for FleetService.
var FleetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "profleet.fleet.v1.FleetService",
	HandlerType: (*FleetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(FleetService_Ping_FullMethodName, FleetServiceServer.Ping)},
		{MethodName: "GetFleetSummary", Handler: unaryHandler(FleetService_GetFleetSummary_FullMethodName, FleetServiceServer.GetFleetSummary)},
		{MethodName: "ListTargetProcesses", Handler: unaryHandler(FleetService_ListTargetProcesses_FullMethodName, FleetServiceServer.ListTargetProcesses)},
		{MethodName: "LaunchRange", Handler: unaryHandler(FleetService_LaunchRange_FullMethodName, FleetServiceServer.LaunchRange)},
		{MethodName: "ResumeLaunch", Handler: unaryHandler(FleetService_ResumeLaunch_FullMethodName, FleetServiceServer.ResumeLaunch)},
		{MethodName: "LaunchStatus", Handler: unaryHandler(FleetService_LaunchStatus_FullMethodName, FleetServiceServer.LaunchStatus)},
		{MethodName: "ResetLaunch", Handler: unaryHandler(FleetService_ResetLaunch_FullMethodName, FleetServiceServer.ResetLaunch)},
		{MethodName: "TerminatePids", Handler: unaryHandler(FleetService_TerminatePids_FullMethodName, FleetServiceServer.TerminatePids)},
		{MethodName: "TerminateProfiles", Handler: unaryHandler(FleetService_TerminateProfiles_FullMethodName, FleetServiceServer.TerminateProfiles)},
		{MethodName: "TerminateProfile", Handler: unaryHandler(FleetService_TerminateProfile_FullMethodName, FleetServiceServer.TerminateProfile)},
		{MethodName: "ProfilePids", Handler: unaryHandler(FleetService_ProfilePids_FullMethodName, FleetServiceServer.ProfilePids)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "LaunchProfiles",
			Handler:       _FleetService_LaunchProfiles_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "api/fleetv1",
}
