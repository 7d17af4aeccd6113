package fleetv1

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	UnimplementedFleetServiceServer
}

func (stubServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Ok: "pong", Pid: 42}, nil
}

func (stubServer) TerminateProfile(_ context.Context, req *TerminateProfileRequest) (*TerminateResponse, error) {
	if req.Id == 7 {
		return nil, status.Error(codes.NotFound, "no running process found")
	}
	return &TerminateResponse{Closed: 1, Requested: 1}, nil
}

func (stubServer) LaunchProfiles(req *LaunchProfilesRequest, stream grpc.ServerStreamingServer[LaunchEvent]) error {
	for i, id := range req.Ids {
		if err := stream.Send(&LaunchEvent{Progress: &LaunchProgress{Index: int32(i + 1), Total: int32(len(req.Ids)), ProfileId: id}}); err != nil {
			return err
		}
	}
	return stream.Send(&LaunchEvent{Result: &LaunchResponse{Pids: []int32{100}}})
}

func dialStub(t *testing.T) FleetServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 16)
	srv := grpc.NewServer()
	RegisterFleetServiceServer(srv, stubServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewFleetServiceClient(conn)
}

func TestUnaryRoundTrip(t *testing.T) {
	client := dialStub(t)

	resp, err := client.Ping(context.Background(), &PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.GetOk())
	assert.Equal(t, int32(42), resp.Pid)
}

func TestStatusCodesSurvive(t *testing.T) {
	client := dialStub(t)

	_, err := client.TerminateProfile(context.Background(), &TerminateProfileRequest{Id: 7})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ResetLaunch(context.Background(), &ResetLaunchRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestServerStream(t *testing.T) {
	client := dialStub(t)

	stream, err := client.LaunchProfiles(context.Background(), &LaunchProfilesRequest{Ids: []int32{3, 9}})
	require.NoError(t, err)

	var progress []int32
	var result *LaunchResponse
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if ev.Progress != nil {
			progress = append(progress, ev.Progress.ProfileId)
		}
		if ev.Result != nil {
			result = ev.Result
		}
	}
	assert.Equal(t, []int32{3, 9}, progress)
	require.NotNil(t, result)
	assert.Equal(t, []int32{100}, result.GetPids())
}

func TestCodecEmptyPayload(t *testing.T) {
	var req PingRequest
	require.NoError(t, jsonCodec{}.Unmarshal(nil, &req))

	_, err := jsonCodec{}.Marshal(make(chan int))
	assert.Error(t, err)
}
