package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"profleet/api/fleetv1"
)

type fakeConn struct {
	invoke    func(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error
	newStream func(ctx context.Context, method string) (grpc.ClientStream, error)
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args interface{}, reply interface{}, opts ...grpc.CallOption) error {
	if f.invoke != nil {
		return f.invoke(ctx, method, args, reply, opts...)
	}
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	if f.newStream != nil {
		return f.newStream(ctx, method)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Close() error { return nil }

// fakeEventStream replays launch events and then returns err (io.EOF when nil).
type fakeEventStream struct {
	ctx    context.Context
	events []*fleetv1.LaunchEvent
	err    error
	sent   []any
}

func (s *fakeEventStream) Header() (metadata.MD, error) { return nil, nil }
func (s *fakeEventStream) Trailer() metadata.MD         { return nil }
func (s *fakeEventStream) CloseSend() error             { return nil }
func (s *fakeEventStream) Context() context.Context     { return s.ctx }

func (s *fakeEventStream) SendMsg(m any) error {
	s.sent = append(s.sent, m)
	return nil
}

func (s *fakeEventStream) RecvMsg(m any) error {
	if len(s.events) == 0 {
		if s.err != nil {
			return s.err
		}
		return io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	*(m.(*fleetv1.LaunchEvent)) = *ev
	return nil
}

func stubDaemon(t *testing.T, running bool, dial func(context.Context) (fleetv1.FleetServiceClient, io.Closer, error)) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func() bool { return running }
	if dial == nil {
		dial = func(context.Context) (fleetv1.FleetServiceClient, io.Closer, error) {
			return nil, nil, errors.New("dial not stubbed")
		}
	}
	dialDaemonClient = dial
	t.Cleanup(resetDaemonDeps)
}

func stubConn(t *testing.T, conn *fakeConn) {
	t.Helper()
	stubDaemon(t, true, func(context.Context) (fleetv1.FleetServiceClient, io.Closer, error) {
		return fleetv1.NewFleetServiceClient(conn), conn, nil
	})
}
