package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"

	"profleet/api/fleetv1"
	"profleet/internal/config"
	"profleet/internal/fleet"
	"profleet/internal/launchstate"
	"profleet/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the gRPC server, its UNIX listener and the optional metrics endpoint.
type Server struct {
	grpc    *grpc.Server
	ln      net.Listener
	path    string
	metrics *http.Server
	logger  *log.Logger
}

// Close drains in-flight fleet calls, stops the metrics endpoint and unlinks
// the socket.
func (s *Server) Close() error {
	if s.grpc != nil {
		done := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			s.logger.Warn("in-flight calls did not finish, forcing stop")
			s.grpc.Stop()
		}
	}
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics server shutdown", "err", err)
		}
	}
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return RemovePID()
}

// StartDaemon binds the UNIX socket and serves the fleet service. cfgPath
// selects the settings file; empty means the default location.
func StartDaemon(cfgPath string) (*Server, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "daemon",
		ReportTimestamp: true,
		Level:           log.GetLevel(),
	})

	loader := config.NewLoader(cfgPath)
	settings, err := loader.Load()
	if err != nil {
		return nil, err
	}
	state, err := launchstate.Open(StatePath())
	if err != nil {
		return nil, err
	}

	if err := EnsureRuntimeDir(); err != nil {
		return nil, err
	}
	path := SocketPath()

	// A socket left by a crashed daemon blocks Listen.
	if _, err := os.Stat(path); err == nil && !IsRunning() {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, err
	}

	var recorder fleet.Recorder = fleet.NoopRecorder{}
	s := &Server{ln: ln, path: path, logger: logger}
	if addr := settings.Daemon.MetricsAddr; addr != "" {
		collector := metrics.NewCollector("profleet")
		recorder = collector
		s.metrics = serveMetrics(addr, collector, logger)
	}

	s.grpc = grpc.NewServer()
	fleetv1.RegisterFleetServiceServer(s.grpc, newService(serviceDeps{
		Settings: loader,
		State:    state,
		Metrics:  recorder,
		Logger:   logger,
	}))

	if err := WritePID(os.Getpid()); err != nil {
		ln.Close()
		s.Close()
		return nil, err
	}
	go func() {
		if err := s.grpc.Serve(ln); err != nil {
			logger.Error("grpc serve stopped", "err", err)
		}
	}()
	logger.Info("listening", "socket", path, "settings", loader.Path(), "root", settings.Root())
	return s, nil
}

func serveMetrics(addr string, collector *metrics.Collector, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint stopped", "addr", addr, "err", err)
		}
	}()
	logger.Info("metrics endpoint", "addr", addr)
	return srv
}

// StopRunningDaemon sends SIGTERM to the daemon named in the pid file.
// With force it escalates to SIGKILL when the daemon outlives the grace period.
func StopRunningDaemon(force bool) error {
	pid, err := RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning() {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath())
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(3 * time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning() {
			_ = RemovePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
