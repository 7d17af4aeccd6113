package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"profleet/api/fleetv1"
	"profleet/internal/config"
)

// SocketBaseName is the file name of the daemon socket when no explicit
// path is configured.
const SocketBaseName = "profleet.sock"

const (
	pidFileName   = "profleet.pid"
	stateFileName = "launch.json"
)

// SocketPath resolves where the fleet daemon listens. PROFLEET_SOCKET names
// the socket directly. Otherwise the socket lives in PROFLEET_RUNTIME_DIR,
// then on Linux in $XDG_RUNTIME_DIR or /run/user/<uid>, and elsewhere in
// /tmp under a per-user name.
func SocketPath() string {
	if explicit := os.Getenv("PROFLEET_SOCKET"); explicit != "" {
		return explicit
	}

	uid := currentUID()

	if rd := os.Getenv("PROFLEET_RUNTIME_DIR"); rd != "" {
		return filepath.Join(rd, SocketBaseName)
	}

	if runtime.GOOS == "linux" {
		if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
			return filepath.Join(v, SocketBaseName)
		}
		return filepath.Join("/run/user", uid, SocketBaseName)
	}

	// sun_path is short on darwin and the BSDs.
	return filepath.Join("/tmp", "profleet-"+uid+".sock")
}

// StatePath returns the launch session snapshot path. PROFLEET_STATE
// overrides the default inside the profleet home.
func StatePath() string {
	if explicit := os.Getenv("PROFLEET_STATE"); explicit != "" {
		return explicit
	}
	return filepath.Join(config.Home(), stateFileName)
}

// EnsureRuntimeDir creates the directory holding the socket and pid file.
func EnsureRuntimeDir() error {
	dir := filepath.Dir(SocketPath())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return nil
}

// PIDPath sits next to the socket so both share one lifetime.
func PIDPath() string {
	return filepath.Join(filepath.Dir(SocketPath()), pidFileName)
}

// WritePID records the daemon pid for `profleet daemon stop`.
func WritePID(pid int) error {
	if err := EnsureRuntimeDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDPath(), []byte(fmt.Sprintf("%d\n", pid)), 0o600)
}

// RemovePID is a no-op when the pid file is already gone.
func RemovePID() error {
	if err := os.Remove(PIDPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// RunningPID reads the pid recorded by WritePID.
func RunningPID() (int, error) {
	data, err := os.ReadFile(PIDPath())
	if err != nil {
		return 0, err
	}
	value := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// IsRunning reports whether a fleet daemon answers Ping on the socket.
func IsRunning() bool {
	if _, err := os.Stat(SocketPath()); err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	client, conn, err := Dial(ctx)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := client.Ping(ctx, &fleetv1.PingRequest{}); err != nil {
		return false
	}
	return true
}

func currentUID() string {
	u, err := user.Current()
	if err == nil && u != nil && u.Uid != "" {
		return u.Uid
	}
	return "0"
}
