package fleet

import (
	"context"
	"os/exec"
)

// SpawnSpec describes one process start.
type SpawnSpec struct {
	Path string
	Args []string
	Dir  string
}

// Spawner starts detached processes.
type Spawner interface {
	// Spawn starts the process and returns its pid without waiting for it to exit.
	Spawn(ctx context.Context, spec SpawnSpec) (int, error)
}

// ExecSpawner starts processes with os/exec.
type ExecSpawner struct{}

// Spawn starts spec in its own process group. If ctx expires before the
// OS reports the start, the late child is killed and ctx.Err() is returned.
func (ExecSpawner) Spawn(ctx context.Context, spec SpawnSpec) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = detachedAttr()

	started := make(chan error, 1)
	go func() {
		started <- cmd.Start()
	}()

	select {
	case err := <-started:
		if err != nil {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			return 0, err
		}
		go func() { _ = cmd.Wait() }()
		return cmd.Process.Pid, nil
	case <-ctx.Done():
		go func() {
			if err := <-started; err == nil {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
			}
		}()
		return 0, ctx.Err()
	}
}
