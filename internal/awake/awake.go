// Package awake keeps the host from sleeping during long relocation runs
// by holding a platform sleep-inhibitor subprocess. Everything here is
// best-effort: a missing helper binary or a failed start is a silent no-op
// and never affects the run itself.
package awake

import (
	"os/exec"
	"runtime"
)

// Logger is the subset of logging used when starting and stopping the keeper.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Keeper holds the running sleep-inhibitor process, if any.
// The zero value and nil are both safe to Stop.
type Keeper struct {
	cmd    *exec.Cmd
	logger Logger
}

// inhibitorArgv returns the platform sleep-inhibitor command line, or nil
// when the platform has no known helper.
func inhibitorArgv() []string {
	switch runtime.GOOS {
	case "darwin":
		// -i: prevent idle sleep for as long as the process lives.
		return []string{"caffeinate", "-i"}
	case "linux":
		return []string{"systemd-inhibit", "--what=idle:sleep", "--why=longpath relocation in progress", "sleep", "infinity"}
	default:
		return nil
	}
}

// Start launches the sleep inhibitor for this platform. It returns a Keeper
// even when nothing was started, so callers can defer Stop unconditionally.
func Start(logger Logger) *Keeper {
	k := &Keeper{logger: logger}

	argv := inhibitorArgv()
	if argv == nil {
		k.debugf("no sleep inhibitor for %s", runtime.GOOS)
		return k
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		k.debugf("sleep inhibitor %s not available", argv[0])
		return k
	}

	cmd := exec.Command(path, argv[1:]...)
	if err := cmd.Start(); err != nil {
		k.warnf("failed to start sleep inhibitor %s: %v", argv[0], err)
		return k
	}

	k.cmd = cmd
	k.debugf("sleep inhibitor started: %s (pid %d)", argv[0], cmd.Process.Pid)
	return k
}

// Stop terminates the inhibitor process if one was started.
func (k *Keeper) Stop() {
	if k == nil || k.cmd == nil || k.cmd.Process == nil {
		return
	}
	if err := k.cmd.Process.Kill(); err != nil {
		k.warnf("failed to stop sleep inhibitor: %v", err)
	}
	// Reap the child so it doesn't linger as a zombie.
	_ = k.cmd.Wait()
	k.cmd = nil
}

func (k *Keeper) debugf(format string, args ...interface{}) {
	if k.logger != nil {
		k.logger.Debugf(format, args...)
	}
}

func (k *Keeper) warnf(format string, args ...interface{}) {
	if k.logger != nil {
		k.logger.Warnf(format, args...)
	}
}
