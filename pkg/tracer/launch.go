package tracer

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// ptrace is per thread: Start and Attach must be called with the goroutine
// locked to its OS thread (runtime.LockOSThread), and every later call on the
// returned Tracee must come from that same thread.

// Start launches cmd so that the child asks to be traced before it execs, and
// returns once the child is stopped at the start of the new program. The
// child is killed if the tracer exits.
func Start(cmd *exec.Cmd) (*Tracee, error) {
	return start(cmd, traceOptions|unix.PTRACE_O_EXITKILL)
}

func start(cmd *exec.Cmd, opts int) (*Tracee, error) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Ptrace = true

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}
	pid := cmd.Process.Pid

	ws, err := Wait(pid)
	if err != nil {
		kill(cmd)
		return nil, fmt.Errorf("initial wait failed: %w", err)
	}
	if !ws.Stopped() || ws.StopSignal() != unix.SIGTRAP {
		kill(cmd)
		return nil, fmt.Errorf("pid %d: expected initial SIGTRAP stop, got status %#x", pid, uint32(ws))
	}

	t, err := newTracee(pid, opts)
	if err != nil {
		kill(cmd)
		return nil, err
	}
	logInfo("started", "pid", pid, "path", cmd.Path)
	return t, nil
}

// kill ends and reaps a child that will not be traced.
func kill(cmd *exec.Cmd) {
	if err := cmd.Process.Kill(); err != nil {
		debugf("kill pid %d: %v", cmd.Process.Pid, err)
	}
	cmd.Wait()
}

// Attach starts tracing an already running process and returns once it is in
// the attach stop.
func Attach(pid int) (*Tracee, error) {
	if err := unix.PtraceAttach(pid); err != nil {
		return nil, osError("attach", pid, err)
	}
	for {
		ws, err := Wait(pid)
		if err != nil {
			unix.PtraceDetach(pid)
			return nil, err
		}
		if ws.Exited() || ws.Signaled() {
			return nil, fmt.Errorf("pid %d: process ended before attach completed", pid)
		}
		if ws.Stopped() && ws.StopSignal() == unix.SIGSTOP {
			break
		}
		// Some other signal won the race with our SIGSTOP. Deliver it and
		// wait for the stop that is still pending.
		if err := unix.PtraceCont(pid, int(ws.StopSignal())); err != nil {
			return nil, osError("cont", pid, err)
		}
	}

	t, err := New(pid)
	if err != nil {
		unix.PtraceDetach(pid)
		return nil, err
	}
	logInfo("attached", "pid", pid)
	return t, nil
}

// Wait blocks until pid changes state. EINTR is retried.
func Wait(pid int) (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, unix.WALL, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, osError("wait4", pid, err)
		}
		return ws, nil
	}
}
