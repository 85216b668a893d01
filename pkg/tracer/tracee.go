package tracer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Phase tells which side of a syscall boundary the tracee is on.
type Phase int

const (
	Userspace Phase = iota
	Kernelspace
)

func (p Phase) String() string {
	if p == Kernelspace {
		return "kernelspace"
	}
	return "userspace"
}

type EventKind int

const (
	SyscallEntry EventKind = iota
	SyscallExit
	// Signal is a signal-delivery stop. The phase is unchanged.
	Signal
	// Exited is terminal: the process exited normally.
	Exited
	// Killed is terminal: the process was terminated by a signal.
	Killed
	// Exec is the PTRACE_EVENT_EXEC stop after a successful execve.
	Exec
)

func (k EventKind) String() string {
	switch k {
	case SyscallEntry:
		return "syscall-entry"
	case SyscallExit:
		return "syscall-exit"
	case Signal:
		return "signal"
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	case Exec:
		return "exec"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is what Step makes of a wait notification.
type Event struct {
	Kind EventKind
	// Signal is set for Signal and Killed.
	Signal unix.Signal
	// Status is the exit status for Exited.
	Status int
}

// Terminal reports whether no further Step calls are valid.
func (e Event) Terminal() bool {
	return e.Kind == Exited || e.Kind == Killed
}

const traceOptions = unix.PTRACE_O_TRACESYSGOOD | unix.PTRACE_O_TRACEEXEC

// Tracee is a tracing session over one stopped process. All methods must be
// called from the OS thread that started or attached the trace; see Start and
// Attach.
type Tracee struct {
	pid   int
	arch  Arch
	mem   *Memory
	phase Phase
	// signal to pass through on the next Resume
	pending unix.Signal
}

// New configures ptrace options on pid, which must already be traced by the
// calling thread and be in a ptrace-stop, and returns a session starting in
// Userspace.
func New(pid int) (*Tracee, error) {
	return newTracee(pid, traceOptions)
}

func newTracee(pid int, opts int) (*Tracee, error) {
	if nativeArch == nil {
		return nil, ErrUnsupportedArch
	}
	if err := unix.PtraceSetOptions(pid, opts); err != nil {
		return nil, osError("setoptions", pid, err)
	}
	return &Tracee{
		pid:   pid,
		arch:  nativeArch,
		mem:   NewMemory(pid),
		phase: Userspace,
	}, nil
}

func (t *Tracee) Pid() int     { return t.pid }
func (t *Tracee) Phase() Phase { return t.phase }
func (t *Tracee) Arch() Arch   { return t.arch }

// Step advances the state machine with the next wait notification for this
// tracee. It panics on notifications that cannot come from a traced process
// in a valid state: those are bugs in the caller.
func (t *Tracee) Step(ws unix.WaitStatus) Event {
	switch {
	case ws.Exited():
		return Event{Kind: Exited, Status: ws.ExitStatus()}
	case ws.Signaled():
		return Event{Kind: Killed, Signal: ws.Signal()}
	case ws.Stopped():
		sig := ws.StopSignal()
		switch {
		case sig == unix.SIGTRAP|0x80:
			if t.phase == Userspace {
				t.phase = Kernelspace
				return Event{Kind: SyscallEntry}
			}
			t.phase = Userspace
			return Event{Kind: SyscallExit}
		case sig == unix.SIGTRAP && ws.TrapCause() == unix.PTRACE_EVENT_EXEC:
			return Event{Kind: Exec}
		case sig == unix.SIGTRAP && ws.TrapCause() > 0:
			panic(fmt.Sprintf("pid %d: unexpected ptrace event %d", t.pid, ws.TrapCause()))
		default:
			t.pending = sig
			return Event{Kind: Signal, Signal: sig}
		}
	default:
		panic(fmt.Sprintf("pid %d: unexpected wait status %#x", t.pid, uint32(ws)))
	}
}

// Resume lets the tracee run to the next syscall boundary or signal. A signal
// reported by the previous Step is delivered, except SIGTRAP.
func (t *Tracee) Resume() error {
	sig := t.pending
	t.pending = 0
	if sig == unix.SIGTRAP {
		sig = 0
	}
	return osError("syscall", t.pid, unix.PtraceSyscall(t.pid, int(sig)))
}

// Detach ends the session. The process continues untraced. No other method
// may be called afterwards.
func (t *Tracee) Detach() error {
	return osError("detach", t.pid, unix.PtraceDetach(t.pid))
}

// Interrupt asks the tracee to stop with SIGSTOP. Unlike the other methods
// it may be called from any goroutine; the stop is reported by a later Step.
func (t *Tracee) Interrupt() error {
	return osError("kill", t.pid, unix.Kill(t.pid, unix.SIGSTOP))
}

// Wait blocks until the next notification for this tracee.
func (t *Tracee) Wait() (unix.WaitStatus, error) {
	return Wait(t.pid)
}

// SyscallNumber is meaningful only right after a SyscallEntry event.
func (t *Tracee) SyscallNumber() (uint64, error) {
	return readRegister(t.pid, t.arch, t.arch.SyscallNumberLocation())
}

// Argument returns raw argument i. It is meaningful only right after a
// SyscallEntry event and panics if i is not in [0, 6).
func (t *Tracee) Argument(i int) (uint64, error) {
	return readRegister(t.pid, t.arch, t.arch.ArgumentLocation(i))
}

// ReturnValue is meaningful only right after a SyscallExit event.
func (t *Tracee) ReturnValue() (int64, error) {
	v, err := readRegister(t.pid, t.arch, t.arch.ReturnValueLocation())
	return int64(v), err
}

func (t *Tracee) CopyFrom(addr, n uint64) ([]byte, error) {
	return t.mem.CopyFrom(addr, n)
}

func (t *Tracee) StrncpyFrom(addr uint64, max int) ([]byte, bool, error) {
	return t.mem.StrncpyFrom(addr, max)
}
