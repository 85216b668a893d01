// Package driver runs the trace loop: it waits for stops, feeds them to the
// tracee's state machine, decodes calls at entry, and prints a record for
// each call when it returns.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"

	"github.com/psarna/gtrace/pkg/syscalls"
	"github.com/psarna/gtrace/pkg/tracer"
)

// Session is the part of a *tracer.Tracee the loop drives.
type Session interface {
	syscalls.Process
	Pid() int
	Wait() (unix.WaitStatus, error)
	Step(unix.WaitStatus) tracer.Event
	ReturnValue() (int64, error)
	Resume() error
	Detach() error
	Interrupt() error
}

var _ Session = (*tracer.Tracee)(nil)

type Options struct {
	Decoder *syscalls.Decoder
	Printer *Printer
	// DecodeFDs annotates descriptors with the path they were opened from.
	DecodeFDs bool
	Logger    *slog.Logger
}

func (o *Options) defaults() {
	if o.Decoder == nil {
		o.Decoder = syscalls.NewDecoder()
	}
	if o.Printer == nil {
		o.Printer = NewPrinter(nil)
	}
	if o.Logger == nil {
		o.Logger = tracer.Logger()
	}
}

type loop struct {
	s    Session
	opts Options
	fds  *FDTable
	// decoded at entry, waiting for the exit stop
	pending syscalls.Syscall
}

// Run drives s until the process exits or, once ctx is cancelled, until s is
// detached. The tracee must be stopped, as Start and Attach leave it. Run
// returns the terminal event.
func Run(ctx context.Context, s Session, opts Options) (tracer.Event, error) {
	opts.defaults()
	l := &loop{s: s, opts: opts}
	if opts.DecodeFDs {
		l.fds = NewFDTable()
	}

	stop := context.AfterFunc(ctx, func() {
		if err := s.Interrupt(); err != nil {
			opts.Logger.Warn("interrupt failed", "pid", s.Pid(), "error", err)
		}
	})
	defer stop()

	for {
		if err := s.Resume(); err != nil {
			return tracer.Event{}, fmt.Errorf("resume: %w", err)
		}
		ws, err := s.Wait()
		if err != nil {
			return tracer.Event{}, fmt.Errorf("wait: %w", err)
		}

		ev := s.Step(ws)
		if ctx.Err() != nil && ev.Kind == tracer.Signal && ev.Signal == unix.SIGSTOP {
			// Our own stop: detaching here discards it.
			if err := s.Detach(); err != nil {
				return ev, fmt.Errorf("detach: %w", err)
			}
			opts.Logger.Info("detached", "pid", s.Pid())
			return ev, ctx.Err()
		}
		if err := l.handle(ev); err != nil {
			return ev, err
		}
		if ev.Terminal() {
			return ev, nil
		}
	}
}

func (l *loop) handle(ev tracer.Event) error {
	pid := l.s.Pid()
	p := l.opts.Printer

	switch ev.Kind {
	case tracer.SyscallEntry:
		call, err := l.opts.Decoder.Decode(l.s)
		if err != nil {
			if errors.Is(err, unix.ESRCH) {
				return err
			}
			l.opts.Logger.Warn("decode failed", "pid", pid, "error", err)
			l.pending = nil
			return nil
		}
		l.pending = call

	case tracer.SyscallExit:
		if l.pending == nil {
			return nil
		}
		call := l.pending
		l.pending = nil
		ret, err := l.s.ReturnValue()
		if err != nil {
			if errors.Is(err, unix.ESRCH) {
				return err
			}
			l.opts.Logger.Warn("return value unavailable", "pid", pid, "call", syscalls.Name(call), "error", err)
			return nil
		}
		if fixed, err := syscalls.Fixup(l.s, call, ret); err != nil {
			l.opts.Logger.Warn("fixup failed", "pid", pid, "call", syscalls.Name(call), "error", err)
		} else {
			call = fixed
		}
		rec := syscalls.SyscallRecord{Pid: pid, Call: call, Result: ret}
		if err := p.Record(rec, l.names()); err != nil {
			return err
		}
		if l.fds != nil {
			l.fds.Observe(pid, rec)
		}

	case tracer.Signal:
		return p.Signal(pid, ev.Signal)

	case tracer.Exec:
		l.opts.Logger.Info("exec", "pid", pid)

	case tracer.Exited, tracer.Killed:
		if l.pending != nil {
			if err := p.Unfinished(pid, l.pending, l.names()); err != nil {
				return err
			}
			l.pending = nil
		}
		return p.Exit(pid, ev)
	}
	return nil
}

func (l *loop) names() syscalls.FDNamer {
	if l.fds == nil {
		return nil
	}
	return l.fds.Name
}

// Spawn starts cmd under trace on a locked OS thread and traces it to the
// end. It returns the exit code a shell would report for the child.
func Spawn(ctx context.Context, cmd *exec.Cmd, opts Options) (int, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	opts.defaults()
	opts.Logger.Info("spawning", "command", shellquote.Join(cmd.Args...))

	t, err := tracer.Start(cmd)
	if err != nil {
		return -1, err
	}
	opts.Logger.Debug("tracing", "pid", t.Pid(), "arch", t.Arch().Name())
	ev, err := Run(ctx, t, opts)
	if err != nil {
		return -1, err
	}
	switch ev.Kind {
	case tracer.Killed:
		return 128 + int(ev.Signal), nil
	case tracer.Exited:
		return ev.Status, nil
	default:
		return 0, nil
	}
}

// AttachAll traces every pid concurrently, each on its own locked OS thread,
// and returns once all of them have exited or been detached.
func AttachAll(ctx context.Context, pids []int, opts Options) error {
	opts.defaults()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	for _, pid := range pids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := attach(ctx, pid, opts); err != nil && !errors.Is(err, context.Canceled) {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("pid %d: %w", pid, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return result.ErrorOrNil()
}

// attachSession starts tracing pid; replaced in tests.
var attachSession = func(pid int) (Session, error) {
	t, err := tracer.Attach(pid)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func attach(ctx context.Context, pid int, opts Options) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s, err := attachSession(pid)
	if err != nil {
		return err
	}
	_, err = Run(ctx, s, opts)
	return err
}
