package driver

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/psarna/gtrace/pkg/syscalls"
	"github.com/psarna/gtrace/pkg/tracer"
)

// Printer writes one line per record. It is safe for use by several trace
// loops at once.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
	// ShowPid prefixes every line with [pid N].
	ShowPid bool
}

// NewPrinter returns a Printer writing to w, or to stderr if w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stderr
	}
	return &Printer{w: w}
}

func (p *Printer) Record(rec syscalls.SyscallRecord, names syscalls.FDNamer) error {
	return p.line(rec.Pid, "%s = %s", syscalls.Format(rec.Call, names), syscalls.FormatResult(rec.Result))
}

// Unfinished prints a call the process never returned from.
func (p *Printer) Unfinished(pid int, call syscalls.Syscall, names syscalls.FDNamer) error {
	return p.line(pid, "%s = ?", syscalls.Format(call, names))
}

func (p *Printer) Signal(pid int, sig unix.Signal) error {
	return p.line(pid, "--- %s ---", signalName(sig))
}

func (p *Printer) Exit(pid int, ev tracer.Event) error {
	if ev.Kind == tracer.Killed {
		return p.line(pid, "+++ killed by %s +++", signalName(ev.Signal))
	}
	return p.line(pid, "+++ exited with %d +++", ev.Status)
}

func (p *Printer) line(pid int, format string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ShowPid {
		if _, err := fmt.Fprintf(p.w, "[pid %d] ", pid); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func signalName(sig unix.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(sig))
}
