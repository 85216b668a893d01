package driver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/psarna/gtrace/pkg/syscalls"
	"github.com/psarna/gtrace/pkg/tracer"
)

func TestPrinter(t *testing.T) {
	tests := []struct {
		name  string
		print func(p *Printer) error
		want  string
	}{
		{
			name: "record",
			print: func(p *Printer) error {
				return p.Record(syscalls.SyscallRecord{Pid: 1, Call: syscalls.Close{Fd: 3}, Result: 0}, nil)
			},
			want: "close(3) = 0\n",
		},
		{
			name: "named descriptor",
			print: func(p *Printer) error {
				names := func(fd uint64) string { return "/tmp/f" }
				return p.Record(syscalls.SyscallRecord{Pid: 1, Call: syscalls.Fstat{Fd: 3, Buf: syscalls.Buffer{Addr: 0xff}}}, names)
			},
			want: "fstat(3</tmp/f>, ff) = 0\n",
		},
		{
			name:  "unfinished",
			print: func(p *Printer) error { return p.Unfinished(1, syscalls.Close{Fd: 0}, nil) },
			want:  "close(0) = ?\n",
		},
		{
			name:  "signal",
			print: func(p *Printer) error { return p.Signal(1, unix.SIGTERM) },
			want:  "--- SIGTERM ---\n",
		},
		{
			name:  "exited",
			print: func(p *Printer) error { return p.Exit(1, tracer.Event{Kind: tracer.Exited, Status: 3}) },
			want:  "+++ exited with 3 +++\n",
		},
		{
			name:  "killed",
			print: func(p *Printer) error { return p.Exit(1, tracer.Event{Kind: tracer.Killed, Signal: unix.SIGSEGV}) },
			want:  "+++ killed by SIGSEGV +++\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, tt.print(NewPrinter(&out)))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestPrinterShowPid(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	p.ShowPid = true

	require.NoError(t, p.Record(syscalls.SyscallRecord{Pid: 12, Call: syscalls.Close{Fd: 1}}, nil))
	require.NoError(t, p.Signal(12, unix.SIGCHLD))
	require.Equal(t, "[pid 12] close(1) = 0\n[pid 12] --- SIGCHLD ---\n", out.String())
}
