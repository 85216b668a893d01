package syscalls

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// Process is a tracee stopped at syscall entry.
type Process interface {
	SyscallNumber() (uint64, error)
	Argument(i int) (uint64, error)
	CopyFrom(addr, n uint64) ([]byte, error)
	StrncpyFrom(addr uint64, max int) (data []byte, complete bool, err error)
}

// DefaultMaxCapture is the write capture cap used when Decoder.MaxCapture is
// zero.
const DefaultMaxCapture = 64 << 10

type Decoder struct {
	Table Table
	// MaxCapture caps the bytes copied for a write buffer. Zero means
	// DefaultMaxCapture.
	MaxCapture uint64
}

func NewDecoder() *Decoder {
	return &Decoder{Table: NativeTable}
}

// Decode reads the syscall number and dispatches to the parser for its kind.
// Every number decodes: those without a parser become Unknown. A buffer or
// path that cannot be read at all is an error, wrapping the read failure.
func (d *Decoder) Decode(p Process) (Syscall, error) {
	nr, err := p.SyscallNumber()
	if err != nil {
		return nil, fmt.Errorf("syscall number: %w", err)
	}
	a := args{p: p}

	var call Syscall
	switch d.Table[nr] {
	case KindRead:
		call = Read{Fd: a.get(0), Buf: Buffer{Addr: a.get(1)}, Count: a.get(2)}
	case KindWrite:
		call = d.parseWrite(&a)
	case KindOpen:
		call = parseOpen(&a)
	case KindClose:
		call = Close{Fd: a.get(0)}
	case KindStat:
		call = Stat{Pathname: a.path(0), Buf: Buffer{Addr: a.get(1)}}
	case KindFstat:
		call = Fstat{Fd: a.get(0), Buf: Buffer{Addr: a.get(1)}}
	case KindLstat:
		call = Lstat{Pathname: a.path(0), Buf: Buffer{Addr: a.get(1)}}
	default:
		call = Unknown{Nr: nr, A: a.get(0), B: a.get(1), C: a.get(2), D: a.get(3), E: a.get(4), F: a.get(5)}
	}
	if a.err != nil {
		return nil, fmt.Errorf("decode syscall %d: %w", nr, a.err)
	}
	return call, nil
}

func (d *Decoder) parseWrite(a *args) Syscall {
	fd, addr, count := a.get(0), a.get(1), a.get(2)
	limit := d.MaxCapture
	if limit == 0 {
		limit = DefaultMaxCapture
	}
	n := min(count, limit)
	return Write{Fd: fd, Buf: a.bytes(addr, n, count), Count: count}
}

func parseOpen(a *args) Syscall {
	path := a.path(0)
	flags := a.get(1)
	var mode uint64
	// The mode register is only defined when the call can create a file.
	if flags&unix.O_CREAT != 0 {
		mode = a.get(2)
	}
	return Open{Pathname: path, Flags: flags, Mode: mode}
}

// Fixup amends a record decoded at entry with what is known at exit. No call
// needs it yet, so it returns call unchanged.
func Fixup(p Process, call Syscall, ret int64) (Syscall, error) {
	return call, nil
}

// args reads argument registers and tracee memory, keeping the first error.
type args struct {
	p   Process
	err error
}

func (a *args) get(i int) uint64 {
	if a.err != nil {
		return 0
	}
	v, err := a.p.Argument(i)
	if err != nil {
		a.err = fmt.Errorf("argument %d: %w", i, err)
	}
	return v
}

// bytes copies n bytes at addr for a buffer the call describes as size
// bytes long.
func (a *args) bytes(addr, n, size uint64) Buffer {
	buf := Buffer{Addr: addr}
	if a.err != nil {
		return buf
	}
	data, err := a.p.CopyFrom(addr, n)
	if err != nil {
		a.err = fmt.Errorf("copy %d bytes at %#x: %w", n, addr, err)
		return buf
	}
	buf.Data = data
	buf.Partial = uint64(len(data)) < size
	return buf
}

// path reads the NUL-terminated string that argument i points to. The
// terminator is not kept.
func (a *args) path(i int) Buffer {
	addr := a.get(i)
	buf := Buffer{Addr: addr}
	if a.err != nil {
		return buf
	}
	data, complete, err := a.p.StrncpyFrom(addr, unix.PathMax)
	if err != nil {
		a.err = fmt.Errorf("read path at %#x: %w", addr, err)
		return buf
	}
	buf.Data = bytes.TrimSuffix(data, []byte{0})
	buf.Partial = !complete
	return buf
}
