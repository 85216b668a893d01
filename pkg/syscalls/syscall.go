// Package syscalls turns the raw registers of a process stopped at syscall
// entry into typed records.
package syscalls

import (
	"strconv"
	"strings"
)

// Buffer is a region of the tracee's memory. Data is nil when the bytes were
// not read, for example an output buffer before the kernel has filled it.
type Buffer struct {
	Addr uint64
	Data []byte
	// Partial is set when Data holds less than the region the call refers
	// to: a string that ran into an unmapped page or a capped capture.
	Partial bool
}

// String renders captured data as a quoted string and an unread buffer as a
// hexadecimal address.
func (b Buffer) String() string {
	if b.Data == nil {
		return strconv.FormatUint(b.Addr, 16)
	}
	s := strconv.Quote(strings.ToValidUTF8(string(b.Data), "\uFFFD"))
	if b.Partial {
		s += "..."
	}
	return s
}

// Syscall is one decoded call. The set of implementations is closed; Unknown
// covers every number the decoder has no parser for.
type Syscall interface {
	syscall()
}

type Read struct {
	Fd    uint64
	Buf   Buffer
	Count uint64
}

type Write struct {
	Fd    uint64
	Buf   Buffer
	Count uint64
}

type Open struct {
	Pathname Buffer
	Flags    uint64
	// Mode is zero unless Flags has O_CREAT.
	Mode uint64
}

type Close struct {
	Fd uint64
}

type Stat struct {
	Pathname Buffer
	Buf      Buffer
}

type Fstat struct {
	Fd  uint64
	Buf Buffer
}

type Lstat struct {
	Pathname Buffer
	Buf      Buffer
}

// Unknown holds the number and all six argument registers verbatim.
type Unknown struct {
	Nr               uint64
	A, B, C, D, E, F uint64
}

func (Read) syscall()    {}
func (Write) syscall()   {}
func (Open) syscall()    {}
func (Close) syscall()   {}
func (Stat) syscall()    {}
func (Fstat) syscall()   {}
func (Lstat) syscall()   {}
func (Unknown) syscall() {}

func (c Read) String() string    { return Format(c, nil) }
func (c Write) String() string   { return Format(c, nil) }
func (c Open) String() string    { return Format(c, nil) }
func (c Close) String() string   { return Format(c, nil) }
func (c Stat) String() string    { return Format(c, nil) }
func (c Fstat) String() string   { return Format(c, nil) }
func (c Lstat) String() string   { return Format(c, nil) }
func (c Unknown) String() string { return Format(c, nil) }
