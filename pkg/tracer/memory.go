package tracer

import (
	"bytes"
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Maximum number of iovecs a single process_vm_readv accepts (UIO_MAXIOV).
const iovMax = 1024

// Memory reads from a traced process's address space. Reads never modify the
// target. A Memory must not be used from more than one goroutine at a time.
type Memory struct {
	pid      int
	pageSize uint64
	// process_vm_readv returned ENOSYS; fall back to PTRACE_PEEKDATA.
	peek bool
}

func NewMemory(pid int) *Memory {
	return &Memory{pid: pid, pageSize: uint64(os.Getpagesize())}
}

// CopyFrom reads up to n bytes starting at addr. It fails only if the first
// byte cannot be read. A result shorter than n means the remainder of the
// range is not mapped or not readable. The result grows one batch of pages
// at a time, so n may be far larger than what is actually mapped.
func (m *Memory) CopyFrom(addr, n uint64) ([]byte, error) {
	out := []byte{}
	batch := iovMax * m.pageSize
	for n > 0 {
		size := min(n, batch)
		chunk := make([]byte, size)
		got, err := m.read(addr, chunk)
		debugf("copy_from: pid=%d addr=%x len=%d got=%d err=%v", m.pid, addr, size, got, err)
		if got == 0 && err != nil && len(out) == 0 {
			return nil, err
		}
		out = append(out, chunk[:got]...)
		if uint64(got) < size {
			break
		}
		addr += size
		n -= size
	}
	return out, nil
}

// StrncpyFrom reads a NUL-terminated string at addr, reading at most max
// bytes. When a NUL is found the result ends with exactly one NUL byte. When
// max bytes were read without a NUL the result is returned as is, with no
// terminator added. In both cases complete is true.
//
// If the string runs into an unmapped page, the bytes read so far are
// returned with complete set to false. An unreadable first page is an error.
func (m *Memory) StrncpyFrom(addr uint64, max int) (data []byte, complete bool, err error) {
	out := []byte{}
	for a, l := range Pages(addr, uint64(max), m.pageSize) {
		chunk := make([]byte, l)
		n, err := m.read(a, chunk)
		if n == 0 && err != nil {
			if len(out) == 0 || !isFault(err) {
				return nil, false, err
			}
			debugf("strncpy_from: pid=%d addr=%x stopped at unmapped %x", m.pid, addr, a)
			return out, false, nil
		}
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return append(out, chunk[:i+1]...), true, nil
		}
		out = append(out, chunk[:n]...)
		if uint64(n) < l {
			return out, false, nil
		}
	}
	return out, true, nil
}

// read fills buf from addr, page by page, and returns how many leading bytes
// were read. err is the failure that stopped the read, if any.
func (m *Memory) read(addr uint64, buf []byte) (int, error) {
	if !m.peek {
		n, err := m.readv(addr, buf)
		if !errors.Is(err, unix.ENOSYS) {
			return n, err
		}
		debugf("process_vm_readv unavailable, falling back to ptrace peek")
		m.peek = true
	}
	return m.peekData(addr, buf)
}

func (m *Memory) readv(addr uint64, buf []byte) (int, error) {
	remote := make([]unix.RemoteIovec, 0, min(len(buf)/int(m.pageSize)+2, iovMax))
	total := 0
	flush := func() (bool, error) {
		size := 0
		for _, r := range remote {
			size += r.Len
		}
		local := []unix.Iovec{{Base: &buf[total]}}
		local[0].SetLen(size)
		n, err := unix.ProcessVMReadv(m.pid, local, remote, 0)
		remote = remote[:0]
		if err != nil {
			return false, osError("process_vm_readv", m.pid, err)
		}
		total += n
		return n == size, nil
	}

	for a, l := range Pages(addr, uint64(len(buf)), m.pageSize) {
		remote = append(remote, unix.RemoteIovec{Base: uintptr(a), Len: int(l)})
		if len(remote) == iovMax {
			if ok, err := flush(); !ok {
				return total, err
			}
		}
	}
	if len(remote) > 0 {
		if _, err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (m *Memory) peekData(addr uint64, buf []byte) (int, error) {
	total := 0
	for a, l := range Pages(addr, uint64(len(buf)), m.pageSize) {
		n, err := unix.PtracePeekData(m.pid, uintptr(a), buf[total:total+int(l)])
		total += n
		if err != nil {
			return total, osError("peekdata", m.pid, err)
		}
	}
	return total, nil
}

// isFault reports whether err is an addressing fault rather than a failure
// of the tracing channel itself.
func isFault(err error) bool {
	return errors.Is(err, unix.EFAULT) || errors.Is(err, unix.EIO)
}
