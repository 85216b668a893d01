package tracer

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NT_PRSTATUS, the general purpose register set.
const ntPrstatus = 1

// readRegister fetches the tracee's register file and returns the word at loc.
// The tracee must be in a ptrace-stop.
func readRegister(pid int, arch Arch, loc Location) (uint64, error) {
	buf := make([]byte, arch.RegisterFileSize())
	iov := unix.Iovec{Base: &buf[0]}
	iov.SetLen(len(buf))

	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_GETREGSET, uintptr(pid),
		ntPrstatus, uintptr(unsafe.Pointer(&iov)), 0, 0)
	if errno != 0 {
		return 0, osError("getregset", pid, errno)
	}
	if int(loc)+wordSize > int(iov.Len) {
		return 0, osError("getregset", pid, unix.EIO)
	}
	return binary.NativeEndian.Uint64(buf[loc:]), nil
}
