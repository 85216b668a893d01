package syscalls

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// Highest errno the kernel returns as a negative syscall result.
const maxErrno = 4095

// SyscallRecord is a decoded call together with its result, assembled by the
// driver once the call returns.
type SyscallRecord struct {
	Pid    int
	Call   Syscall
	Result int64
}

func (r SyscallRecord) String() string {
	return Format(r.Call, nil) + " = " + FormatResult(r.Result)
}

// FormatResult renders a raw return value. Values in the errno range render
// as -1 ENAME (description).
func FormatResult(ret int64) string {
	if ret < 0 && ret >= -maxErrno {
		errno := unix.Errno(-ret)
		if name := unix.ErrnoName(errno); name != "" {
			return fmt.Sprintf("-1 %s (%s)", name, errno.Error())
		}
	}
	return strconv.FormatInt(ret, 10)
}
