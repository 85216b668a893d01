package tracer

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedArch is returned when the running architecture has no Arch
// implementation.
var ErrUnsupportedArch = fmt.Errorf("%q is an unsupported architecture, only amd64 and arm64 are supported", runtime.GOARCH)

// OSError records a failed privileged operation against a traced process:
// a register read, a memory read, or a ptrace control request.
type OSError struct {
	Op  string
	Pid int
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s pid %d: %v", e.Op, e.Pid, e.Err)
}

func (e *OSError) Unwrap() error { return e.Err }

func osError(op string, pid int, err error) error {
	if err == nil {
		return nil
	}
	return &OSError{Op: op, Pid: pid, Err: err}
}

// IsOSError reports whether err came from a privileged operation.
func IsOSError(err error) bool {
	var e *OSError
	return errors.As(err, &e)
}
