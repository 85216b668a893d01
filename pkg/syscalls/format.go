package syscalls

import (
	"fmt"
	"strconv"
	"strings"
)

// FDNamer returns a display name for a file descriptor, or "" when it has
// none.
type FDNamer func(fd uint64) string

// Name returns the lower-cased call name, syscall_<nr> for Unknown.
func Name(call Syscall) string {
	switch c := call.(type) {
	case Read:
		return "read"
	case Write:
		return "write"
	case Open:
		return "open"
	case Close:
		return "close"
	case Stat:
		return "stat"
	case Fstat:
		return "fstat"
	case Lstat:
		return "lstat"
	case Unknown:
		return "syscall_" + strconv.FormatUint(c.Nr, 10)
	default:
		panic(fmt.Sprintf("unhandled syscall type %T", call))
	}
}

// Format renders call as name(field, field, ...) with fields in declaration
// order. If names is non-nil, descriptors it knows render as fd<name>.
func Format(call Syscall, names FDNamer) string {
	fd := func(v uint64) string {
		s := strconv.FormatUint(v, 10)
		if names != nil {
			if n := names(v); n != "" {
				s += "<" + n + ">"
			}
		}
		return s
	}
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }

	var fields []string
	switch c := call.(type) {
	case Read:
		fields = []string{fd(c.Fd), c.Buf.String(), u(c.Count)}
	case Write:
		fields = []string{fd(c.Fd), c.Buf.String(), u(c.Count)}
	case Open:
		fields = []string{c.Pathname.String(), u(c.Flags), u(c.Mode)}
	case Close:
		fields = []string{fd(c.Fd)}
	case Stat:
		fields = []string{c.Pathname.String(), c.Buf.String()}
	case Fstat:
		fields = []string{fd(c.Fd), c.Buf.String()}
	case Lstat:
		fields = []string{c.Pathname.String(), c.Buf.String()}
	case Unknown:
		fields = []string{u(c.A), u(c.B), u(c.C), u(c.D), u(c.E), u(c.F)}
	}
	return Name(call) + "(" + strings.Join(fields, ", ") + ")"
}
