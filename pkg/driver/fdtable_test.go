package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psarna/gtrace/pkg/syscalls"
)

func pathBuf(s string) syscalls.Buffer {
	return syscalls.Buffer{Addr: 0x1000, Data: []byte(s)}
}

func TestFDTableObserve(t *testing.T) {
	fds := NewFDTable()
	fds.cwd = func(int) (string, error) { return "/home/user", nil }

	steps := []struct {
		name string
		rec  syscalls.SyscallRecord
		fd   uint64
		want string
	}{
		{"absolute", syscalls.SyscallRecord{Call: syscalls.Open{Pathname: pathBuf("/etc//hosts")}, Result: 3}, 3, "/etc/hosts"},
		{"relative", syscalls.SyscallRecord{Call: syscalls.Open{Pathname: pathBuf("../x.txt")}, Result: 4}, 4, "/home/x.txt"},
		{"failed open", syscalls.SyscallRecord{Call: syscalls.Open{Pathname: pathBuf("/nope")}, Result: -2}, 5, ""},
		{"unread path", syscalls.SyscallRecord{Call: syscalls.Open{Pathname: syscalls.Buffer{Addr: 1}}, Result: 5}, 5, ""},
		{"failed close", syscalls.SyscallRecord{Call: syscalls.Close{Fd: 3}, Result: -9}, 3, "/etc/hosts"},
		{"close", syscalls.SyscallRecord{Call: syscalls.Close{Fd: 3}, Result: 0}, 3, ""},
		{"other calls", syscalls.SyscallRecord{Call: syscalls.Read{Fd: 4}, Result: 10}, 4, "/home/x.txt"},
	}
	for _, st := range steps {
		fds.Observe(1, st.rec)
		require.Equal(t, st.want, fds.Name(st.fd), st.name)
	}
	require.Equal(t, 1, fds.Len())
}

func TestFDTableRelativeWithoutCwd(t *testing.T) {
	fds := NewFDTable()
	fds.cwd = func(int) (string, error) { return "", errors.New("gone") }

	fds.Observe(1, syscalls.SyscallRecord{Call: syscalls.Open{Pathname: pathBuf("a/b")}, Result: 3})
	require.Equal(t, "a/b", fds.Name(3))
}
