package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/psarna/gtrace/pkg/syscalls"
)

// FDTable remembers which path each descriptor of one tracee was opened
// from. It is owned by a single trace loop.
type FDTable struct {
	paths map[uint64]string
	// reads /proc/<pid>/cwd; replaced in tests
	cwd func(pid int) (string, error)
}

func NewFDTable() *FDTable {
	return &FDTable{
		paths: make(map[uint64]string),
		cwd:   procCwd,
	}
}

func procCwd(pid int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid))
}

// Observe updates the table from a completed call: a successful open adds
// the returned descriptor, a successful close removes one.
func (t *FDTable) Observe(pid int, rec syscalls.SyscallRecord) {
	if rec.Result < 0 {
		return
	}
	switch c := rec.Call.(type) {
	case syscalls.Open:
		if c.Pathname.Data == nil {
			return
		}
		t.paths[uint64(rec.Result)] = t.resolve(pid, string(c.Pathname.Data))
	case syscalls.Close:
		delete(t.paths, c.Fd)
	}
}

// Name returns the path fd was opened from, or "".
func (t *FDTable) Name(fd uint64) string {
	return t.paths[fd]
}

func (t *FDTable) Len() int {
	return len(t.paths)
}

func (t *FDTable) resolve(pid int, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	cwd, err := t.cwd(pid)
	if err != nil {
		return path
	}
	return filepath.Clean(filepath.Join(cwd, path))
}
