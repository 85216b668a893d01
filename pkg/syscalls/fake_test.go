package syscalls

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// fakeProcess serves registers and memory regions from memory.
type fakeProcess struct {
	nr      uint64
	args    [6]uint64
	regions map[uint64][]byte
	// argument indices in the order they were read
	reads  []int
	argErr error
	memErr error
}

func (p *fakeProcess) SyscallNumber() (uint64, error) { return p.nr, nil }

func (p *fakeProcess) Argument(i int) (uint64, error) {
	if p.argErr != nil {
		return 0, p.argErr
	}
	p.reads = append(p.reads, i)
	return p.args[i], nil
}

func (p *fakeProcess) region(addr uint64) ([]byte, error) {
	if p.memErr != nil {
		return nil, p.memErr
	}
	for base, data := range p.regions {
		if addr >= base && addr < base+uint64(len(data)) {
			return data[addr-base:], nil
		}
	}
	return nil, fmt.Errorf("process_vm_readv pid 1: %w", unix.EFAULT)
}

func (p *fakeProcess) CopyFrom(addr, n uint64) ([]byte, error) {
	data, err := p.region(addr)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, data[:min(n, uint64(len(data)))]...), nil
}

func (p *fakeProcess) StrncpyFrom(addr uint64, max int) ([]byte, bool, error) {
	data, err := p.region(addr)
	if err != nil {
		return nil, false, err
	}
	data = data[:min(max, len(data))]
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return append([]byte{}, data[:i+1]...), true, nil
	}
	return append([]byte{}, data...), len(data) == max, nil
}
