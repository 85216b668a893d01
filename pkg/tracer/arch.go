package tracer

import "fmt"

// Location is a byte offset into the general purpose register file, laid out
// the way PTRACE_GETREGSET returns it for NT_PRSTATUS.
type Location uintptr

// Arch maps the logical syscall registers onto an architecture's register
// file. Supporting a new architecture means implementing only this.
type Arch interface {
	Name() string
	RegisterFileSize() int
	SyscallNumberLocation() Location
	// ArgumentLocation panics if i is not in [0, 6).
	ArgumentLocation(i int) Location
	ReturnValueLocation() Location
}

const wordSize = 8

var (
	AMD64 Arch = amd64{}
	ARM64 Arch = arm64{}
)

func checkArgument(i int) {
	if i < 0 || i >= 6 {
		panic(fmt.Sprintf("syscall argument index %d out of range", i))
	}
}

// user_regs_struct: r15 r14 r13 r12 rbp rbx r11 r10 r9 r8 rax rcx rdx rsi rdi
// orig_rax rip cs eflags rsp ss fs_base gs_base ds es fs gs
const (
	amd64R10     = 7 * wordSize
	amd64R9      = 8 * wordSize
	amd64R8      = 9 * wordSize
	amd64RAX     = 10 * wordSize
	amd64RDX     = 12 * wordSize
	amd64RSI     = 13 * wordSize
	amd64RDI     = 14 * wordSize
	amd64OrigRAX = 15 * wordSize
	amd64Regs    = 27 * wordSize
)

var amd64Args = [6]Location{amd64RDI, amd64RSI, amd64RDX, amd64R10, amd64R8, amd64R9}

type amd64 struct{}

func (amd64) Name() string                    { return "amd64" }
func (amd64) RegisterFileSize() int           { return amd64Regs }
func (amd64) SyscallNumberLocation() Location { return amd64OrigRAX }
func (amd64) ReturnValueLocation() Location   { return amd64RAX }

func (amd64) ArgumentLocation(i int) Location {
	checkArgument(i)
	return amd64Args[i]
}

// user_pt_regs: x0..x30 sp pc pstate
const arm64Regs = 34 * wordSize

type arm64 struct{}

func (arm64) Name() string                    { return "arm64" }
func (arm64) RegisterFileSize() int           { return arm64Regs }
func (arm64) SyscallNumberLocation() Location { return 8 * wordSize }
func (arm64) ReturnValueLocation() Location   { return 0 }

func (arm64) ArgumentLocation(i int) Location {
	checkArgument(i)
	return Location(i * wordSize)
}
