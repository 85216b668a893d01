package tracer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArchLocations(t *testing.T) {
	tests := []struct {
		arch   Arch
		sysno  Location
		ret    Location
		args   [6]Location
		regLen int
	}{
		// rdi rsi rdx r10 r8 r9, skipping rcx which the syscall instruction clobbers
		{AMD64, 120, 80, [6]Location{112, 104, 96, 56, 72, 64}, 216},
		{ARM64, 64, 0, [6]Location{0, 8, 16, 24, 32, 40}, 272},
	}

	for _, tt := range tests {
		t.Run(tt.arch.Name(), func(t *testing.T) {
			require.Equal(t, tt.sysno, tt.arch.SyscallNumberLocation())
			require.Equal(t, tt.ret, tt.arch.ReturnValueLocation())
			require.Equal(t, tt.regLen, tt.arch.RegisterFileSize())
			for i, want := range tt.args {
				loc := tt.arch.ArgumentLocation(i)
				require.Equal(t, want, loc, "argument %d", i)
				require.LessOrEqual(t, int(loc)+wordSize, tt.arch.RegisterFileSize())
			}
		})
	}
}

func TestArgumentLocationOutOfRange(t *testing.T) {
	for _, arch := range []Arch{AMD64, ARM64} {
		require.Panics(t, func() { arch.ArgumentLocation(6) })
		require.Panics(t, func() { arch.ArgumentLocation(-1) })
	}
}
