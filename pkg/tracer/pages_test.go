package tracer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type chunk struct{ addr, len uint64 }

func collect(start, length, pageSize uint64) []chunk {
	out := []chunk{}
	for a, l := range Pages(start, length, pageSize) {
		out = append(out, chunk{a, l})
	}
	return out
}

func TestPages(t *testing.T) {
	tests := []struct {
		name                    string
		start, length, pageSize uint64
		want                    []chunk
	}{
		{"within one page", 3, 5, 10, []chunk{{3, 5}}},
		{"unaligned start spanning pages", 3, 21, 10, []chunk{{3, 7}, {10, 10}, {20, 4}}},
		{"exactly one aligned page", 10, 10, 10, []chunk{{10, 10}}},
		{"one byte into next page", 10, 11, 10, []chunk{{10, 10}, {20, 1}}},
		{"zero length", 10, 0, 10, []chunk{}},
		{"ends on boundary", 5, 15, 10, []chunk{{5, 5}, {10, 10}}},
		{"real page size", 4090, 4200, 4096, []chunk{{4090, 6}, {4096, 4096}, {8192, 98}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, collect(tt.start, tt.length, tt.pageSize))
		})
	}
}

func TestPagesProperties(t *testing.T) {
	const pageSize = 16
	for start := uint64(0); start < 3*pageSize; start++ {
		for length := uint64(0); length < 5*pageSize; length++ {
			chunks := collect(start, length, pageSize)

			next, total := start, uint64(0)
			for i, c := range chunks {
				require.Equal(t, next, c.addr, "chunks must be contiguous")
				require.NotZero(t, c.len)
				require.Equal(t, (c.addr)/pageSize, (c.addr+c.len-1)/pageSize, "chunk crosses a page boundary")
				if i > 0 && i < len(chunks)-1 {
					require.Equal(t, uint64(pageSize), c.len)
				}
				next += c.len
				total += c.len
			}
			require.Equal(t, length, total)
		}
	}
}

func TestPagesRestartable(t *testing.T) {
	seq := Pages(3, 21, 10)

	var first, second []chunk
	for a, l := range seq {
		first = append(first, chunk{a, l})
	}
	for a, l := range seq {
		second = append(second, chunk{a, l})
	}
	require.Equal(t, first, second)

	var n int
	for range seq {
		n++
		break
	}
	require.Equal(t, 1, n)
}
