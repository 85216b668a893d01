package tracer

import "iter"

// Pages splits [start, start+length) into chunks that never cross a page
// boundary. It yields (address, length) pairs: the first chunk runs to the
// next boundary, every following chunk is a full page except possibly the
// last. A zero length yields nothing.
func Pages(start, length, pageSize uint64) iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		addr, left := start, length
		for left > 0 {
			n := min(pageSize-addr%pageSize, left)
			if !yield(addr, n) {
				return
			}
			addr += n
			left -= n
		}
	}
}
