package syscalls

import "fmt"

// Kind names a call shape the decoder has a parser for.
type Kind int

const (
	KindUnknown Kind = iota
	KindRead
	KindWrite
	KindOpen
	KindClose
	KindStat
	KindFstat
	KindLstat
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindStat:
		return "stat"
	case KindFstat:
		return "fstat"
	case KindLstat:
		return "lstat"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Table maps a platform's syscall numbers to call kinds. Numbers missing
// from the table decode as Unknown.
type Table map[uint64]Kind

var AMD64Table = Table{
	0: KindRead,
	1: KindWrite,
	2: KindOpen,
	3: KindClose,
	4: KindStat,
	5: KindFstat,
	6: KindLstat,
}

// arm64 only has the *at variants of open, stat and lstat.
var ARM64Table = Table{
	57: KindClose,
	63: KindRead,
	64: KindWrite,
	80: KindFstat,
}
