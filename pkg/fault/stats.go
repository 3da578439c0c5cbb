package fault

import (
	"fmt"
	"sync/atomic"
)

// Stats counts injection events. Counters only move on an actual injection,
// never on passthrough, and only ever increase. Values are informational;
// atomic increments keep them clean under concurrency without promising
// cross-counter consistency.
type Stats struct {
	connectInjected atomic.Uint64
	sendInjected    atomic.Uint64
	recvInjected    atomic.Uint64
	shortReads      atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ConnectInjected uint64 `json:"connectInjected"`
	SendInjected    uint64 `json:"sendInjected"`
	RecvInjected    uint64 `json:"recvInjected"`
	ShortReads      uint64 `json:"shortReads"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ConnectInjected: s.connectInjected.Load(),
		SendInjected:    s.sendInjected.Load(),
		RecvInjected:    s.recvInjected.Load(),
		ShortReads:      s.shortReads.Load(),
	}
}

// summaryLine renders the shutdown summary in the contractual format.
func (s *Stats) summaryLine() string {
	return fmt.Sprintf("[STATS] connect_injected=%d send_injected=%d recv_injected=%d short_reads=%d\n",
		s.connectInjected.Load(), s.sendInjected.Load(),
		s.recvInjected.Load(), s.shortReads.Load())
}
