package fault

import "sync"

// fdSet tracks which descriptors are sockets currently subject to
// target-based injection. Membership is bounded by MaxTrackedFDs; out-of-range
// descriptors are silently treated as absent, never an error.
//
// Races between a close on one goroutine and a send on another are benign:
// the worst outcome is a single stale injection decision.
type fdSet struct {
	mu  sync.RWMutex
	fds map[int]struct{}
}

func newFDSet() *fdSet {
	return &fdSet{fds: make(map[int]struct{})}
}

func (s *fdSet) mark(fd int) {
	if fd < 0 || fd >= MaxTrackedFDs {
		return
	}
	s.mu.Lock()
	s.fds[fd] = struct{}{}
	s.mu.Unlock()
}

func (s *fdSet) unmark(fd int) {
	if fd < 0 || fd >= MaxTrackedFDs {
		return
	}
	s.mu.Lock()
	delete(s.fds, fd)
	s.mu.Unlock()
}

func (s *fdSet) has(fd int) bool {
	if fd < 0 || fd >= MaxTrackedFDs {
		return false
	}
	s.mu.RLock()
	_, ok := s.fds[fd]
	s.mu.RUnlock()
	return ok
}

func (s *fdSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fds)
}
