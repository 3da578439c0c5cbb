package fault

import (
	"math/rand"
	"os"
	"sync"
	"time"
)

// sampler is the injection decision source: a seeded, mutex-guarded PRNG.
// It is deliberately not cryptographically secure; it only needs to be
// statistically unbiased.
type sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSampler(seed int64) *sampler {
	return &sampler{rng: rand.New(rand.NewSource(seed))}
}

// processSeed mixes a monotonic clock reading with the pid so that processes
// started near-simultaneously still draw divergent sequences.
func processSeed() int64 {
	return int64(time.Since(processStart)) ^ time.Now().UnixNano() ^ int64(os.Getpid())
}

var processStart = time.Now()

// roll reports whether an injection at the given rate fires. Rates at or
// below zero never fire; rates at or above one always fire.
func (s *sampler) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < rate
}

// shortReadLen picks the reported length for a short read of a real n-byte
// result, uniformly from [1, (n+1)/2]. Only defined for n > 1. The caller's
// buffer already holds all n bytes; only the reported count shrinks.
func (s *sampler) shortReadLen(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 1 + s.rng.Intn((n+1)/2)
}
