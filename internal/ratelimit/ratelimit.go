// Package ratelimit implements a simple token-bucket limiter used to cap the
// rate of evaluation-failure diagnostics the tile pipeline logs, so a
// pathological style (or feed of malformed features) can't flood a logger.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token bucket: it holds up to burst tokens, refilled at
// ratePerSec tokens/second. Safe for concurrent use.
type Bucket struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	ratePerSec float64
	last       time.Time
	now        func() time.Time
}

// New returns a Bucket starting full, refilling at ratePerSec tokens/second
// up to a maximum of burst tokens.
func New(ratePerSec float64, burst int) *Bucket {
	b := float64(burst)
	return &Bucket{
		tokens:     b,
		burst:      b,
		ratePerSec: ratePerSec,
		last:       time.Now(),
		now:        time.Now,
	}
}

// Allow reports whether a token is available, consuming one if so.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.ratePerSec
		if b.tokens > b.burst {
			b.tokens = b.burst
		}
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
