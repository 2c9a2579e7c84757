package match

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

type Option func(*Match)

// WithRand makes the match draw its noise from r. The generator must not
// be shared with another match that plays concurrently.
func WithRand(r *rand.Rand) Option {
	return func(m *Match) {
		m.rng = r
	}
}

// WithSeed gives the match a private generator seeded with seed.
func WithSeed(seed uint64) Option {
	return func(m *Match) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Match) {
		m.logger = logger
	}
}

var clockSeeds atomic.Uint64

// newClockRand seeds from the clock mixed with a process wide counter, so
// matches built within the same clock tick still get distinct streams.
// Use WithSeed or WithRand for reproducible play.
func newClockRand() *rand.Rand {
	n := clockSeeds.Add(1)
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano()) ^ (n * 0x9E3779B97F4A7C15)))
}
