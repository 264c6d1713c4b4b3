package investigation

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// Rand is the randomness a session draws on for clue reveals.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source. Tests use it to force both reveal branches.
func WithRand(r Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithClock sets the time source used for clue, log and outcome timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogCapacity overrides the conversation log capacity.
func WithLogCapacity(n int) Option {
	return func(s *Session) {
		s.logCapacity = n
	}
}
