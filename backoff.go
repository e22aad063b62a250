package socketio

import (
	"math"
	"math/rand"
	"time"
)

// BackOffOptions configures the delays between connect attempts of
// ConnectWithRetry. Zero fields take the defaults.
type BackOffOptions struct {
	// Min is the first delay, 1s when zero.
	Min time.Duration
	// Max caps every delay, 5s when zero.
	Max time.Duration
	// Factor grows the delay after each attempt, 2 when zero.
	Factor float64
	// Jitter in [0, 1] randomizes each delay by up to Jitter*delay.
	Jitter float64
	// MaxAttempts stops retrying after that many attempts, unlimited when
	// zero.
	MaxAttempts int
}

// BackOff computes exponential delays with jitter.
type BackOff struct {
	ms       float64
	max      float64
	factor   float64
	jitter   float64
	attempts float64
}

// NewBackOff returns a BackOff starting at opts.Min.
func NewBackOff(opts BackOffOptions) *BackOff {
	b := &BackOff{
		ms:     float64(time.Second / time.Millisecond),
		max:    float64(5 * time.Second / time.Millisecond),
		factor: 2,
		jitter: opts.Jitter,
	}

	if opts.Min > 0 {
		b.ms = float64(opts.Min) / float64(time.Millisecond)
	}
	if opts.Max > 0 {
		b.max = float64(opts.Max) / float64(time.Millisecond)
	}
	if opts.Factor > 0 {
		b.factor = opts.Factor
	}

	return b
}

// Duration returns the next delay.
func (b *BackOff) Duration() time.Duration {
	ms := b.ms * math.Pow(b.factor, b.attempts)
	b.attempts++

	if b.jitter > 0 {
		randVal := rand.Float64()
		deviation := math.Floor(randVal * b.jitter * ms)
		jitterDecision := int(math.Floor(randVal*10)) & 1
		if jitterDecision == 0 {
			ms -= deviation
		} else {
			ms += deviation
		}
	}

	return time.Duration(math.Min(ms, b.max) * float64(time.Millisecond))
}

// Attempts returns the number of delays computed since the last Reset.
func (b *BackOff) Attempts() int {
	return int(b.attempts)
}

// Reset starts over from the first delay.
func (b *BackOff) Reset() {
	b.attempts = 0
}
