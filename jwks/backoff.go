package jwks

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff is the retry policy applied around one whole fetch operation,
// discovery stage included. It is a closed set of three variants: NoBackoff,
// ConstantBackoff and ExponentialBackoff. Policy values are pure data; every
// Fetch call builds a fresh schedule from them, so a single policy value can
// be shared freely.
type Backoff interface {
	// build returns the stateful schedule driving a single Fetch call.
	build() backoff.BackOff
}

// NoBackoff performs a single attempt; the first failure is terminal. It is
// the default policy.
type NoBackoff struct{}

func (NoBackoff) build() backoff.BackOff {
	return &backoff.StopBackOff{}
}

// ConstantBackoff retries with a fixed delay between attempts.
//
// MaxRetries counts retries after the initial attempt; zero means no limit.
// With Jitter enabled each delay is stretched by a random factor in [1, 2),
// drawn from JitterSeed when set so that schedules can be reproduced in
// tests.
type ConstantBackoff struct {
	Delay      time.Duration
	MaxRetries uint64
	Jitter     bool
	JitterSeed *int64
}

func (b ConstantBackoff) build() backoff.BackOff {
	var schedule backoff.BackOff = backoff.NewConstantBackOff(b.Delay)
	if b.Jitter {
		schedule = newJitteredBackOff(schedule, b.JitterSeed)
	}
	if b.MaxRetries > 0 {
		schedule = backoff.WithMaxRetries(schedule, b.MaxRetries)
	}
	return schedule
}

// ExponentialBackoff retries with delays growing by Factor from InitialDelay
// up to MaxDelay.
//
// MaxRetries counts retries after the initial attempt and MaxTotalDelay caps
// the elapsed time across all attempts; zero disables the respective limit.
// InitialDelay, Factor and MaxDelay fall back to the usual exponential
// defaults (500ms, 1.5, 60s) when left zero. Jitter behaves as in
// ConstantBackoff.
type ExponentialBackoff struct {
	InitialDelay  time.Duration
	Factor        float64
	MaxDelay      time.Duration
	MaxRetries    uint64
	MaxTotalDelay time.Duration
	Jitter        bool
	JitterSeed    *int64
}

func (b ExponentialBackoff) build() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.RandomizationFactor = 0
	if b.InitialDelay > 0 {
		exp.InitialInterval = b.InitialDelay
	}
	if b.Factor > 0 {
		exp.Multiplier = b.Factor
	}
	if b.MaxDelay > 0 {
		exp.MaxInterval = b.MaxDelay
	}
	exp.MaxElapsedTime = b.MaxTotalDelay
	exp.Reset()

	var schedule backoff.BackOff = exp
	if b.Jitter {
		schedule = newJitteredBackOff(schedule, b.JitterSeed)
	}
	if b.MaxRetries > 0 {
		schedule = backoff.WithMaxRetries(schedule, b.MaxRetries)
	}
	return schedule
}

// Seed returns a pointer to seed, for use as a JitterSeed literal.
func Seed(seed int64) *int64 {
	return &seed
}

// jitteredBackOff stretches every delay of the wrapped schedule by a random
// factor in [1, 2). Termination decisions pass through untouched.
type jitteredBackOff struct {
	inner backoff.BackOff
	rng   *rand.Rand
}

func newJitteredBackOff(inner backoff.BackOff, seed *int64) *jitteredBackOff {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &jitteredBackOff{
		inner: inner,
		rng:   rand.New(rand.NewSource(s)),
	}
}

func (j *jitteredBackOff) NextBackOff() time.Duration {
	d := j.inner.NextBackOff()
	if d <= 0 {
		return d
	}
	return d + time.Duration(j.rng.Int63n(int64(d)))
}

func (j *jitteredBackOff) Reset() {
	j.inner.Reset()
}
