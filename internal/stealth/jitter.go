package stealth

import (
	"context"
	"math/rand"
	"time"
)

// Jitter implements randomized timing that never sleeps for exact intervals.
type Jitter struct {
	rng *rand.Rand
}

// NewJitter creates a new Jitter instance
func NewJitter() *Jitter {
	return &Jitter{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RandomSleepRange sleeps for a random duration between min and max seconds.
// A tiny fractional jitter is always added so the sleep is never an exact
// integer of milliseconds.
func (j *Jitter) RandomSleepRange(ctx context.Context, minSeconds, maxSeconds float64) {
	if minSeconds < 0 {
		minSeconds = 0
	}
	if maxSeconds < minSeconds {
		maxSeconds = minSeconds
	}

	randomSeconds := minSeconds + j.rng.Float64()*(maxSeconds-minSeconds)
	randomSeconds += j.rng.Float64() * 0.0001

	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(randomSeconds * float64(time.Second))):
	}
}

// RandomInt returns a random integer between min and max (inclusive).
func (j *Jitter) RandomInt(min, max int) int {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	return min + j.rng.Intn(max-min+1)
}

// RandomFloat returns a random float64 between min and max.
func (j *Jitter) RandomFloat(min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	return min + j.rng.Float64()*(max-min)
}
