package domain

import (
	"sync"
	"time"
)

const DefaultRoundDuration = 600 * time.Second

type RoundState struct {
	Active    bool
	RoundID   string
	StartTime time.Time
	StopTime  time.Time
	Duration  time.Duration
}

// RoundClock tracks one round's lifecycle. Time is always supplied by the
// caller.
type RoundClock struct {
	mu    sync.Mutex
	state RoundState
}

func NewRoundClock() *RoundClock {
	return &RoundClock{state: RoundState{Duration: DefaultRoundDuration}}
}

func (c *RoundClock) Start(now time.Time, duration time.Duration, roundID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if duration <= 0 {
		duration = DefaultRoundDuration
	}
	c.state = RoundState{
		Active:    true,
		RoundID:   roundID,
		StartTime: now,
		StopTime:  now.Add(duration),
		Duration:  duration,
	}
}

func (c *RoundClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Active = false
}

// Remaining is the time left until the stop time. It is negative once the
// round has run out and zero for a clock that never started.
func (c *RoundClock) Remaining(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.StopTime.IsZero() {
		return 0
	}
	return c.state.StopTime.Sub(now)
}

// CheckActive reports whether the round is still running, deactivating it
// when no time remains.
func (c *RoundClock) CheckActive(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.StopTime.IsZero() || !c.state.StopTime.After(now) {
		c.state.Active = false
	}
	return c.state.Active
}

func (c *RoundClock) State() RoundState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}
