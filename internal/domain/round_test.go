package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundClockStartAndRemaining(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := NewRoundClock()
	clock.Start(start, 10*time.Minute, "3")

	state := clock.State()
	assert.True(t, state.Active)
	assert.Equal(t, "3", state.RoundID)
	assert.Equal(t, start.Add(10*time.Minute), state.StopTime)
	assert.Equal(t, 4*time.Minute, clock.Remaining(start.Add(6*time.Minute)))
}

func TestRoundClockCheckActiveDeactivatesWhenExpired(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := NewRoundClock()
	clock.Start(start, time.Minute, "1")

	assert.True(t, clock.CheckActive(start.Add(59*time.Second)))
	assert.False(t, clock.CheckActive(start.Add(time.Minute)))
	assert.False(t, clock.State().Active)
	// Expiry is sticky even if a caller asks with an earlier instant.
	assert.False(t, clock.CheckActive(start))
}

func TestRoundClockStop(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := NewRoundClock()
	clock.Start(start, time.Minute, "1")
	clock.Stop()

	assert.False(t, clock.CheckActive(start.Add(time.Second)))
	assert.Equal(t, 59*time.Second, clock.Remaining(start.Add(time.Second)))
}

func TestRoundClockNeverStartedIsInactive(t *testing.T) {
	t.Parallel()

	clock := NewRoundClock()

	assert.False(t, clock.CheckActive(time.Now()))
	assert.Equal(t, time.Duration(0), clock.Remaining(time.Now()))
	assert.Equal(t, DefaultRoundDuration, clock.State().Duration)
}

func TestRoundClockStartFallsBackToDefaultDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	clock := NewRoundClock()
	clock.Start(start, 0, "1")

	assert.Equal(t, DefaultRoundDuration, clock.State().Duration)
}
