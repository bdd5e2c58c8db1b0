package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/domain"
)

func TestClassifyProgressTracksElapsedWhileWaiting(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newClassifyProgress(started, nil)

	next, _ := m.Update(spinner.TickMsg{Time: started.Add(340 * time.Millisecond), ID: m.spinner.ID()})
	view := next.View()

	assert.Contains(t, view, "Classifying message...")
	assert.Contains(t, view, "340ms")
}

func TestClassifyProgressSummarizesResult(t *testing.T) {
	m := newClassifyProgress(time.Now(), nil)

	next, cmd := m.Update(classifiedMsg{
		classification: domain.Classification{Intents: []domain.Intent{
			{Label: domain.IntentInformation, Confidence: 0.4},
			{Label: domain.IntentOffer, Confidence: 0.93},
		}},
		latency: 152*time.Millisecond + 400*time.Microsecond,
	})

	require.NotNil(t, cmd)
	assert.Equal(t, "✓ classified in 152ms, top intent Offer (0.93)\n", next.View())

	// Late ticks do not move the reported latency.
	after, _ := next.Update(spinner.TickMsg{Time: time.Now().Add(time.Hour)})
	assert.Contains(t, after.View(), "152ms")
}

func TestClassifyProgressReportsFailure(t *testing.T) {
	m := newClassifyProgress(time.Now(), nil)

	next, _ := m.Update(classifiedMsg{err: errors.New("classifier down"), latency: 2 * time.Second})

	assert.Contains(t, next.View(), "classification failed after 2s")
	assert.NotContains(t, next.View(), "top intent")
}

func TestClassifyProgressWithoutIntents(t *testing.T) {
	m := newClassifyProgress(time.Now(), nil)

	next, _ := m.Update(classifiedMsg{latency: time.Millisecond})

	assert.Contains(t, next.View(), "classified in 1ms, no intent")
}
