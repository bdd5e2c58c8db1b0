package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbosity int
		want      slog.Level
		wantErr   bool
	}{
		{verbosity: 1, want: slog.LevelWarn},
		{verbosity: 2, want: slog.LevelInfo},
		{verbosity: 3, want: slog.LevelDebug},
		{verbosity: 0, wantErr: true},
		{verbosity: 4, wantErr: true},
	}

	for _, tc := range tests {
		level, err := Level(tc.verbosity)
		if tc.wantErr {
			assert.Error(t, err, "verbosity %d", tc.verbosity)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, level)
	}
}

func TestNewFiltersByVerbosity(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, LevelQuiet, "text")
	require.NoError(t, err)

	logger.Info("round started")
	logger.Warn("classifier slow")

	assert.NotContains(t, buf.String(), "round started")
	assert.Contains(t, buf.String(), "classifier slow")
}

func TestNewJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, LevelVerbose, "JSON")
	require.NoError(t, err)

	logger.Debug("bid decided", "type", "Accept")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "bid decided", record["msg"])
	assert.Equal(t, "Accept", record["type"])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, LevelInfo, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format")
}
