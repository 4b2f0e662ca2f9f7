package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, FormatJSON, slog.LevelInfo).Info("Import finished", "players", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "Import finished", line["msg"])
	require.EqualValues(t, 3, line["players"])
}

func TestNew_LevelFilters(t *testing.T) {
	for _, format := range []string{FormatText, FormatTint, FormatJSON} {
		var buf bytes.Buffer
		logger := New(&buf, format, slog.LevelWarn)
		logger.Info("hidden")
		require.Zero(t, buf.Len(), format)
		logger.Warn("shown")
		require.Contains(t, buf.String(), "shown", format)
	}
}
