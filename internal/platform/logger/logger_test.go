package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/reviewdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetupWritesJSONAtLevel(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	l := setup(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", slog.String("component", "test"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Same(t, l, slog.Default())
}

func TestContextLogger(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	stored := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	ctx := WithLogger(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx))
	assert.Same(t, stored, FromContextOrDefault(ctx, fallback))
}

func TestSetupFromServerConfig(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupFallsBackToInfo(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	l := setup(&buf, "loud")

	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}
