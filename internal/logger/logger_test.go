package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"CRITICAL", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	Init(false, "warn", "")

	require.NotNil(t, Log)
	assert.Same(t, Log, slog.Default())
	assert.False(t, Log.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, Log.Enabled(context.Background(), slog.LevelWarn))
}
