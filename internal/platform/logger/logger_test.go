package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	// Preserve the process default logger across the test.
	oldDefault := slog.Default()
	defer slog.SetDefault(oldDefault)

	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"case insensitive", "DEBUG"},
		{"invalid level falls back to info", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(LoggerConfig{Level: tt.level})
			require.NoError(t, err, "Setup should not fail")
			require.NotNil(t, logger, "Setup should return a logger")
			assert.Equal(t, logger, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Without a logger in context, the process default is returned.
	assert.Equal(t, slog.Default(), FromContext(ctx))

	custom := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = WithLogger(ctx, custom)
	assert.Equal(t, custom, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		def      *slog.Logger
		expected func() *slog.Logger
	}{
		{
			name:     "logger in context wins",
			ctx:      WithLogger(context.Background(), fallback),
			def:      slog.Default(),
			expected: func() *slog.Logger { return fallback },
		},
		{
			name:     "default used when context empty",
			ctx:      context.Background(),
			def:      fallback,
			expected: func() *slog.Logger { return fallback },
		},
		{
			name:     "process default when both absent",
			ctx:      context.Background(),
			def:      nil,
			expected: slog.Default,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FromContextOrDefault(tt.ctx, tt.def)
			assert.Equal(t, tt.expected(), result)
		})
	}
}
