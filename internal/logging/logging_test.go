package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	ctx := context.Background()

	l := New("warn", "json")
	require.False(t, l.Enabled(ctx, slog.LevelInfo))
	require.True(t, l.Enabled(ctx, slog.LevelWarn))

	// unknown level falls back to info
	l = New("chatty", "json")
	require.True(t, l.Enabled(ctx, slog.LevelInfo))
	require.False(t, l.Enabled(ctx, slog.LevelDebug))

	l = New("debug", "json")
	require.True(t, l.Enabled(ctx, slog.LevelDebug))
}

func TestNewFormats(t *testing.T) {
	_, ok := New("info", "text").Handler().(*slog.TextHandler)
	require.True(t, ok)

	_, ok = New("info", "json").Handler().(*slog.JSONHandler)
	require.True(t, ok)

	// anything unrecognized stays JSON
	_, ok = New("info", "").Handler().(*slog.JSONHandler)
	require.True(t, ok)
}

func TestContextRoundTrip(t *testing.T) {
	l := New("info", "json")
	ctx := IntoContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	// missing logger falls back to the default
	require.NotNil(t, FromContext(context.Background()))
}
