package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/logging"
)

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	t.Run("file output honours level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nordigen.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "engine"},
		})

		logger.Info().Msg("info message")
		logger.Warn().Msg("warn message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "info message")
		assert.Contains(t, string(content), "warn message")
		assert.Contains(t, string(content), `"component":"engine"`)
	})

	t.Run("console format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:   "info",
			Format:  "console",
			Output:  path,
			NoColor: true,
		})
		logger.Info().Str("key", "value").Msg("console test")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "INF")
		assert.Contains(t, string(content), "console test")
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.NotPanics(t, func() { logging.NewLoggerFromConfig(nil) })
	})
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithReference(ctx, "user1-aspsp1")
	ctx = logging.WithInstitution(ctx, "aspsp1")
	ctx = logging.WithRequisition(ctx, "req-1")
	ctx = logging.WithAccount(ctx, "acc-1")

	logging.FromContext(ctx).Info().Msg("fetched account")

	e := tl.AssertEntry(t, zerolog.InfoLevel, "fetched account")
	assert.Equal(t, "run-1", e.Str("run_id"))
	assert.Equal(t, "user1-aspsp1", e.Str("reference"))
	assert.Equal(t, "aspsp1", e.Str("institution_id"))
	assert.Equal(t, "req-1", e.Str("requisition_id"))
	assert.Equal(t, "acc-1", e.Str("account_id"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestFromContextOr(t *testing.T) {
	fallback := logging.NewNopLogger()
	assert.Same(t, fallback, logging.FromContextOr(context.Background(), fallback))
	assert.Same(t, logging.Default(), logging.FromContextOr(context.Background(), nil))

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, logging.FromContextOr(ctx, fallback))

	_, ok := logging.Lookup(context.Background())
	assert.False(t, ok)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Msg("message 2")
	tl.Logger.Error().Msg("message 3")

	tl.AssertCount(t, 3)
	assert.Equal(t, 2, tl.CountLevel(zerolog.ErrorLevel))
	assert.True(t, tl.ContainsAll("message 1", "message 2"))

	_, ok := tl.Find(zerolog.WarnLevel, "message 1")
	assert.False(t, ok)

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
	assert.Empty(t, tl.Entries())
}
