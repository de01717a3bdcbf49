package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.RetrievalK)
	assert.Equal(t, 1, cfg.RetryBound)
	assert.Equal(t, 60*time.Second, cfg.InferenceTimeout())
	assert.Equal(t, 30*time.Second, cfg.EmbeddingTimeout())
	assert.Equal(t, 12.0, cfg.DefaultUnitCost)
	assert.Equal(t, 1, cfg.DefaultGuestCount)

	var sum float64
	for _, weight := range cfg.CategoryWeights {
		sum += weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDurationFor(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 240, cfg.DurationFor("birthday"))
	assert.Equal(t, 360, cfg.DurationFor("wedding"))
	assert.Equal(t, 180, cfg.DurationFor("baby_shower"))

	// Unknown intents fall back to the generic duration.
	assert.Equal(t, cfg.EventDurationMinutes["generic"], cfg.DurationFor("unknown"))
}

func TestValidate(t *testing.T) {
	t.Run("rejects weights not summing to one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CategoryWeights = map[string]float64{"venue": 0.5, "food": 0.4}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive values", func(t *testing.T) {
		for _, mutate := range []func(*Config){
			func(c *Config) { c.RetrievalK = 0 },
			func(c *Config) { c.RetryBound = -1 },
			func(c *Config) { c.InferenceTimeoutSeconds = 0 },
			func(c *Config) { c.DefaultUnitCost = 0 },
			func(c *Config) { c.DefaultGuestCount = 0 },
		} {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := Load("/nonexistent/eventforge.yaml")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file values layer over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retrieval_k: 5\nretry_bound: 2\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.RetrievalK)
		assert.Equal(t, 2, cfg.RetryBound)
		// Untouched fields keep their defaults.
		assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	})

	t.Run("invalid file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retrieval_k: -1\n"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
