package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 600, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 150, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 0.75, cfg.Quality.AcceptanceThreshold)
	assert.Equal(t, 1000, cfg.Cache.L1Capacity)
	assert.Equal(t, 0.85, cfg.Cache.SimilarityThreshold)
}

func TestChunkingConfig_Validate_RejectsMinGreaterThanMax(t *testing.T) {
	c := &ChunkingConfig{MinChunkSize: 500, MaxChunkSize: 300}
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOptimizerConfig_Validate_RejectsMinGreaterThanMax(t *testing.T) {
	o := &OptimizerConfig{MinChunkSize: 500, MaxChunkSize: 300}
	err := o.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
