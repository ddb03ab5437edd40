// internal/config/config_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.6, cfg.SimilarityThreshold)
	assert.Equal(t, 20, cfg.BlurMax)
	assert.Equal(t, 3, cfg.BlurDecrement)
	assert.Equal(t, 10, cfg.MaxTopics)
	assert.Equal(t, 768, cfg.EmbeddingDims)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Load()

	cfg := *base
	cfg.SimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.BlurDecrement = cfg.BlurMax + 1
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.MaxTopics = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := Load()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := Load()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}
