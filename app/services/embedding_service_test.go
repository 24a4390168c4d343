package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfsbane9513/influencer-ai/config"
)

func voiceConfigForTest(apiKey, agentID string) *config.VoiceConfig {
	return &config.VoiceConfig{
		APIBase: "https://api.elevenlabs.io",
		APIKey:  apiKey,
		AgentID: agentID,
		Timeout: 5 * time.Second,
	}
}

func embeddingConfigForTest() *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 384,
		Timeout:    5 * time.Second,
		CacheTTL:   time.Hour,
	}
}

func TestHashEmbeddingDeterministic(t *testing.T) {
	a := HashEmbedding("fitness creator on instagram", 384)
	b := HashEmbedding("fitness creator on instagram", 384)
	assert.Equal(t, a, b)
	assert.Len(t, a, 384)
}

func TestHashEmbeddingUnitNorm(t *testing.T) {
	vec := HashEmbedding("tech reviewer covering gadgets and software", 384)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestHashEmbeddingDistinguishesTexts(t *testing.T) {
	a := HashEmbedding("beauty influencer posting skincare routines", 384)
	b := HashEmbedding("gaming streamer speedrunning retro titles", 384)
	assert.NotEqual(t, a, b)
}

func TestHashEmbeddingSharedVocabularyIsCloser(t *testing.T) {
	base := HashEmbedding("fitness coach sharing workout plans", 384)
	near := HashEmbedding("fitness coach sharing meal plans", 384)
	far := HashEmbedding("crypto analyst charting market trends", 384)

	assert.Greater(t, dot(base, near), dot(base, far))
}

func TestHashEmbeddingEmptyText(t *testing.T) {
	vec := HashEmbedding("", 384)
	require.Len(t, vec, 384)

	// Degenerate input still yields a usable unit vector
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestEmbedFallsBackWithoutAPIKey(t *testing.T) {
	svc := NewEmbeddingService(embeddingConfigForTest(), nil, nil)

	vec, err := svc.Embed(context.Background(), "travel vlogger exploring southeast asia")
	require.NoError(t, err)
	assert.Len(t, vec, 384)

	again, err := svc.Embed(context.Background(), "travel vlogger exploring southeast asia")
	require.NoError(t, err)
	assert.Equal(t, vec, again)
}

func TestEmbedFallsBackWhenBackendUnreachable(t *testing.T) {
	cfg := embeddingConfigForTest()
	cfg.APIKey = "test-key"
	cfg.APIBase = "http://127.0.0.1:1"
	svc := NewEmbeddingService(cfg, nil, nil)

	vec, err := svc.Embed(context.Background(), "fitness creator on instagram")
	require.NoError(t, err)
	require.Len(t, vec, 384)
	assert.Equal(t, HashEmbedding("fitness creator on instagram", 384), vec)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
