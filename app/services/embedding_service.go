package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/wolfsbane9513/influencer-ai/config"
)

// EmbeddingService converts free text into a dense vector used for
// creator/brief similarity scoring
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingServiceImpl calls an OpenAI-compatible embeddings endpoint and
// caches results in redis keyed by the text hash. When no API key is
// configured, or the backend is unreachable, it falls back to a deterministic
// local vectorizer, so discovery stays usable without the external service.
type EmbeddingServiceImpl struct {
	config      *config.EmbeddingConfig
	cacheConfig *config.CacheConfig
	client      *http.Client
	rc          *redis.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingService creates a new embedding service instance
func NewEmbeddingService(cfg *config.EmbeddingConfig, cacheCfg *config.CacheConfig, rc *redis.Client) EmbeddingService {
	return &EmbeddingServiceImpl{
		config:      cfg,
		cacheConfig: cacheCfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		rc: rc,
	}
}

// Embed returns the embedding vector for the given text
func (s *EmbeddingServiceImpl) Embed(ctx context.Context, text string) ([]float64, error) {
	cacheKey := s.cacheKey(text)

	if s.rc != nil && s.cacheConfig != nil && s.cacheConfig.Enabled {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var vec []float64
			if err := json.Unmarshal(bs, &vec); err == nil && len(vec) == s.config.Dimensions {
				return vec, nil
			}
		}
	}

	var vec []float64
	if s.config.APIKey == "" {
		vec = HashEmbedding(text, s.config.Dimensions)
	} else {
		fetched, err := s.fetchEmbedding(ctx, text)
		if err != nil {
			// Degraded vectors are not cached, so the backend is retried
			// on the next call.
			log.Printf("embedding backend unavailable, using local vectorizer: %v", err)
			return HashEmbedding(text, s.config.Dimensions), nil
		}
		vec = fetched
	}

	if s.rc != nil && s.cacheConfig != nil && s.cacheConfig.Enabled {
		if bs, err := json.Marshal(vec); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, s.config.CacheTTL).Err()
		}
	}

	return vec, nil
}

func (s *EmbeddingServiceImpl) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	prefix := "influencer-ai"
	if s.cacheConfig != nil && s.cacheConfig.RedisPrefix != "" {
		prefix = s.cacheConfig.RedisPrefix
	}
	return fmt.Sprintf("%s:embedding:%s:%x", prefix, s.config.Model, sum[:16])
}

func (s *EmbeddingServiceImpl) fetchEmbedding(ctx context.Context, text string) ([]float64, error) {
	requestBody, err := json.Marshal(embeddingRequest{
		Model: s.config.Model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", s.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed with status %d", resp.StatusCode)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	return result.Data[0].Embedding, nil
}

// HashEmbedding produces a deterministic unit vector from the text. Token
// 3-grams are hashed into vector positions so that texts sharing vocabulary
// land near each other, which is enough signal for ranking in local runs
// and tests.
func HashEmbedding(text string, dimensions int) []float64 {
	if dimensions <= 0 {
		dimensions = 384
	}
	vec := make([]float64, dimensions)

	data := []byte(text)
	for i := 0; i+3 <= len(data); i++ {
		sum := sha256.Sum256(data[i : i+3])
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(dimensions)
		sign := 1.0
		if sum[4]%2 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		vec[0] = 1.0
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}
