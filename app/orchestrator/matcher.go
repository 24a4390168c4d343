package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wolfsbane9513/influencer-ai/app/services"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
)

// ScoredCreator is a creator ranked against a campaign brief
type ScoredCreator struct {
	Creator    *models.Creator `json:"creator"`
	Similarity float64         `json:"similarity"`
	PriceBonus float64         `json:"price_bonus"`
	Composite  float64         `json:"composite"`
}

// Matcher ranks roster creators against a campaign brief
type Matcher interface {
	RankCreators(ctx context.Context, brief *models.CampaignBrief, creators []*models.Creator, topN int) ([]ScoredCreator, error)
}

// MatcherImpl scores creators by semantic similarity to the brief blended
// with a price-compatibility bonus
type MatcherImpl struct {
	embedder services.EmbeddingService
	config   *config.MatcherConfig
}

// NewMatcher creates a new matcher
func NewMatcher(embedder services.EmbeddingService, cfg *config.MatcherConfig) Matcher {
	return &MatcherImpl{
		embedder: embedder,
		config:   cfg,
	}
}

// RankCreators returns up to topN creators ordered by composite score.
// Creators below the similarity floor are excluded; ties break on engagement
// rate and then creator ID, so the ranking is stable across runs.
func (m *MatcherImpl) RankCreators(ctx context.Context, brief *models.CampaignBrief, creators []*models.Creator, topN int) ([]ScoredCreator, error) {
	if topN <= 0 {
		topN = m.config.DefaultTopN
	}

	briefVec, err := m.embedder.Embed(ctx, brief.BriefText())
	if err != nil {
		return nil, fmt.Errorf("failed to embed campaign brief: %w", err)
	}

	// A creator's rate is price-compatible when it falls inside the window
	// around the per-creator fair share of the budget.
	fairShare := brief.TotalBudget / float64(topN)
	windowLow := m.config.PriceWindowLow * fairShare
	windowHigh := m.config.PriceWindowHigh * fairShare

	scored := make([]ScoredCreator, 0, len(creators))
	for _, creator := range creators {
		creatorVec, err := m.embedder.Embed(ctx, creator.ProfileText())
		if err != nil {
			return nil, fmt.Errorf("failed to embed creator %d profile: %w", creator.ID, err)
		}

		similarity := CosineSimilarity(briefVec, creatorVec)
		if similarity < m.config.MinSimilarityFloor {
			continue
		}

		priceBonus := m.config.IncompatibleBonus
		if creator.TypicalRate >= windowLow && creator.TypicalRate <= windowHigh {
			priceBonus = m.config.CompatibleBonus
		}

		scored = append(scored, ScoredCreator{
			Creator:    creator,
			Similarity: similarity,
			PriceBonus: priceBonus,
			Composite:  m.config.SimilarityWeight*similarity + m.config.PriceWeight*priceBonus,
		})
	}

	if len(scored) == 0 {
		return nil, ErrInsufficientCandidates
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Composite != scored[j].Composite {
			return scored[i].Composite > scored[j].Composite
		}
		if scored[i].Creator.EngagementRate != scored[j].Creator.EngagementRate {
			return scored[i].Creator.EngagementRate > scored[j].Creator.EngagementRate
		}
		return scored[i].Creator.ID < scored[j].Creator.ID
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	return scored, nil
}

// CosineSimilarity returns the cosine similarity of two vectors clamped to
// [0, 1]. Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
