package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
)

// stubEmbedder returns canned vectors keyed by text
type stubEmbedder struct {
	vectors map[string][]float64
	fallbackDim int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	vec := make([]float64, s.fallbackDim)
	vec[0] = 1
	return vec, nil
}

func matcherConfigForTest() *config.MatcherConfig {
	return &config.MatcherConfig{
		SimilarityWeight:   0.6,
		PriceWeight:        0.4,
		CompatibleBonus:    1.0,
		IncompatibleBonus:  0.3,
		PriceWindowLow:     0.5,
		PriceWindowHigh:    1.5,
		MinSimilarityFloor: 0.1,
		DefaultTopN:        3,
	}
}

func testBrief(budget float64) *models.CampaignBrief {
	return &models.CampaignBrief{
		ProductName:  "ProteinMax",
		BrandName:    "FitFuel",
		ProductNiche: "fitness",
		TotalBudget:  budget,
	}
}

func testCreator(id uint, name string, engagement, rate float64) *models.Creator {
	return &models.Creator{
		ID:             id,
		Name:           name,
		Platform:       "instagram",
		Niche:          "fitness",
		FollowerCount:  50_000,
		EngagementRate: engagement,
		TypicalRate:    rate,
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)

	// Negative similarity clamps to 0
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}))

	// Degenerate inputs
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}

func TestRankCreatorsCompositeOrdering(t *testing.T) {
	brief := testBrief(3000) // fair share 1000, window [500, 1500]

	// Brief vector is (1,0). Creator A is a perfect semantic match but priced
	// outside the window; creator B is a weaker match priced inside it.
	embedder := &stubEmbedder{
		vectors: map[string][]float64{
			brief.BriefText(): {1, 0},
		},
		fallbackDim: 2,
	}

	a := testCreator(1, "A", 0.05, 5000)
	b := testCreator(2, "B", 0.04, 1000)
	embedder.vectors[a.ProfileText()] = []float64{1, 0}
	embedder.vectors[b.ProfileText()] = []float64{0.8, 0.6} // cos = 0.8

	matcher := NewMatcher(embedder, matcherConfigForTest())
	ranked, err := matcher.RankCreators(context.Background(), brief, []*models.Creator{a, b}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// A: 0.6*1.0 + 0.4*0.3 = 0.72; B: 0.6*0.8 + 0.4*1.0 = 0.88
	assert.Equal(t, uint(2), ranked[0].Creator.ID)
	assert.InDelta(t, 0.88, ranked[0].Composite, 1e-9)
	assert.Equal(t, uint(1), ranked[1].Creator.ID)
	assert.InDelta(t, 0.72, ranked[1].Composite, 1e-9)
}

func TestRankCreatorsTieBreaking(t *testing.T) {
	brief := testBrief(3000)
	embedder := &stubEmbedder{
		vectors:     map[string][]float64{brief.BriefText(): {1, 0}},
		fallbackDim: 2,
	}

	// Identical vectors and rates, different engagement
	lowEng := testCreator(1, "low", 0.02, 1000)
	highEng := testCreator(2, "high", 0.08, 1000)
	embedder.vectors[lowEng.ProfileText()] = []float64{1, 0}
	embedder.vectors[highEng.ProfileText()] = []float64{1, 0}

	matcher := NewMatcher(embedder, matcherConfigForTest())
	ranked, err := matcher.RankCreators(context.Background(), brief, []*models.Creator{lowEng, highEng}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, uint(2), ranked[0].Creator.ID, "higher engagement wins the tie")

	// Full tie falls back to creator ID ascending
	sameA := testCreator(7, "sameA", 0.05, 1000)
	sameB := testCreator(3, "sameB", 0.05, 1000)
	embedder.vectors[sameA.ProfileText()] = []float64{1, 0}
	embedder.vectors[sameB.ProfileText()] = []float64{1, 0}

	ranked, err = matcher.RankCreators(context.Background(), brief, []*models.Creator{sameA, sameB}, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), ranked[0].Creator.ID)
	assert.Equal(t, uint(7), ranked[1].Creator.ID)
}

func TestRankCreatorsSimilarityFloor(t *testing.T) {
	brief := testBrief(3000)
	embedder := &stubEmbedder{
		vectors:     map[string][]float64{brief.BriefText(): {1, 0}},
		fallbackDim: 2,
	}

	match := testCreator(1, "match", 0.05, 1000)
	noMatch := testCreator(2, "nomatch", 0.04, 1000)
	embedder.vectors[match.ProfileText()] = []float64{1, 0}
	embedder.vectors[noMatch.ProfileText()] = []float64{0, 1} // similarity 0

	matcher := NewMatcher(embedder, matcherConfigForTest())
	ranked, err := matcher.RankCreators(context.Background(), brief, []*models.Creator{match, noMatch}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(1), ranked[0].Creator.ID)
}

func TestRankCreatorsInsufficientCandidates(t *testing.T) {
	brief := testBrief(3000)
	embedder := &stubEmbedder{
		vectors:     map[string][]float64{brief.BriefText(): {1, 0}},
		fallbackDim: 2,
	}

	far := testCreator(1, "far", 0.05, 1000)
	embedder.vectors[far.ProfileText()] = []float64{0, 1}

	matcher := NewMatcher(embedder, matcherConfigForTest())
	_, err := matcher.RankCreators(context.Background(), brief, []*models.Creator{far}, 3)
	assert.ErrorIs(t, err, ErrInsufficientCandidates)

	// No roster at all behaves the same way
	_, err = matcher.RankCreators(context.Background(), brief, nil, 3)
	assert.ErrorIs(t, err, ErrInsufficientCandidates)
}

func TestRankCreatorsTruncatesToTopN(t *testing.T) {
	brief := testBrief(3000)
	embedder := &stubEmbedder{
		vectors:     map[string][]float64{brief.BriefText(): {1, 0}},
		fallbackDim: 2,
	}

	creators := make([]*models.Creator, 0, 5)
	for i := uint(1); i <= 5; i++ {
		c := testCreator(i, "c", 0.05, 1000)
		embedder.vectors[c.ProfileText()] = []float64{1, 0}
		creators = append(creators, c)
	}

	matcher := NewMatcher(embedder, matcherConfigForTest())
	ranked, err := matcher.RankCreators(context.Background(), brief, creators, 2)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestRankCreatorsDeterministic(t *testing.T) {
	brief := testBrief(3000)
	embedder := &stubEmbedder{
		vectors:     map[string][]float64{brief.BriefText(): {1, 0}},
		fallbackDim: 2,
	}

	creators := []*models.Creator{
		testCreator(3, "c3", 0.03, 900),
		testCreator(1, "c1", 0.05, 1100),
		testCreator(2, "c2", 0.04, 4000),
	}
	embedder.vectors[creators[0].ProfileText()] = []float64{0.9, 0.4359}
	embedder.vectors[creators[1].ProfileText()] = []float64{0.95, 0.3122}
	embedder.vectors[creators[2].ProfileText()] = []float64{1, 0}

	matcher := NewMatcher(embedder, matcherConfigForTest())

	first, err := matcher.RankCreators(context.Background(), brief, creators, 3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := matcher.RankCreators(context.Background(), brief, creators, 3)
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Creator.ID, again[j].Creator.ID)
			assert.Equal(t, first[j].Composite, again[j].Composite)
		}
	}
}
