package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
)

func pricingConfigForTest() *config.PricingConfig {
	return &config.PricingConfig{
		MicroTierFactor: 0.9,
		MacroTierFactor: 1.0,
		MegaTierFactor:  1.15,
		MaxRateMarkup:   1.3,
	}
}

func TestSuggestRateTierFactors(t *testing.T) {
	advisor := NewPricingAdvisor(pricingConfigForTest())

	micro := &models.Creator{Niche: "fitness", FollowerCount: 50_000, TypicalRate: 1000}
	macro := &models.Creator{Niche: "fitness", FollowerCount: 500_000, TypicalRate: 5000}
	mega := &models.Creator{Niche: "fitness", FollowerCount: 2_000_000, TypicalRate: 20_000}

	rm := advisor.SuggestRate(micro, 1_000_000)
	assert.InDelta(t, 900, rm.Initial, 1e-9) // 1000 * 0.9

	rmac := advisor.SuggestRate(macro, 1_000_000)
	assert.InDelta(t, 5000, rmac.Initial, 1e-9) // 5000 * 1.0

	rmeg := advisor.SuggestRate(mega, 1_000_000)
	assert.InDelta(t, 23_000, rmeg.Initial, 1e-9) // 20000 * 1.15
}

func TestSuggestRateClampsToBenchmarkBand(t *testing.T) {
	advisor := NewPricingAdvisor(pricingConfigForTest())

	// Fitness micro band is [300, 2000]
	cheap := &models.Creator{Niche: "fitness", FollowerCount: 10_000, TypicalRate: 100}
	r := advisor.SuggestRate(cheap, 1_000_000)
	assert.InDelta(t, 300, r.Initial, 1e-9)

	expensive := &models.Creator{Niche: "fitness", FollowerCount: 10_000, TypicalRate: 50_000}
	r = advisor.SuggestRate(expensive, 1_000_000)
	assert.InDelta(t, 2000, r.Initial, 1e-9)
}

func TestSuggestRateMarkup(t *testing.T) {
	advisor := NewPricingAdvisor(pricingConfigForTest())

	creator := &models.Creator{Niche: "fitness", FollowerCount: 50_000, TypicalRate: 1000}
	r := advisor.SuggestRate(creator, 1_000_000)
	assert.InDelta(t, r.Initial*1.3, r.Max, 1e-9)
}

func TestSuggestRateBudgetHeadroomCapsMax(t *testing.T) {
	advisor := NewPricingAdvisor(pricingConfigForTest())

	creator := &models.Creator{Niche: "fitness", FollowerCount: 50_000, TypicalRate: 1000}

	r := advisor.SuggestRate(creator, 1000)
	assert.InDelta(t, 1000, r.Max, 1e-9)
	assert.InDelta(t, 900, r.Initial, 1e-9)

	// When headroom is below the initial offer, the offer follows the ceiling
	r = advisor.SuggestRate(creator, 500)
	assert.InDelta(t, 500, r.Max, 1e-9)
	assert.InDelta(t, 500, r.Initial, 1e-9)
	assert.LessOrEqual(t, r.Initial, r.Max)
}

func TestSuggestRateUnknownNicheUsesDefaults(t *testing.T) {
	advisor := NewPricingAdvisor(pricingConfigForTest())

	// Default micro band is [300, 2000]
	creator := &models.Creator{Niche: "underwater-basket-weaving", FollowerCount: 10_000, TypicalRate: 50}
	r := advisor.SuggestRate(creator, 1_000_000)
	assert.InDelta(t, 300, r.Initial, 1e-9)
}
