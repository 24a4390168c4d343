package orchestrator

import (
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
)

// RateRange is the negotiation envelope for a single creator
type RateRange struct {
	Initial float64 `json:"initial"`
	Max     float64 `json:"max"`
}

// rateBand is the market benchmark for a niche and tier
type rateBand struct {
	Min float64
	Max float64
}

// nicheBenchmarks holds per-niche market rate bands by creator tier.
// Niches without an entry fall back to defaultBenchmarks.
var nicheBenchmarks = map[string]map[models.CreatorTier]rateBand{
	"fitness": {
		models.CreatorTierMicro: {Min: 300, Max: 2_000},
		models.CreatorTierMacro: {Min: 2_000, Max: 10_000},
		models.CreatorTierMega:  {Min: 10_000, Max: 60_000},
	},
	"beauty": {
		models.CreatorTierMicro: {Min: 400, Max: 2_500},
		models.CreatorTierMacro: {Min: 2_500, Max: 12_000},
		models.CreatorTierMega:  {Min: 12_000, Max: 80_000},
	},
	"tech": {
		models.CreatorTierMicro: {Min: 500, Max: 3_000},
		models.CreatorTierMacro: {Min: 3_000, Max: 15_000},
		models.CreatorTierMega:  {Min: 15_000, Max: 100_000},
	},
	"gaming": {
		models.CreatorTierMicro: {Min: 350, Max: 2_200},
		models.CreatorTierMacro: {Min: 2_200, Max: 11_000},
		models.CreatorTierMega:  {Min: 11_000, Max: 70_000},
	},
	"food": {
		models.CreatorTierMicro: {Min: 250, Max: 1_800},
		models.CreatorTierMacro: {Min: 1_800, Max: 9_000},
		models.CreatorTierMega:  {Min: 9_000, Max: 50_000},
	},
}

var defaultBenchmarks = map[models.CreatorTier]rateBand{
	models.CreatorTierMicro: {Min: 300, Max: 2_000},
	models.CreatorTierMacro: {Min: 2_000, Max: 10_000},
	models.CreatorTierMega:  {Min: 10_000, Max: 60_000},
}

// PricingAdvisor derives negotiation rate ranges from creator history and
// market benchmarks
type PricingAdvisor interface {
	SuggestRate(creator *models.Creator, budgetHeadroom float64) RateRange
}

// PricingAdvisorImpl implements PricingAdvisor
type PricingAdvisorImpl struct {
	config *config.PricingConfig
}

// NewPricingAdvisor creates a new pricing advisor
func NewPricingAdvisor(cfg *config.PricingConfig) PricingAdvisor {
	return &PricingAdvisorImpl{config: cfg}
}

// SuggestRate returns the initial offer and the hard ceiling for a creator.
// The initial offer is the creator's typical rate scaled by the tier factor
// and clamped into the niche benchmark band. The ceiling is the marked-up
// initial rate, never above the remaining budget headroom.
func (p *PricingAdvisorImpl) SuggestRate(creator *models.Creator, budgetHeadroom float64) RateRange {
	tier := creator.Tier()

	factor := p.config.MicroTierFactor
	switch tier {
	case models.CreatorTierMacro:
		factor = p.config.MacroTierFactor
	case models.CreatorTierMega:
		factor = p.config.MegaTierFactor
	}

	band := benchmarkFor(creator.Niche, tier)

	initial := creator.TypicalRate * factor
	if initial < band.Min {
		initial = band.Min
	}
	if initial > band.Max {
		initial = band.Max
	}

	maxRate := initial * p.config.MaxRateMarkup
	if maxRate > budgetHeadroom {
		maxRate = budgetHeadroom
	}
	if initial > maxRate {
		initial = maxRate
	}

	return RateRange{Initial: initial, Max: maxRate}
}

func benchmarkFor(niche string, tier models.CreatorTier) rateBand {
	if bands, ok := nicheBenchmarks[niche]; ok {
		if band, ok := bands[tier]; ok {
			return band
		}
	}
	return defaultBenchmarks[tier]
}
