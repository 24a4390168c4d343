package orchestrator

import (
	"math"

	"github.com/lib/pq"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// Payment schedule rate breakpoints
const (
	premiumScheduleThreshold  = 5_000
	standardScheduleThreshold = 2_000
)

// Delivery windows by contract tier, in days
const (
	microDeliveryDays    = 14
	standardDeliveryDays = 21
	premiumDeliveryDays  = 30
)

var defaultDeliverables = []string{"1 sponsored post", "3 stories"}

// ContractGenerator builds contracts for accepted negotiations
type ContractGenerator interface {
	Generate(campaign *models.Campaign, negotiation *models.Negotiation, creator *models.Creator, deliverables []string) *models.Contract
}

// ContractGeneratorImpl implements ContractGenerator
type ContractGeneratorImpl struct{}

// NewContractGenerator creates a new contract generator
func NewContractGenerator() ContractGenerator {
	return &ContractGeneratorImpl{}
}

// Generate builds a contract from an accepted negotiation. The tier follows
// the creator's follower tier, the payment schedule follows the agreed rate,
// and milestone amounts always sum to the agreed rate exactly.
func (g *ContractGeneratorImpl) Generate(campaign *models.Campaign, negotiation *models.Negotiation, creator *models.Creator, deliverables []string) *models.Contract {
	rate := negotiation.OfferedRate
	if negotiation.FinalRate != nil {
		rate = *negotiation.FinalRate
	}

	if len(deliverables) == 0 {
		deliverables = defaultDeliverables
	}

	tier := contractTierFor(creator.Tier())

	return &models.Contract{
		CampaignID:      campaign.ID,
		NegotiationID:   negotiation.ID,
		CreatorID:       creator.ID,
		Tier:            tier,
		AgreedRate:      rate,
		Currency:        utils.USDCurrency,
		Deliverables:    pq.StringArray(deliverables),
		PaymentSchedule: BuildPaymentSchedule(rate),
		DeliveryDays:    deliveryDaysFor(tier),
	}
}

// BuildPaymentSchedule splits the agreed rate into milestones. High-value
// contracts stage payouts across signing, delivery, and completion; mid-value
// contracts split signing and delivery; small contracts pay out on delivery.
func BuildPaymentSchedule(rate float64) models.PaymentSchedule {
	switch {
	case rate > premiumScheduleThreshold:
		return splitMilestones(rate, []models.PaymentMilestone{
			{Stage: "signing", Percentage: 25},
			{Stage: "delivery", Percentage: 50},
			{Stage: "completion", Percentage: 25},
		})
	case rate > standardScheduleThreshold:
		return splitMilestones(rate, []models.PaymentMilestone{
			{Stage: "signing", Percentage: 50},
			{Stage: "delivery", Percentage: 50},
		})
	default:
		return models.PaymentSchedule{
			{Stage: "delivery", Percentage: 100, Amount: roundCents(rate)},
		}
	}
}

// splitMilestones assigns milestone amounts, putting any rounding remainder
// on the final milestone so the total matches the rate.
func splitMilestones(rate float64, milestones []models.PaymentMilestone) models.PaymentSchedule {
	schedule := make(models.PaymentSchedule, len(milestones))
	var allocated float64
	for i, m := range milestones {
		if i == len(milestones)-1 {
			m.Amount = roundCents(rate - allocated)
		} else {
			m.Amount = roundCents(rate * float64(m.Percentage) / 100)
			allocated += m.Amount
		}
		schedule[i] = m
	}
	return schedule
}

func contractTierFor(tier models.CreatorTier) models.ContractTier {
	switch tier {
	case models.CreatorTierMega:
		return models.ContractTierPremium
	case models.CreatorTierMacro:
		return models.ContractTierStandard
	default:
		return models.ContractTierMicro
	}
}

func deliveryDaysFor(tier models.ContractTier) int {
	switch tier {
	case models.ContractTierPremium:
		return premiumDeliveryDays
	case models.ContractTierStandard:
		return standardDeliveryDays
	default:
		return microDeliveryDays
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
