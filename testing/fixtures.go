package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCreator creates a roster creator in the given niche
func (tf *TestFixtures) CreateTestCreator(niche string, followerCount int64, typicalRate float64) (*models.Creator, error) {
	suffix := rand.Intn(1000000)
	creator := &models.Creator{
		UUID:           uuid.New(),
		Name:           fmt.Sprintf("Creator_%s_%d", niche, suffix),
		Platform:       "YouTube",
		Handle:         fmt.Sprintf("@creator_%s_%d", niche, suffix),
		Niche:          niche,
		FollowerCount:  followerCount,
		EngagementRate: 4.5,
		TypicalRate:    typicalRate,
		Phone:          fmt.Sprintf("+1555%07d", rand.Intn(10000000)),
		Email:          fmt.Sprintf("creator%d@example.com", suffix),
		Languages:      pq.StringArray{"English"},
		ContentTypes:   pq.StringArray{"product_reviews", "tutorials"},
		Bio:            fmt.Sprintf("%s content creator focused on honest product reviews", niche),
		IsActive:       utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(creator).Error; err != nil {
		return nil, fmt.Errorf("failed to create test creator: %w", err)
	}

	return creator, nil
}

// CreateTestCampaign creates a campaign in the given stage for the given client
func (tf *TestFixtures) CreateTestCampaign(clientID uint, stage models.CampaignStage, budget float64) (*models.Campaign, error) {
	campaign := &models.Campaign{
		UUID:     uuid.New(),
		TaskID:   uuid.New(),
		ClientID: clientID,
		Stage:    stage,
		Brief: models.CampaignBrief{
			ProductName:        "SmartFit Pro",
			BrandName:          "FitTech",
			ProductDescription: "A fitness tracker with workout coaching",
			TargetAudience:     "Fitness enthusiasts aged 18-35",
			CampaignGoal:       "Drive product launch awareness",
			ProductNiche:       "fitness",
			TotalBudget:        budget,
		},
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestNegotiation creates a negotiation in the given phase
func (tf *TestFixtures) CreateTestNegotiation(campaignID, creatorID uint, phase models.NegotiationPhase, offeredRate float64) (*models.Negotiation, error) {
	negotiation := &models.Negotiation{
		UUID:        uuid.New(),
		CampaignID:  campaignID,
		CreatorID:   creatorID,
		Phase:       phase,
		OfferedRate: offeredRate,
		MaxRate:     offeredRate * 1.3,
	}

	if phase.Successful() {
		finalRate := offeredRate * 1.1
		negotiation.FinalRate = &finalRate
	}

	if err := tf.DB.DB.Create(negotiation).Error; err != nil {
		return nil, fmt.Errorf("failed to create test negotiation: %w", err)
	}

	return negotiation, nil
}

// CreateTestContract creates a contract for an accepted negotiation
func (tf *TestFixtures) CreateTestContract(campaignID, negotiationID, creatorID uint, agreedRate float64) (*models.Contract, error) {
	contract := &models.Contract{
		UUID:          uuid.New(),
		CampaignID:    campaignID,
		NegotiationID: negotiationID,
		CreatorID:     creatorID,
		Tier:          models.ContractTierStandard,
		AgreedRate:    agreedRate,
		Currency:      utils.USDCurrency,
		Deliverables:  pq.StringArray{"2 sponsored videos", "3 story mentions"},
		PaymentSchedule: models.PaymentSchedule{
			{Stage: "signing", Percentage: 50, Amount: agreedRate * 0.5},
			{Stage: "completion", Percentage: 50, Amount: agreedRate * 0.5},
		},
		DeliveryDays: 21,
	}

	if err := tf.DB.DB.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contract: %w", err)
	}

	return contract, nil
}

// CreateCompletedCampaign creates a completed campaign with one accepted
// negotiation and its contract, ready for report and status assertions.
func (tf *TestFixtures) CreateCompletedCampaign(clientID uint, budget float64) (*models.Campaign, *models.Negotiation, *models.Contract, error) {
	creator, err := tf.CreateTestCreator("fitness", 300_000, 3200)
	if err != nil {
		return nil, nil, nil, err
	}

	campaign, err := tf.CreateTestCampaign(clientID, models.CampaignStageCompleted, budget)
	if err != nil {
		return nil, nil, nil, err
	}

	negotiation, err := tf.CreateTestNegotiation(campaign.ID, creator.ID, models.NegotiationPhaseAccepted, 3200)
	if err != nil {
		return nil, nil, nil, err
	}

	contract, err := tf.CreateTestContract(campaign.ID, negotiation.ID, creator.ID, *negotiation.FinalRate)
	if err != nil {
		return nil, nil, nil, err
	}

	now := utils.UTCNow()
	campaign.CreatorsFound = 1
	campaign.CompletedNegotiations = 1
	campaign.SuccessfulNegotiations = 1
	campaign.ContractsGenerated = 1
	campaign.BudgetCommitted = contract.AgreedRate
	campaign.FinishedAt = &now
	if err := tf.DB.DB.Save(campaign).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("failed to finalize test campaign: %w", err)
	}

	return campaign, negotiation, contract, nil
}
