// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wolfsbane9513/influencer-ai/app/dto"
	"github.com/wolfsbane9513/influencer-ai/app/orchestrator"
	"github.com/wolfsbane9513/influencer-ai/app/services"
	businessflow "github.com/wolfsbane9513/influencer-ai/business_flow"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
	testingutil "github.com/wolfsbane9513/influencer-ai/testing"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// campaignFlowFixture wires the full stack (flow, orchestrator, mock voice
// provider, hash embedder) on top of a real test database.
type campaignFlowFixture struct {
	flow         businessflow.CampaignFlow
	orchestrator orchestrator.CampaignOrchestrator
	voice        *services.MockVoiceService
}

func newCampaignFlowFixture(t *testing.T, testDB *testingutil.TestDB) *campaignFlowFixture {
	t.Helper()

	cfg := &config.ProductionConfig{
		Matcher: config.MatcherConfig{
			SimilarityWeight:   0.6,
			PriceWeight:        0.4,
			CompatibleBonus:    1.0,
			IncompatibleBonus:  0.3,
			PriceWindowLow:     0.5,
			PriceWindowHigh:    1.5,
			MinSimilarityFloor: 0.1,
			DefaultTopN:        3,
		},
		Pricing: config.PricingConfig{
			MicroTierFactor: 0.9,
			MacroTierFactor: 1.0,
			MegaTierFactor:  1.15,
			MaxRateMarkup:   1.3,
		},
		Negotiation: config.NegotiationConfig{
			MaxAttempts:       3,
			BackoffBase:       time.Millisecond,
			BackoffCap:        5 * time.Millisecond,
			MaxCallDuration:   2 * time.Second,
			PollInterval:      time.Millisecond,
			PollBackoffCap:    5 * time.Millisecond,
			AcceptFloorFactor: 0.7,
		},
		Orchestrator: config.OrchestratorConfig{
			MaxConcurrentNegotiations: 10,
			CampaignDeadline:          10 * time.Second,
			SnapshotCacheTTL:          5 * time.Second,
			EstimatePerCreator:        2 * time.Minute,
			RetainFinishedFor:         time.Minute,
		},
		Embedding: config.EmbeddingConfig{
			Dimensions: 64,
		},
		Logging: config.LoggingConfig{
			OrchestratorLogPath: filepath.Join(t.TempDir(), "orchestrator.log"),
		},
	}

	campaignRepo := repository.NewCampaignRepository(testDB.DB)
	creatorRepo := repository.NewCreatorRepository(testDB.DB)
	negotiationRepo := repository.NewNegotiationRepository(testDB.DB)
	contractRepo := repository.NewContractRepository(testDB.DB)

	voice := services.NewMockVoiceService()
	embedder := services.NewEmbeddingService(&cfg.Embedding, &cfg.Cache, nil)
	email := services.NewEmailService(services.NewMockEmailProvider())

	orch := orchestrator.NewCampaignOrchestrator(
		cfg,
		campaignRepo,
		creatorRepo,
		negotiationRepo,
		contractRepo,
		voice,
		embedder,
		email,
		nil,
	)

	flow := businessflow.NewCampaignFlow(
		campaignRepo,
		creatorRepo,
		negotiationRepo,
		contractRepo,
		orch,
		testDB.DB,
		nil,
		cfg,
	)

	return &campaignFlowFixture{flow: flow, orchestrator: orch, voice: voice}
}

// seedNegotiableCreator inserts a creator whose phone suffix makes the mock
// voice provider accept the offer.
func seedNegotiableCreator(t *testing.T, testDB *testingutil.TestDB, name, niche string, rate float64) *models.Creator {
	t.Helper()

	creator := &models.Creator{
		Name:           name,
		Platform:       "YouTube",
		Handle:         "@" + name,
		Niche:          niche,
		FollowerCount:  300_000,
		EngagementRate: 5.0,
		TypicalRate:    rate,
		Phone:          fmt.Sprintf("+1555000%04d7", len(name)),
		Email:          name + "@example.com",
		Languages:      pq.StringArray{"English"},
		ContentTypes:   pq.StringArray{"product_reviews"},
		Bio:            niche + " creator",
		IsActive:       utils.ToPtr(true),
	}
	require.NoError(t, testDB.DB.Create(creator).Error)
	return creator
}

func startRequest(clientID uint, budget float64) *dto.StartCampaignRequest {
	return &dto.StartCampaignRequest{
		ClientID:     clientID,
		ProductName:  "SmartFit Pro",
		BrandName:    "FitTech",
		ProductNiche: "fitness",
		TotalBudget:  budget,
	}
}

func TestCampaignFlowEndToEnd(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fx := newCampaignFlowFixture(t, testDB)
		ctx := testingutil.CreateTestContext()
		meta := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		seedNegotiableCreator(t, testDB, "alice", "fitness", 2000)
		seedNegotiableCreator(t, testDB, "bob", "fitness", 2500)

		resp, err := fx.flow.StartCampaign(ctx, startRequest(1, 10000), meta)
		require.NoError(t, err)
		assert.Equal(t, "started", resp.Status)
		assert.Equal(t, models.CampaignStageStarting.String(), resp.Stage)
		// Pre-discovery estimate: top-N (3) creators at 2 minutes each
		assert.Equal(t, 6, resp.EstimatedDurationMinutes)
		require.NotEmpty(t, resp.TaskID)

		require.True(t, fx.orchestrator.WaitForCompletion(resp.TaskID, 10*time.Second))

		status, err := fx.flow.GetCampaignStatus(ctx, &dto.CampaignStatusRequest{TaskID: resp.TaskID, ClientID: 1}, meta)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignStageCompleted.String(), status.Stage)
		assert.Equal(t, 100, status.Progress)
		assert.Equal(t, 2, status.CreatorsFound)
		assert.Equal(t, 2, status.CompletedNegotiations)
		assert.Equal(t, 2, status.SuccessfulNegotiations)
		assert.Equal(t, 2, status.ContractsGenerated)
		assert.Greater(t, status.BudgetCommitted, 0.0)
		assert.NotNil(t, status.FinishedAt)
		require.Len(t, status.Negotiations, 2)

		list, err := fx.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{ClientID: 1}, meta)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, resp.TaskID, list.Items[0].TaskID)
		assert.Equal(t, int64(1), list.Pagination.Total)

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignFlowValidation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fx := newCampaignFlowFixture(t, testDB)
		ctx := testingutil.CreateTestContext()
		meta := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("MissingProductName", func(t *testing.T) {
			req := startRequest(1, 10000)
			req.ProductName = "   "
			_, err := fx.flow.StartCampaign(ctx, req, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNameRequired(err))
		})

		t.Run("InvalidBudget", func(t *testing.T) {
			req := startRequest(1, 0)
			_, err := fx.flow.StartCampaign(ctx, req, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsTotalBudgetInvalid(err))
		})

		t.Run("StatusUnknownTaskID", func(t *testing.T) {
			_, err := fx.flow.GetCampaignStatus(ctx, &dto.CampaignStatusRequest{
				TaskID:   "3d7a4f8e-0000-0000-0000-000000000000",
				ClientID: 1,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		t.Run("StatusWrongClient", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			campaign, err := fixtures.CreateTestCampaign(1, models.CampaignStageNegotiating, 5000)
			require.NoError(t, err)

			_, err = fx.flow.GetCampaignStatus(ctx, &dto.CampaignStatusRequest{
				TaskID:   campaign.TaskID.String(),
				ClientID: 2,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignAccessDenied(err))
		})

		t.Run("CancelTerminalCampaign", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			campaign, _, _, err := fixtures.CreateCompletedCampaign(1, 5000)
			require.NoError(t, err)

			_, err = fx.flow.CancelCampaign(ctx, &dto.CancelCampaignRequest{
				TaskID:   campaign.TaskID.String(),
				ClientID: 1,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotCancellable(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignReportExport(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fx := newCampaignFlowFixture(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		meta := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("NotAvailableDuringDiscovery", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(1, models.CampaignStageDiscovery, 5000)
			require.NoError(t, err)

			_, err = fx.flow.ExportCampaignReport(ctx, &dto.CampaignReportRequest{
				TaskID:   campaign.TaskID.String(),
				ClientID: 1,
			}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsReportNotAvailable(err))
		})

		t.Run("CompletedCampaignWorkbook", func(t *testing.T) {
			campaign, _, contract, err := fixtures.CreateCompletedCampaign(1, 10000)
			require.NoError(t, err)

			result, err := fx.flow.ExportCampaignReport(ctx, &dto.CampaignReportRequest{
				TaskID:   campaign.TaskID.String(),
				ClientID: 1,
			}, meta)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("campaign_report_%s.xlsx", campaign.TaskID), result.Filename)
			require.NotEmpty(t, result.Content)

			xl, err := excelize.OpenReader(bytes.NewReader(result.Content))
			require.NoError(t, err)
			defer xl.Close()

			assert.ElementsMatch(t, []string{"Summary", "Negotiations", "Contracts"}, xl.GetSheetList())

			negRows, err := xl.GetRows("Negotiations")
			require.NoError(t, err)
			require.Len(t, negRows, 2) // header + one negotiation
			assert.Equal(t, "accepted", negRows[1][3])

			conRows, err := xl.GetRows("Contracts")
			require.NoError(t, err)
			require.Len(t, conRows, 2) // header + one contract
			assert.Equal(t, contract.UUID.String(), conRows[1][0])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCreatorRosterListing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fx := newCampaignFlowFixture(t, testDB)
		ctx := testingutil.CreateTestContext()

		require.NoError(t, testDB.SeedDefaultRoster())

		t.Run("All", func(t *testing.T) {
			resp, err := fx.flow.ListCreators(ctx, &dto.ListCreatorsRequest{})
			require.NoError(t, err)
			assert.Len(t, resp.Items, 3)
			assert.Equal(t, int64(3), resp.Pagination.Total)
		})

		t.Run("FilteredByNiche", func(t *testing.T) {
			resp, err := fx.flow.ListCreators(ctx, &dto.ListCreatorsRequest{Niche: "Beauty"})
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "BeautyInfluencer_Priya", resp.Items[0].Name)
			assert.Equal(t, "mega", resp.Items[0].Tier)
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			_, err := fx.flow.ListCreators(ctx, &dto.ListCreatorsRequest{PageSize: 500})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		return nil
	})
	require.NoError(t, err)
}
