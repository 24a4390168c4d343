// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
	testingutil "github.com/wolfsbane9513/influencer-ai/testing"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

func TestCampaignRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, err := fixtures.CreateTestCampaign(1, models.CampaignStageStarting, 10000)
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, campaign.UUID, found.UUID)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, 99999)
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByTaskID", func(t *testing.T) {
			found, err := repo.ByTaskID(ctx, campaign.TaskID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, campaign.ID, found.ID)
		})

		t.Run("ByTaskIDNotFound", func(t *testing.T) {
			found, err := repo.ByTaskID(ctx, "3d7a4f8e-0000-0000-0000-000000000000")
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByTaskIDInvalidUUID", func(t *testing.T) {
			_, err := repo.ByTaskID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("ByClientID", func(t *testing.T) {
			_, err := fixtures.CreateTestCampaign(2, models.CampaignStageStarting, 3000)
			require.NoError(t, err)

			campaigns, err := repo.ByClientID(ctx, 1, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, campaigns)
			for _, c := range campaigns {
				assert.Equal(t, uint(1), c.ClientID)
			}
		})

		t.Run("UpdateStage", func(t *testing.T) {
			require.NoError(t, repo.UpdateStage(ctx, campaign.ID, models.CampaignStageDiscovery))

			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStageDiscovery, found.Stage)
			assert.NotNil(t, found.UpdatedAt)
		})

		t.Run("Update", func(t *testing.T) {
			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)

			msg := "provider unreachable"
			now := utils.UTCNow()
			found.Stage = models.CampaignStageFailed
			found.LastError = &msg
			found.FinishedAt = &now
			require.NoError(t, repo.Update(ctx, *found))

			reloaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStageFailed, reloaded.Stage)
			require.NotNil(t, reloaded.LastError)
			assert.Equal(t, msg, *reloaded.LastError)
			assert.NotNil(t, reloaded.FinishedAt)
		})

		t.Run("FilterByStageAndAge", func(t *testing.T) {
			stage := models.CampaignStageFailed
			cutoff := utils.UTCNow().Add(time.Minute)
			filter := models.CampaignFilter{Stage: &stage, CreatedBefore: &cutoff}

			campaigns, err := repo.ByFilter(ctx, filter, "created_at ASC", 0, 0)
			require.NoError(t, err)
			require.NotEmpty(t, campaigns)
			assert.Equal(t, campaign.ID, campaigns[0].ID)
		})

		t.Run("CountByClient", func(t *testing.T) {
			clientID := uint(1)
			count, err := repo.Count(ctx, models.CampaignFilter{ClientID: &clientID})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(1))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCreatorRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCreatorRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		require.NoError(t, testDB.SeedDefaultRoster())

		t.Run("ListActive", func(t *testing.T) {
			creators, err := repo.ListActive(ctx, 0, 0)
			require.NoError(t, err)
			require.Len(t, creators, 3)
			// Ordered by follower count descending
			assert.GreaterOrEqual(t, creators[0].FollowerCount, creators[1].FollowerCount)
		})

		t.Run("ListByNiche", func(t *testing.T) {
			creators, err := repo.ListByNiche(ctx, "fitness", 0, 0)
			require.NoError(t, err)
			require.Len(t, creators, 1)
			assert.Equal(t, "FitnessGuru_Mike", creators[0].Name)
		})

		t.Run("ListByNicheExcludesInactive", func(t *testing.T) {
			creators, err := repo.ListByNiche(ctx, "tech", 0, 0)
			require.NoError(t, err)
			require.Len(t, creators, 1)

			inactive := creators[0]
			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(inactive).Error)

			creators, err = repo.ListByNiche(ctx, "tech", 0, 0)
			require.NoError(t, err)
			assert.Empty(t, creators)
		})

		t.Run("ByUUID", func(t *testing.T) {
			all, err := repo.ByFilter(ctx, models.CreatorFilter{}, "", 0, 0)
			require.NoError(t, err)
			require.NotEmpty(t, all)

			found, err := repo.ByUUID(ctx, all[0].UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, all[0].ID, found.ID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNegotiationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewNegotiationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		creator, err := fixtures.CreateTestCreator("fitness", 300_000, 3200)
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(1, models.CampaignStageNegotiating, 10000)
		require.NoError(t, err)

		first, err := fixtures.CreateTestNegotiation(campaign.ID, creator.ID, models.NegotiationPhasePending, 3000)
		require.NoError(t, err)
		second, err := fixtures.CreateTestNegotiation(campaign.ID, creator.ID, models.NegotiationPhaseAccepted, 3100)
		require.NoError(t, err)

		t.Run("ByCampaignID", func(t *testing.T) {
			negotiations, err := repo.ByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			require.Len(t, negotiations, 2)
			// Ordered by creation time ascending
			assert.Equal(t, first.ID, negotiations[0].ID)
			assert.Equal(t, second.ID, negotiations[1].ID)
		})

		t.Run("Update", func(t *testing.T) {
			first.Phase = models.NegotiationPhaseCalling
			first.AttemptCount = 1
			require.NoError(t, repo.Update(ctx, *first))

			reloaded, err := repo.ByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, models.NegotiationPhaseCalling, reloaded.Phase)
			assert.Equal(t, 1, reloaded.AttemptCount)
		})

		t.Run("CountByPhase", func(t *testing.T) {
			phase := models.NegotiationPhaseAccepted
			count, err := repo.Count(ctx, models.NegotiationFilter{Phase: &phase})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestContractRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewContractRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, _, contract, err := fixtures.CreateCompletedCampaign(1, 10000)
		require.NoError(t, err)

		t.Run("ByCampaignID", func(t *testing.T) {
			contracts, err := repo.ByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			require.Len(t, contracts, 1)
			assert.Equal(t, contract.UUID, contracts[0].UUID)
			assert.Equal(t, 100, contracts[0].PaymentSchedule.TotalPercentage())
		})

		t.Run("ByUUID", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, contract.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, contract.ID, found.ID)
		})

		return nil
	})
	require.NoError(t, err)
}
