package orchestrator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfsbane9513/influencer-ai/models"
)

func TestCampaignStateStageTransitions(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	assert.Equal(t, models.CampaignStageStarting, state.Stage())

	assert.True(t, state.SetStage(models.CampaignStageDiscovery))
	assert.True(t, state.SetStage(models.CampaignStageNegotiating))
	assert.True(t, state.SetStage(models.CampaignStageContracting))
	assert.True(t, state.SetStage(models.CampaignStageCompleted))

	// Terminal stages freeze
	assert.False(t, state.SetStage(models.CampaignStageCancelled))
	assert.Equal(t, models.CampaignStageCompleted, state.Stage())
	assert.NotNil(t, state.Snapshot().FinishedAt)
}

func TestCampaignStateRejectsBackwardTransitions(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	require.True(t, state.SetStage(models.CampaignStageDiscovery))
	require.True(t, state.SetStage(models.CampaignStageNegotiating))

	assert.False(t, state.SetStage(models.CampaignStageDiscovery))
	assert.False(t, state.SetStage(models.CampaignStageStarting))
	assert.Equal(t, models.CampaignStageNegotiating, state.Stage())
}

func TestCampaignStateCancellableFromAnyNonTerminalStage(t *testing.T) {
	for _, stage := range []models.CampaignStage{
		models.CampaignStageDiscovery,
		models.CampaignStageNegotiating,
		models.CampaignStageContracting,
	} {
		state := NewCampaignState("task-1", 10_000)
		require.True(t, state.SetStage(models.CampaignStageDiscovery))
		if stage != models.CampaignStageDiscovery {
			require.True(t, state.SetStage(models.CampaignStageNegotiating))
		}
		if stage == models.CampaignStageContracting {
			require.True(t, state.SetStage(models.CampaignStageContracting))
		}

		assert.True(t, state.SetStage(models.CampaignStageCancelled), "from %s", stage)
	}
}

func TestCommitAcceptanceBudgetInvariant(t *testing.T) {
	state := NewCampaignState("task-1", 1000)
	creator := &models.Creator{ID: 1, Name: "a"}
	state.TrackNegotiation(1, creator, 600)
	state.TrackNegotiation(2, &models.Creator{ID: 2, Name: "b"}, 600)

	assert.True(t, state.CommitAcceptance(1, 600))
	assert.InDelta(t, 600, state.BudgetCommitted(), 1e-9)

	// Second acceptance would exceed the budget
	assert.False(t, state.CommitAcceptance(2, 600))
	assert.InDelta(t, 600, state.BudgetCommitted(), 1e-9)

	// A smaller rate still fits
	assert.True(t, state.CommitAcceptance(2, 400))
	assert.InDelta(t, 1000, state.BudgetCommitted(), 1e-9)
}

func TestCommitAcceptanceSerializedUnderConcurrency(t *testing.T) {
	state := NewCampaignState("task-1", 1000)
	for i := uint(1); i <= 10; i++ {
		state.TrackNegotiation(i, &models.Creator{ID: i}, 300)
	}

	var wg sync.WaitGroup
	committed := make(chan bool, 10)
	for i := uint(1); i <= 10; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			committed <- state.CommitAcceptance(id, 300)
		}(i)
	}
	wg.Wait()
	close(committed)

	accepted := 0
	for ok := range committed {
		if ok {
			accepted++
		}
	}

	// Only three 300s fit into 1000 no matter the interleaving
	assert.Equal(t, 3, accepted)
	assert.InDelta(t, 900, state.BudgetCommitted(), 1e-9)
	assert.LessOrEqual(t, state.BudgetCommitted(), 1000.0)
}

func TestSnapshotProgressMapping(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	assert.Equal(t, 5, state.Snapshot().Progress)

	require.True(t, state.SetStage(models.CampaignStageDiscovery))
	assert.Equal(t, 25, state.Snapshot().Progress)

	state.SetDiscoveryResult(4, 2*time.Minute)
	require.True(t, state.SetStage(models.CampaignStageNegotiating))
	assert.Equal(t, 40, state.Snapshot().Progress)

	state.MarkNegotiationCompleted()
	state.MarkNegotiationCompleted()
	assert.Equal(t, 55, state.Snapshot().Progress) // 40 + 30*2/4

	require.True(t, state.SetStage(models.CampaignStageContracting))
	assert.Equal(t, 85, state.Snapshot().Progress)

	require.True(t, state.SetStage(models.CampaignStageCompleted))
	assert.Equal(t, 100, state.Snapshot().Progress)
}

func TestSnapshotProgressFrozenOnFailure(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	require.True(t, state.SetStage(models.CampaignStageDiscovery))
	state.SetDiscoveryResult(2, 2*time.Minute)
	require.True(t, state.SetStage(models.CampaignStageNegotiating))
	state.MarkNegotiationCompleted()

	require.True(t, state.SetStage(models.CampaignStageFailed))
	assert.Equal(t, 55, state.Snapshot().Progress) // 40 + 30*1/2, frozen
}

func TestSnapshotEstimatedDuration(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	state.SetDiscoveryResult(3, 2*time.Minute)
	assert.Equal(t, 6, state.Snapshot().EstimatedDurationMinutes)
}

func TestSnapshotNegotiationOrderStable(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	state.TrackNegotiation(5, &models.Creator{ID: 50, Name: "first"}, 100)
	state.TrackNegotiation(2, &models.Creator{ID: 20, Name: "second"}, 200)
	state.TrackNegotiation(9, &models.Creator{ID: 90, Name: "third"}, 300)

	snap := state.Snapshot()
	require.Len(t, snap.Negotiations, 3)
	assert.Equal(t, "first", snap.Negotiations[0].CreatorName)
	assert.Equal(t, "second", snap.Negotiations[1].CreatorName)
	assert.Equal(t, "third", snap.Negotiations[2].CreatorName)

	// Duplicate tracking is a no-op
	state.TrackNegotiation(5, &models.Creator{ID: 50, Name: "dup"}, 100)
	assert.Len(t, state.Snapshot().Negotiations, 3)
}

func TestSnapshotIsACopy(t *testing.T) {
	state := NewCampaignState("task-1", 10_000)
	state.TrackNegotiation(1, &models.Creator{ID: 1, Name: "a"}, 100)

	snap := state.Snapshot()
	snap.Negotiations[0].Phase = models.NegotiationPhaseAccepted
	snap.BudgetCommitted = 999

	fresh := state.Snapshot()
	assert.Equal(t, models.NegotiationPhasePending, fresh.Negotiations[0].Phase)
	assert.InDelta(t, 0, fresh.BudgetCommitted, 1e-9)
}
