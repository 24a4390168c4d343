package orchestrator

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfsbane9513/influencer-ai/app/services"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
)

// In-memory repositories for orchestrator tests

type memCampaignRepo struct {
	mu     sync.Mutex
	items  map[uint]models.Campaign
	nextID uint
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{items: make(map[uint]models.Campaign), nextID: 1}
}

func (r *memCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Campaign, 0)
	for _, c := range r.items {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (r *memCampaignRepo) Save(ctx context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if campaign.ID == 0 {
		campaign.ID = r.nextID
		r.nextID++
	}
	if campaign.UUID == uuid.Nil {
		campaign.UUID = uuid.New()
	}
	if campaign.TaskID == uuid.Nil {
		campaign.TaskID = uuid.New()
	}
	r.items[campaign.ID] = *campaign
	return nil
}

func (r *memCampaignRepo) SaveBatch(ctx context.Context, campaigns []*models.Campaign) error {
	for _, c := range campaigns {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *memCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memCampaignRepo) ByUUID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.UUID.String() == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memCampaignRepo) ByTaskID(ctx context.Context, taskID string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.TaskID.String() == taskID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memCampaignRepo) ByClientID(ctx context.Context, clientID uint, limit, offset int) ([]*models.Campaign, error) {
	return r.ByFilter(ctx, models.CampaignFilter{}, "", limit, offset)
}

func (r *memCampaignRepo) Update(ctx context.Context, campaign models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[campaign.ID] = campaign
	return nil
}

func (r *memCampaignRepo) UpdateStage(ctx context.Context, id uint, stage models.CampaignStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[id]; ok {
		c.Stage = stage
		r.items[id] = c
	}
	return nil
}

type memCreatorRepo struct {
	mu       sync.Mutex
	creators []*models.Creator
}

func (r *memCreatorRepo) ByID(ctx context.Context, id uint) (*models.Creator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.creators {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCreatorRepo) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Creator(nil), r.creators...), nil
}

func (r *memCreatorRepo) Save(ctx context.Context, creator *models.Creator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators = append(r.creators, creator)
	return nil
}

func (r *memCreatorRepo) SaveBatch(ctx context.Context, creators []*models.Creator) error {
	for _, c := range creators {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *memCreatorRepo) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.creators)), nil
}

func (r *memCreatorRepo) ByUUID(ctx context.Context, id string) (*models.Creator, error) {
	return nil, nil
}

func (r *memCreatorRepo) ListActive(ctx context.Context, limit, offset int) ([]*models.Creator, error) {
	return r.ByFilter(ctx, models.CreatorFilter{}, "", limit, offset)
}

func (r *memCreatorRepo) ListByNiche(ctx context.Context, niche string, limit, offset int) ([]*models.Creator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Creator, 0)
	for _, c := range r.creators {
		if c.Niche == niche {
			out = append(out, c)
		}
	}
	return out, nil
}

type memNegotiationRepo struct {
	mu     sync.Mutex
	items  map[uint]models.Negotiation
	nextID uint
}

func newMemNegotiationRepo() *memNegotiationRepo {
	return &memNegotiationRepo{items: make(map[uint]models.Negotiation), nextID: 1}
}

func (r *memNegotiationRepo) ByID(ctx context.Context, id uint) (*models.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.items[id]; ok {
		return &n, nil
	}
	return nil, nil
}

func (r *memNegotiationRepo) ByFilter(ctx context.Context, filter models.NegotiationFilter, orderBy string, limit, offset int) ([]*models.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Negotiation, 0)
	for _, n := range r.items {
		n := n
		out = append(out, &n)
	}
	return out, nil
}

func (r *memNegotiationRepo) Save(ctx context.Context, negotiation *models.Negotiation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if negotiation.ID == 0 {
		negotiation.ID = r.nextID
		r.nextID++
	}
	r.items[negotiation.ID] = *negotiation
	return nil
}

func (r *memNegotiationRepo) SaveBatch(ctx context.Context, negotiations []*models.Negotiation) error {
	for _, n := range negotiations {
		if err := r.Save(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *memNegotiationRepo) Count(ctx context.Context, filter models.NegotiationFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memNegotiationRepo) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Negotiation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Negotiation, 0)
	for _, n := range r.items {
		if n.CampaignID == campaignID {
			n := n
			out = append(out, &n)
		}
	}
	return out, nil
}

func (r *memNegotiationRepo) Update(ctx context.Context, negotiation models.Negotiation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[negotiation.ID] = negotiation
	return nil
}

type memContractRepo struct {
	mu     sync.Mutex
	items  map[uint]models.Contract
	nextID uint
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{items: make(map[uint]models.Contract), nextID: 1}
}

func (r *memContractRepo) ByID(ctx context.Context, id uint) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.items[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memContractRepo) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Contract, 0)
	for _, c := range r.items {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (r *memContractRepo) Save(ctx context.Context, contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contract.ID == 0 {
		contract.ID = r.nextID
		r.nextID++
	}
	if contract.UUID == uuid.Nil {
		contract.UUID = uuid.New()
	}
	r.items[contract.ID] = *contract
	return nil
}

func (r *memContractRepo) SaveBatch(ctx context.Context, contracts []*models.Contract) error {
	for _, c := range contracts {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *memContractRepo) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *memContractRepo) ByUUID(ctx context.Context, id string) (*models.Contract, error) {
	return nil, nil
}

func (r *memContractRepo) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Contract, 0)
	for _, c := range r.items {
		if c.CampaignID == campaignID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

// Test harness

type orchestratorFixture struct {
	orchestrator  CampaignOrchestrator
	campaignRepo  *memCampaignRepo
	creatorRepo   *memCreatorRepo
	negoRepo      *memNegotiationRepo
	contractRepo  *memContractRepo
	voice         *services.MockVoiceService
	emailProvider *services.MockEmailProvider
}

func orchestratorTestConfig(t *testing.T) *config.ProductionConfig {
	t.Helper()

	return &config.ProductionConfig{
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
		Logging: config.LoggingConfig{
			OrchestratorLogPath: filepath.Join(t.TempDir(), "orchestrator.log"),
		},
	}
}

func newOrchestratorFixture(t *testing.T, creators []*models.Creator) *orchestratorFixture {
	t.Helper()
	return newOrchestratorFixtureWithConfig(t, orchestratorTestConfig(t), creators)
}

func newOrchestratorFixtureWithConfig(t *testing.T, cfg *config.ProductionConfig, creators []*models.Creator) *orchestratorFixture {
	t.Helper()

	campaignRepo := newMemCampaignRepo()
	creatorRepo := &memCreatorRepo{creators: creators}
	negoRepo := newMemNegotiationRepo()
	contractRepo := newMemContractRepo()

	voice := services.NewMockVoiceService()
	emailProvider := services.NewMockEmailProvider()
	embedder := &stubEmbedder{fallbackDim: 8}

	orch := NewCampaignOrchestrator(
		cfg,
		campaignRepo,
		creatorRepo,
		negoRepo,
		contractRepo,
		voice,
		embedder,
		services.NewEmailService(emailProvider),
		nil,
	)

	return &orchestratorFixture{
		orchestrator:  orch,
		campaignRepo:  campaignRepo,
		creatorRepo:   creatorRepo,
		negoRepo:      negoRepo,
		contractRepo:  contractRepo,
		voice:         voice,
		emailProvider: emailProvider,
	}
}

func (f *orchestratorFixture) startCampaign(t *testing.T, budget float64) *models.Campaign {
	t.Helper()

	campaign := &models.Campaign{
		Stage: models.CampaignStageStarting,
		Brief: models.CampaignBrief{
			ProductName:  "ProteinMax",
			BrandName:    "FitFuel",
			ProductNiche: "fitness",
			TotalBudget:  budget,
		},
	}
	require.NoError(t, f.campaignRepo.Save(context.Background(), campaign))
	require.NoError(t, f.orchestrator.StartCampaign(context.Background(), campaign))
	return campaign
}

func rosterCreator(id uint, name, phone string, rate float64) *models.Creator {
	return &models.Creator{
		ID:             id,
		Name:           name,
		Platform:       "instagram",
		Niche:          "fitness",
		FollowerCount:  50_000,
		EngagementRate: 0.05,
		TypicalRate:    rate,
		Phone:          phone,
		Email:          name + "@example.com",
	}
}

func TestOrchestratorHappyPath(t *testing.T) {
	// All three creators accept (phone suffixes 7 and 8)
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000107", 1000),
		rosterCreator(2, "bob", "+15550000108", 1000),
		rosterCreator(3, "carol", "+15550000117", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, snap.Stage)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, 3, snap.CreatorsFound)
	assert.Equal(t, 3, snap.CompletedNegotiations)
	assert.Equal(t, 3, snap.SuccessfulNegotiations)
	assert.Equal(t, 3, snap.ContractsGenerated)
	assert.Equal(t, 6, snap.EstimatedDurationMinutes)

	// Each accepted at 95% of the 900 initial offer
	assert.InDelta(t, 3*855, snap.BudgetCommitted, 1e-6)
	assert.LessOrEqual(t, snap.BudgetCommitted, snap.TotalBudget)

	// Contracts persisted and mailed
	contracts, err := f.contractRepo.ByCampaignID(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Len(t, contracts, 3)
	assert.Len(t, f.emailProvider.GetSentEmails(), 3)

	// Final state mirrored to the database
	stored, err := f.campaignRepo.ByTaskID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, stored.Stage)
	assert.Equal(t, 3, stored.SuccessfulNegotiations)
	assert.NotNil(t, stored.FinishedAt)
}

func TestOrchestratorMixedOutcomes(t *testing.T) {
	// accept / decline / needs-followup
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000107", 1000),
		rosterCreator(2, "bob", "+15550000102", 1000),
		rosterCreator(3, "carol", "+15550000104", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, snap.Stage)
	assert.Equal(t, 3, snap.CompletedNegotiations)
	assert.Equal(t, 1, snap.SuccessfulNegotiations)
	assert.Equal(t, 1, snap.ContractsGenerated)
	assert.InDelta(t, 855, snap.BudgetCommitted, 1e-6)

	phases := make(map[models.NegotiationPhase]int)
	for _, n := range snap.Negotiations {
		phases[n.Phase]++
	}
	assert.Equal(t, 1, phases[models.NegotiationPhaseAccepted])
	assert.Equal(t, 1, phases[models.NegotiationPhaseDeclined])
	assert.Equal(t, 1, phases[models.NegotiationPhaseNeedsFollowup])

	// Terminal phases persisted per negotiation
	negotiations, err := f.negoRepo.ByCampaignID(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Len(t, negotiations, 3)
	for _, n := range negotiations {
		assert.True(t, n.Phase.Terminal(), "negotiation %d phase %s", n.ID, n.Phase)
	}
}

func TestOrchestratorBudgetInvariant(t *testing.T) {
	// Both creators accept at 855 each but only one fits into 1000
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000107", 1000),
		rosterCreator(2, "bob", "+15550000108", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 1000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, snap.Stage)
	assert.Equal(t, 1, snap.SuccessfulNegotiations)
	assert.Equal(t, 1, snap.ContractsGenerated)
	assert.LessOrEqual(t, snap.BudgetCommitted, snap.TotalBudget)

	// The deal that no longer fit was rejected with a budget error
	phases := make(map[models.NegotiationPhase]int)
	var rejected *NegotiationSnapshot
	for i, n := range snap.Negotiations {
		phases[n.Phase]++
		if n.Phase == models.NegotiationPhaseError {
			rejected = &snap.Negotiations[i]
		}
	}
	assert.Equal(t, 1, phases[models.NegotiationPhaseAccepted])
	assert.Equal(t, 1, phases[models.NegotiationPhaseError])
	require.NotNil(t, rejected)
	assert.Contains(t, rejected.LastError, "budget")
	assert.Nil(t, rejected.FinalRate)

	// The rejection is persisted with its cause
	negotiations, err := f.negoRepo.ByCampaignID(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Len(t, negotiations, 2)
	for _, n := range negotiations {
		if n.Phase == models.NegotiationPhaseError {
			require.NotNil(t, n.LastError)
			assert.Contains(t, *n.LastError, "budget")
			assert.Nil(t, n.FinalRate)
		}
	}
}

func TestOrchestratorEvictsFinishedCampaigns(t *testing.T) {
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000107", 1000),
	}
	cfg := orchestratorTestConfig(t)
	cfg.Orchestrator.RetainFinishedFor = 20 * time.Millisecond
	f := newOrchestratorFixtureWithConfig(t, cfg, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	// The in-memory entry goes away once the retention window passes
	deadline := time.Now().Add(2 * time.Second)
	for f.orchestrator.Running(taskID) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.False(t, f.orchestrator.Running(taskID))

	// Status reads still work through the persisted record
	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, snap.Stage)
	assert.Equal(t, 1, snap.SuccessfulNegotiations)
}

func TestOrchestratorPartialFailureIsolation(t *testing.T) {
	// One creator never answers (times out), the others accept
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000107", 1000),
		rosterCreator(2, "bob", "+15550000109", 1000),
		rosterCreator(3, "carol", "+15550000108", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 8*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCompleted, snap.Stage)
	assert.Equal(t, 3, snap.CompletedNegotiations)
	assert.Equal(t, 2, snap.SuccessfulNegotiations)

	phases := make(map[models.NegotiationPhase]int)
	for _, n := range snap.Negotiations {
		phases[n.Phase]++
	}
	assert.Equal(t, 2, phases[models.NegotiationPhaseAccepted])
	assert.Equal(t, 1, phases[models.NegotiationPhaseTimedOut])
}

func TestOrchestratorInsufficientCandidates(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageFailed, snap.Stage)
	assert.NotEmpty(t, snap.LastError)

	stored, err := f.campaignRepo.ByTaskID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageFailed, stored.Stage)
	require.NotNil(t, stored.LastError)
}

func TestOrchestratorCancellation(t *testing.T) {
	// A creator that never answers keeps the campaign in negotiating until
	// the cancel arrives.
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000109", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()

	// Wait until the negotiation is in flight
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
		require.NoError(t, err)
		if snap.Stage == models.CampaignStageNegotiating {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.NoError(t, f.orchestrator.Cancel(context.Background(), taskID))
	require.True(t, f.orchestrator.WaitForCompletion(taskID, 5*time.Second))

	snap, err := f.orchestrator.Snapshot(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStageCancelled, snap.Stage)
	assert.NotNil(t, snap.FinishedAt)

	// Cancelling a finished campaign fails
	assert.ErrorIs(t, f.orchestrator.Cancel(context.Background(), taskID), ErrCampaignNotCancellable)
}

func TestOrchestratorSnapshotUnknownTask(t *testing.T) {
	f := newOrchestratorFixture(t, nil)

	_, err := f.orchestrator.Snapshot(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestOrchestratorRejectsDuplicateStart(t *testing.T) {
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000109", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	assert.Error(t, f.orchestrator.StartCampaign(context.Background(), campaign))

	require.NoError(t, f.orchestrator.Cancel(context.Background(), campaign.TaskID.String()))
	f.orchestrator.WaitForCompletion(campaign.TaskID.String(), 5*time.Second)
}

func TestOrchestratorSnapshotNonBlocking(t *testing.T) {
	creators := []*models.Creator{
		rosterCreator(1, "alice", "+15550000109", 1000),
	}
	f := newOrchestratorFixture(t, creators)

	campaign := f.startCampaign(t, 10_000)
	taskID := campaign.TaskID.String()

	// Snapshots return promptly while the negotiation hangs
	for i := 0; i < 10; i++ {
		start := time.Now()
		_, err := f.orchestrator.Snapshot(context.Background(), taskID)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
		time.Sleep(2 * time.Millisecond)
	}

	require.NoError(t, f.orchestrator.Cancel(context.Background(), taskID))
	f.orchestrator.WaitForCompletion(taskID, 5*time.Second)
}
