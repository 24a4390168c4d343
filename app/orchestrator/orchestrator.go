package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfsbane9513/influencer-ai/app/services"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// CampaignOrchestrator runs campaigns in the background and exposes their
// live state
type CampaignOrchestrator interface {
	StartCampaign(ctx context.Context, campaign *models.Campaign) error
	Snapshot(ctx context.Context, taskID string) (*CampaignSnapshot, error)
	Cancel(ctx context.Context, taskID string) error
	Running(taskID string) bool
	WaitForCompletion(taskID string, timeout time.Duration) bool
}

// CampaignOrchestratorImpl implements CampaignOrchestrator
type CampaignOrchestratorImpl struct {
	config    *config.ProductionConfig
	matcher   Matcher
	pricing   PricingAdvisor
	engine    NegotiationEngine
	contracts ContractGenerator
	email     services.EmailService

	campaignRepo    repository.CampaignRepository
	creatorRepo     repository.CreatorRepository
	negotiationRepo repository.NegotiationRepository
	contractRepo    repository.ContractRepository

	rc     *redis.Client
	logger *log.Logger

	mu        sync.RWMutex
	campaigns map[string]*runningCampaign
}

type runningCampaign struct {
	state  *CampaignState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCampaignOrchestrator wires the orchestrator and its internal components
func NewCampaignOrchestrator(
	cfg *config.ProductionConfig,
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	negotiationRepo repository.NegotiationRepository,
	contractRepo repository.ContractRepository,
	voice services.VoiceService,
	embedder services.EmbeddingService,
	email services.EmailService,
	rc *redis.Client,
) CampaignOrchestrator {
	logger := newOrchestratorLogger(&cfg.Logging)
	monitor := NewConversationMonitor(voice, &cfg.Negotiation, logger)

	return &CampaignOrchestratorImpl{
		config:          cfg,
		matcher:         NewMatcher(embedder, &cfg.Matcher),
		pricing:         NewPricingAdvisor(&cfg.Pricing),
		engine:          NewNegotiationEngine(voice, monitor, &cfg.Negotiation, logger),
		contracts:       NewContractGenerator(),
		email:           email,
		campaignRepo:    campaignRepo,
		creatorRepo:     creatorRepo,
		negotiationRepo: negotiationRepo,
		contractRepo:    contractRepo,
		rc:              rc,
		logger:          logger,
		campaigns:       make(map[string]*runningCampaign),
	}
}

// StartCampaign registers the campaign and launches its workflow in the
// background. The campaign record must already be persisted.
func (o *CampaignOrchestratorImpl) StartCampaign(ctx context.Context, campaign *models.Campaign) error {
	taskID := campaign.TaskID.String()

	o.mu.Lock()
	if _, exists := o.campaigns[taskID]; exists {
		o.mu.Unlock()
		return fmt.Errorf("campaign %s is already running", taskID)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), o.config.Orchestrator.CampaignDeadline)
	rc := &runningCampaign{
		state:  NewCampaignState(taskID, campaign.Brief.TotalBudget),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	o.campaigns[taskID] = rc
	o.mu.Unlock()

	campaignsStarted.Inc()
	activeCampaigns.Inc()

	go o.run(runCtx, campaign, rc)

	return nil
}

// Snapshot returns the live state of a campaign. Reads go to in-process state
// first, then the redis snapshot cache, then the database.
func (o *CampaignOrchestratorImpl) Snapshot(ctx context.Context, taskID string) (*CampaignSnapshot, error) {
	o.mu.RLock()
	rc, ok := o.campaigns[taskID]
	o.mu.RUnlock()
	if ok {
		return rc.state.Snapshot(), nil
	}

	if snap := o.cachedSnapshot(ctx, taskID); snap != nil {
		return snap, nil
	}

	campaign, err := o.campaignRepo.ByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	return o.snapshotFromRecord(ctx, campaign)
}

// Cancel stops a running campaign. In-flight negotiations are interrupted and
// the campaign lands in the cancelled stage.
func (o *CampaignOrchestratorImpl) Cancel(ctx context.Context, taskID string) error {
	o.mu.RLock()
	rc, ok := o.campaigns[taskID]
	o.mu.RUnlock()

	if !ok {
		campaign, err := o.campaignRepo.ByTaskID(ctx, taskID)
		if err != nil {
			return err
		}
		if campaign == nil {
			return ErrCampaignNotFound
		}
		return ErrCampaignNotCancellable
	}

	if rc.state.Stage().Terminal() {
		return ErrCampaignNotCancellable
	}

	o.logger.Printf("campaign %s: cancellation requested", taskID)
	rc.cancel()
	return nil
}

// Running reports whether the campaign's workflow is active in this process
func (o *CampaignOrchestratorImpl) Running(taskID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.campaigns[taskID]
	return ok
}

// WaitForCompletion blocks until the campaign's workflow goroutine exits or
// the timeout passes. Unknown task IDs return immediately.
func (o *CampaignOrchestratorImpl) WaitForCompletion(taskID string, timeout time.Duration) bool {
	o.mu.RLock()
	rc, ok := o.campaigns[taskID]
	o.mu.RUnlock()
	if !ok {
		return true
	}

	select {
	case <-rc.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// run executes the full campaign workflow: discovery, concurrent
// negotiations, contracting, completion.
func (o *CampaignOrchestratorImpl) run(ctx context.Context, campaign *models.Campaign, rc *runningCampaign) {
	defer close(rc.done)
	defer activeCampaigns.Dec()
	defer rc.cancel()

	taskID := campaign.TaskID.String()
	defer o.evictAfter(taskID)
	o.logger.Printf("campaign %s: starting (budget %.2f, niche %s)", taskID, campaign.Brief.TotalBudget, campaign.Brief.ProductNiche)

	o.setStage(ctx, campaign, rc.state, models.CampaignStageDiscovery)

	ranked, err := o.discover(ctx, campaign)
	if err != nil {
		o.failCampaign(ctx, campaign, rc.state, err)
		return
	}

	rc.state.SetDiscoveryResult(len(ranked), o.config.Orchestrator.EstimatePerCreator)
	campaign.CreatorsFound = len(ranked)
	o.logger.Printf("campaign %s: discovery selected %d creators", taskID, len(ranked))

	o.setStage(ctx, campaign, rc.state, models.CampaignStageNegotiating)

	negotiations := o.createNegotiations(ctx, campaign, rc.state, ranked)
	accepted := o.negotiateAll(ctx, campaign, rc.state, ranked, negotiations)

	if ctx.Err() != nil {
		o.cancelCampaign(ctx, campaign, rc.state)
		return
	}

	if len(accepted) > 0 {
		o.setStage(ctx, campaign, rc.state, models.CampaignStageContracting)
		o.generateContracts(ctx, campaign, rc.state, accepted)
	}

	o.setStage(ctx, campaign, rc.state, models.CampaignStageCompleted)
	o.persistFinal(ctx, campaign, rc.state)
	campaignsFinished.WithLabelValues(models.CampaignStageCompleted.String()).Inc()
	o.logger.Printf("campaign %s: completed (%d/%d accepted, %.2f committed)",
		taskID, rc.state.Snapshot().SuccessfulNegotiations, len(ranked), rc.state.BudgetCommitted())
}

// evictAfter drops the finished campaign from the in-memory table once the
// retention window passes. Status reads after that go through the snapshot
// cache or the persisted record.
func (o *CampaignOrchestratorImpl) evictAfter(taskID string) {
	time.AfterFunc(o.config.Orchestrator.RetainFinishedFor, func() {
		o.mu.Lock()
		delete(o.campaigns, taskID)
		o.mu.Unlock()
	})
}

// discover loads roster creators and ranks them against the brief. Niche
// lookup is tried first; an empty niche roster falls back to the full roster
// so cross-niche matches still surface.
func (o *CampaignOrchestratorImpl) discover(ctx context.Context, campaign *models.Campaign) ([]ScoredCreator, error) {
	creators, err := o.creatorRepo.ListByNiche(ctx, campaign.Brief.ProductNiche, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load creators: %w", err)
	}
	if len(creators) == 0 {
		creators, err = o.creatorRepo.ListActive(ctx, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to load creators: %w", err)
		}
	}

	return o.matcher.RankCreators(ctx, &campaign.Brief, creators, o.config.Matcher.DefaultTopN)
}

// createNegotiations persists one pending negotiation per selected creator
// and registers it in the live state.
func (o *CampaignOrchestratorImpl) createNegotiations(ctx context.Context, campaign *models.Campaign, state *CampaignState, ranked []ScoredCreator) []*models.Negotiation {
	negotiations := make([]*models.Negotiation, 0, len(ranked))
	for _, sc := range ranked {
		headroom := campaign.Brief.TotalBudget - state.BudgetCommitted()
		rates := o.pricing.SuggestRate(sc.Creator, headroom)

		deadline := utils.UTCNowAdd(o.config.Negotiation.MaxCallDuration)
		negotiation := &models.Negotiation{
			CampaignID:  campaign.ID,
			CreatorID:   sc.Creator.ID,
			Phase:       models.NegotiationPhasePending,
			OfferedRate: rates.Initial,
			MaxRate:     rates.Max,
			DeadlineAt:  &deadline,
		}

		if err := o.negotiationRepo.Save(ctx, negotiation); err != nil {
			o.logger.Printf("campaign %s: failed to persist negotiation for creator %d: %v",
				campaign.TaskID, sc.Creator.ID, err)
			continue
		}

		state.TrackNegotiation(negotiation.ID, sc.Creator, rates.Initial)
		negotiations = append(negotiations, negotiation)
	}
	return negotiations
}

// negotiateAll runs the negotiations concurrently under the configured cap
// and returns the accepted ones paired with their creators. A failure in one
// negotiation never aborts the others.
func (o *CampaignOrchestratorImpl) negotiateAll(ctx context.Context, campaign *models.Campaign, state *CampaignState, ranked []ScoredCreator, negotiations []*models.Negotiation) []acceptedNegotiation {
	creatorsByID := make(map[uint]*models.Creator, len(ranked))
	for _, sc := range ranked {
		creatorsByID[sc.Creator.ID] = sc.Creator
	}

	sem := make(chan struct{}, o.config.Orchestrator.MaxConcurrentNegotiations)
	results := make(chan acceptedNegotiation, len(negotiations))

	var wg sync.WaitGroup
	for _, negotiation := range negotiations {
		wg.Add(1)
		go func(n *models.Negotiation) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			creator := creatorsByID[n.CreatorID]
			if accepted := o.negotiateOne(ctx, campaign, state, creator, n); accepted != nil {
				results <- *accepted
			}
		}(negotiation)
	}
	wg.Wait()
	close(results)

	accepted := make([]acceptedNegotiation, 0, len(negotiations))
	for a := range results {
		accepted = append(accepted, a)
	}
	return accepted
}

type acceptedNegotiation struct {
	negotiation  *models.Negotiation
	creator      *models.Creator
	deliverables []string
}

// negotiateOne runs a single negotiation end to end and persists its terminal
// state. Returns the acceptance when the deal lands within budget.
func (o *CampaignOrchestratorImpl) negotiateOne(ctx context.Context, campaign *models.Campaign, state *CampaignState, creator *models.Creator, negotiation *models.Negotiation) *acceptedNegotiation {
	started := utils.UTCNow()
	activeNegotiations.Inc()
	defer activeNegotiations.Dec()
	defer func() {
		negotiationDuration.Observe(utils.UTCNow().Sub(started).Seconds())
		state.MarkNegotiationCompleted()
	}()

	state.UpdateNegotiationPhase(negotiation.ID, models.NegotiationPhaseCalling)
	result := o.engine.Run(ctx, campaign, creator, negotiation)

	var accepted *acceptedNegotiation
	if result.Phase == models.NegotiationPhaseAccepted {
		if state.CommitAcceptance(negotiation.ID, *result.FinalRate) {
			budgetCommitted.Add(*result.FinalRate)
			accepted = &acceptedNegotiation{
				negotiation:  negotiation,
				creator:      creator,
				deliverables: result.Deliverables,
			}
		} else {
			// The budget check is serialized; a concurrent acceptance got
			// there first, so this deal is rejected as over budget.
			o.logger.Printf("negotiation %d: accepted rate %.2f no longer fits budget, rejecting",
				negotiation.ID, *result.FinalRate)
			msg := ErrBudgetExceeded.Error()
			negotiation.Phase = models.NegotiationPhaseError
			negotiation.FinalRate = nil
			negotiation.LastError = &msg
			result.Phase = models.NegotiationPhaseError
			state.FinishNegotiation(negotiation.ID, result.Phase, msg)
		}
	} else {
		errMsg := ""
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		state.FinishNegotiation(negotiation.ID, result.Phase, errMsg)
	}

	negotiationOutcomes.WithLabelValues(result.Phase.String()).Inc()

	if err := o.negotiationRepo.Update(ctx, *negotiation); err != nil {
		o.logger.Printf("negotiation %d: failed to persist terminal state: %v", negotiation.ID, err)
	}

	o.publishSnapshot(ctx, campaign.TaskID.String(), state)
	return accepted
}

// generateContracts builds and persists a contract per accepted negotiation
// and mails the summary to the creator.
func (o *CampaignOrchestratorImpl) generateContracts(ctx context.Context, campaign *models.Campaign, state *CampaignState, accepted []acceptedNegotiation) {
	for _, a := range accepted {
		contract := o.contracts.Generate(campaign, a.negotiation, a.creator, a.deliverables)
		if err := o.contractRepo.Save(ctx, contract); err != nil {
			o.logger.Printf("campaign %s: failed to persist contract for negotiation %d: %v",
				campaign.TaskID, a.negotiation.ID, err)
			continue
		}

		state.AddContract()
		o.logger.Printf("campaign %s: contract %s generated for creator %d (%.2f %s)",
			campaign.TaskID, contract.UUID, a.creator.ID, contract.AgreedRate, contract.Currency)

		if a.creator.Email != "" {
			subject := fmt.Sprintf("Contract for %s campaign", campaign.Brief.ProductName)
			body := contractSummary(campaign, contract, a.creator)
			if err := o.email.SendEmail(a.creator.Email, subject, body); err != nil {
				o.logger.Printf("campaign %s: failed to email contract to creator %d: %v",
					campaign.TaskID, a.creator.ID, err)
			}
		}
	}
}

// setStage advances the live state and mirrors the change to the database
// and snapshot cache.
func (o *CampaignOrchestratorImpl) setStage(ctx context.Context, campaign *models.Campaign, state *CampaignState, stage models.CampaignStage) {
	if !state.SetStage(stage) {
		return
	}
	campaign.Stage = stage

	if err := o.campaignRepo.UpdateStage(ctx, campaign.ID, stage); err != nil {
		o.logger.Printf("campaign %s: failed to persist stage %s: %v", campaign.TaskID, stage, err)
	}
	o.publishSnapshot(ctx, campaign.TaskID.String(), state)
}

func (o *CampaignOrchestratorImpl) failCampaign(ctx context.Context, campaign *models.Campaign, state *CampaignState, cause error) {
	o.logger.Printf("campaign %s: failed: %v", campaign.TaskID, cause)

	state.SetLastError(cause.Error())
	msg := cause.Error()
	campaign.LastError = &msg

	o.setStage(ctx, campaign, state, models.CampaignStageFailed)
	o.persistFinal(ctx, campaign, state)
	campaignsFinished.WithLabelValues(models.CampaignStageFailed.String()).Inc()
}

func (o *CampaignOrchestratorImpl) cancelCampaign(ctx context.Context, campaign *models.Campaign, state *CampaignState) {
	o.logger.Printf("campaign %s: cancelled", campaign.TaskID)

	o.setStage(ctx, campaign, state, models.CampaignStageCancelled)
	o.persistFinal(ctx, campaign, state)
	campaignsFinished.WithLabelValues(models.CampaignStageCancelled.String()).Inc()
}

// persistFinal writes the campaign's final counters. The run context may
// already be cancelled or past its deadline, so persistence uses a fresh
// short-lived context.
func (o *CampaignOrchestratorImpl) persistFinal(ctx context.Context, campaign *models.Campaign, state *CampaignState) {
	snap := state.Snapshot()

	campaign.CreatorsFound = snap.CreatorsFound
	campaign.CompletedNegotiations = snap.CompletedNegotiations
	campaign.SuccessfulNegotiations = snap.SuccessfulNegotiations
	campaign.ContractsGenerated = snap.ContractsGenerated
	campaign.BudgetCommitted = snap.BudgetCommitted
	campaign.FinishedAt = snap.FinishedAt

	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := o.campaignRepo.Update(persistCtx, *campaign); err != nil {
		o.logger.Printf("campaign %s: failed to persist final state: %v", campaign.TaskID, err)
	}
	o.publishSnapshot(persistCtx, campaign.TaskID.String(), state)
}

// publishSnapshot mirrors the live snapshot into redis so status reads work
// across processes.
func (o *CampaignOrchestratorImpl) publishSnapshot(ctx context.Context, taskID string, state *CampaignState) {
	if o.rc == nil || !o.config.Cache.Enabled {
		return
	}

	snap := state.Snapshot()
	bs, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = o.rc.Set(ctx, o.snapshotKey(taskID), bs, o.config.Orchestrator.SnapshotCacheTTL).Err()
}

func (o *CampaignOrchestratorImpl) cachedSnapshot(ctx context.Context, taskID string) *CampaignSnapshot {
	if o.rc == nil || !o.config.Cache.Enabled {
		return nil
	}

	bs, err := o.rc.Get(ctx, o.snapshotKey(taskID)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil
	}

	var snap CampaignSnapshot
	if err := json.Unmarshal(bs, &snap); err != nil {
		return nil
	}
	return &snap
}

func (o *CampaignOrchestratorImpl) snapshotKey(taskID string) string {
	prefix := o.config.Cache.RedisPrefix
	if prefix == "" {
		prefix = "influencer-ai"
	}
	return fmt.Sprintf("%s:campaign:snapshot:%s", prefix, taskID)
}

// snapshotFromRecord rebuilds a snapshot from the persisted campaign when no
// live state exists (after restart or on another instance).
func (o *CampaignOrchestratorImpl) snapshotFromRecord(ctx context.Context, campaign *models.Campaign) (*CampaignSnapshot, error) {
	full, err := o.campaignRepo.ByID(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, ErrCampaignNotFound
	}

	negotiations := make([]NegotiationSnapshot, 0, len(full.Negotiations))
	for _, n := range full.Negotiations {
		snap := NegotiationSnapshot{
			CreatorID:   n.CreatorID,
			Phase:       n.Phase,
			OfferedRate: n.OfferedRate,
			FinalRate:   n.FinalRate,
		}
		if n.LastError != nil {
			snap.LastError = *n.LastError
		}
		negotiations = append(negotiations, snap)
	}

	lastError := ""
	if full.LastError != nil {
		lastError = *full.LastError
	}

	return &CampaignSnapshot{
		TaskID:                   full.TaskID.String(),
		Stage:                    full.Stage,
		Progress:                 full.ProgressPercentage(),
		CreatorsFound:            full.CreatorsFound,
		CompletedNegotiations:    full.CompletedNegotiations,
		SuccessfulNegotiations:   full.SuccessfulNegotiations,
		ContractsGenerated:       full.ContractsGenerated,
		TotalBudget:              full.Brief.TotalBudget,
		BudgetCommitted:          full.BudgetCommitted,
		EstimatedDurationMinutes: int(time.Duration(full.CreatorsFound) * o.config.Orchestrator.EstimatePerCreator / time.Minute),
		LastError:                lastError,
		Negotiations:             negotiations,
		StartedAt:                full.CreatedAt,
		FinishedAt:               full.FinishedAt,
	}, nil
}

// contractSummary renders the plain-text contract email body
func contractSummary(campaign *models.Campaign, contract *models.Contract, creator *models.Creator) string {
	body := fmt.Sprintf("Hi %s,\n\nYour contract for the %s campaign by %s is ready.\n\nAgreed rate: %.2f %s\nDelivery window: %d days\nDeliverables:\n",
		creator.Name, campaign.Brief.ProductName, campaign.Brief.BrandName,
		contract.AgreedRate, contract.Currency, contract.DeliveryDays)
	for _, d := range contract.Deliverables {
		body += fmt.Sprintf("  - %s\n", d)
	}
	body += "\nPayment schedule:\n"
	for _, m := range contract.PaymentSchedule {
		body += fmt.Sprintf("  - %s: %d%% (%.2f %s)\n", m.Stage, m.Percentage, m.Amount, contract.Currency)
	}
	return body
}
