package orchestrator

import (
	"sync"
	"time"

	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// NegotiationSnapshot is the externally visible state of one negotiation
type NegotiationSnapshot struct {
	CreatorID   uint                    `json:"creator_id"`
	CreatorName string                  `json:"creator_name"`
	Phase       models.NegotiationPhase `json:"phase"`
	OfferedRate float64                 `json:"offered_rate"`
	FinalRate   *float64                `json:"final_rate,omitempty"`
	LastError   string                  `json:"last_error,omitempty"`
}

// CampaignSnapshot is a point-in-time view of a running campaign
type CampaignSnapshot struct {
	TaskID                   string                `json:"task_id"`
	Stage                    models.CampaignStage  `json:"stage"`
	Progress                 int                   `json:"progress"`
	CreatorsFound            int                   `json:"creators_found"`
	CompletedNegotiations    int                   `json:"completed_negotiations"`
	SuccessfulNegotiations   int                   `json:"successful_negotiations"`
	ContractsGenerated       int                   `json:"contracts_generated"`
	TotalBudget              float64               `json:"total_budget"`
	BudgetCommitted          float64               `json:"budget_committed"`
	EstimatedDurationMinutes int                   `json:"estimated_duration_minutes"`
	LastError                string                `json:"last_error,omitempty"`
	Negotiations             []NegotiationSnapshot `json:"negotiations"`
	StartedAt                time.Time             `json:"started_at"`
	FinishedAt               *time.Time            `json:"finished_at,omitempty"`
}

// CampaignState tracks a campaign's live progress in memory. All mutation
// goes through its methods; reads never block on running negotiations.
type CampaignState struct {
	mu sync.Mutex

	taskID                 string
	stage                  models.CampaignStage
	totalBudget            float64
	budgetCommitted        float64
	creatorsFound          int
	completedNegotiations  int
	successfulNegotiations int
	contractsGenerated     int
	estimatedMinutes       int
	lastError              string
	negotiations           map[uint]*NegotiationSnapshot
	order                  []uint
	startedAt              time.Time
	finishedAt             *time.Time
}

// NewCampaignState creates the tracking state for a freshly started campaign
func NewCampaignState(taskID string, totalBudget float64) *CampaignState {
	return &CampaignState{
		taskID:       taskID,
		stage:        models.CampaignStageStarting,
		totalBudget:  totalBudget,
		negotiations: make(map[uint]*NegotiationSnapshot),
		startedAt:    utils.UTCNow(),
	}
}

// SetStage moves the campaign to the given stage if the transition is valid.
// Terminal stages also freeze the finish time.
func (s *CampaignState) SetStage(stage models.CampaignStage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	probe := models.Campaign{Stage: s.stage}
	if !probe.CanTransitionTo(stage) {
		return false
	}

	s.stage = stage
	if stage.Terminal() {
		now := utils.UTCNow()
		s.finishedAt = &now
	}
	return true
}

// Stage returns the current stage
func (s *CampaignState) Stage() models.CampaignStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// SetDiscoveryResult records how many creators were selected and derives the
// duration estimate shown to clients.
func (s *CampaignState) SetDiscoveryResult(creatorsFound int, perCreator time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creatorsFound = creatorsFound
	s.estimatedMinutes = int(time.Duration(creatorsFound) * perCreator / time.Minute)
}

// TrackNegotiation registers a negotiation so snapshots include it from the
// moment the call queue picks it up.
func (s *CampaignState) TrackNegotiation(negotiationID uint, creator *models.Creator, offeredRate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.negotiations[negotiationID]; exists {
		return
	}
	s.negotiations[negotiationID] = &NegotiationSnapshot{
		CreatorID:   creator.ID,
		CreatorName: creator.Name,
		Phase:       models.NegotiationPhasePending,
		OfferedRate: offeredRate,
	}
	s.order = append(s.order, negotiationID)
}

// UpdateNegotiationPhase records a phase change for a tracked negotiation
func (s *CampaignState) UpdateNegotiationPhase(negotiationID uint, phase models.NegotiationPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.negotiations[negotiationID]; ok {
		snap.Phase = phase
	}
}

// CommitAcceptance atomically checks the budget invariant and records the
// accepted negotiation. It returns false when committing the rate would push
// the total past the campaign budget; the negotiation must then be rejected
// rather than accepted.
func (s *CampaignState) CommitAcceptance(negotiationID uint, finalRate float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.budgetCommitted+finalRate > s.totalBudget {
		return false
	}

	s.budgetCommitted += finalRate
	s.successfulNegotiations++
	if snap, ok := s.negotiations[negotiationID]; ok {
		snap.Phase = models.NegotiationPhaseAccepted
		snap.FinalRate = &finalRate
	}
	return true
}

// FinishNegotiation records a non-accepted terminal outcome
func (s *CampaignState) FinishNegotiation(negotiationID uint, phase models.NegotiationPhase, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.negotiations[negotiationID]; ok {
		snap.Phase = phase
		snap.LastError = lastError
	}
}

// MarkNegotiationCompleted bumps the completed counter once per negotiation
func (s *CampaignState) MarkNegotiationCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedNegotiations++
}

// AddContract bumps the generated contract counter
func (s *CampaignState) AddContract() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contractsGenerated++
}

// SetLastError records the most recent campaign-level error
func (s *CampaignState) SetLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// BudgetCommitted returns the committed budget total
func (s *CampaignState) BudgetCommitted() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetCommitted
}

// Snapshot returns a consistent copy of the campaign state
func (s *CampaignState) Snapshot() *CampaignSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	negotiations := make([]NegotiationSnapshot, 0, len(s.order))
	for _, id := range s.order {
		negotiations = append(negotiations, *s.negotiations[id])
	}

	probe := models.Campaign{
		Stage:                 s.stage,
		CreatorsFound:         s.creatorsFound,
		CompletedNegotiations: s.completedNegotiations,
	}

	return &CampaignSnapshot{
		TaskID:                   s.taskID,
		Stage:                    s.stage,
		Progress:                 probe.ProgressPercentage(),
		CreatorsFound:            s.creatorsFound,
		CompletedNegotiations:    s.completedNegotiations,
		SuccessfulNegotiations:   s.successfulNegotiations,
		ContractsGenerated:       s.contractsGenerated,
		TotalBudget:              s.totalBudget,
		BudgetCommitted:          s.budgetCommitted,
		EstimatedDurationMinutes: s.estimatedMinutes,
		LastError:                s.lastError,
		Negotiations:             negotiations,
		StartedAt:                s.startedAt,
		FinishedAt:               s.finishedAt,
	}
}
