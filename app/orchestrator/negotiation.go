package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wolfsbane9513/influencer-ai/app/services"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// NegotiationResult is the outcome of a single creator negotiation
type NegotiationResult struct {
	Phase         models.NegotiationPhase
	FinalRate     *float64
	Deliverables  []string
	TranscriptRef *string
	Err           error
}

// NegotiationEngine drives one negotiation through its phase machine:
// pending -> calling -> monitoring -> terminal outcome, with retried call
// initiation on transient provider failures.
type NegotiationEngine interface {
	Run(ctx context.Context, campaign *models.Campaign, creator *models.Creator, negotiation *models.Negotiation) NegotiationResult
}

// NegotiationEngineImpl implements NegotiationEngine
type NegotiationEngineImpl struct {
	voice   services.VoiceService
	monitor ConversationMonitor
	config  *config.NegotiationConfig
	logger  *log.Logger
}

// NewNegotiationEngine creates a new negotiation engine
func NewNegotiationEngine(voice services.VoiceService, monitor ConversationMonitor, cfg *config.NegotiationConfig, logger *log.Logger) NegotiationEngine {
	return &NegotiationEngineImpl{
		voice:   voice,
		monitor: monitor,
		config:  cfg,
		logger:  logger,
	}
}

// Run executes the negotiation and mutates the record's phase, attempt count,
// final rate, and transcript reference along the way. The returned result
// always carries a terminal phase.
func (e *NegotiationEngineImpl) Run(ctx context.Context, campaign *models.Campaign, creator *models.Creator, negotiation *models.Negotiation) NegotiationResult {
	conversationID, result := e.placeCall(ctx, campaign, creator, negotiation)
	if result != nil {
		return *result
	}

	if err := transition(negotiation, models.NegotiationPhaseMonitoring); err != nil {
		return e.fail(negotiation, err)
	}

	status, err := e.monitor.AwaitOutcome(ctx, conversationID)
	if err != nil {
		if errors.Is(err, ErrCallTimeout) {
			return e.finish(negotiation, models.NegotiationPhaseTimedOut, nil, nil, nil)
		}
		return e.fail(negotiation, err)
	}

	return e.resolveOutcome(negotiation, status)
}

// placeCall runs the pending -> calling loop. A failed initiation drops back
// to pending and retries after backoff until the attempt budget runs out.
func (e *NegotiationEngineImpl) placeCall(ctx context.Context, campaign *models.Campaign, creator *models.Creator, negotiation *models.Negotiation) (string, *NegotiationResult) {
	for {
		if err := transition(negotiation, models.NegotiationPhaseCalling); err != nil {
			result := e.fail(negotiation, err)
			return "", &result
		}
		negotiation.AttemptCount++

		conversationID, err := e.voice.StartCall(ctx, &services.StartCallRequest{
			ToNumber:         creator.Phone,
			DynamicVariables: e.callVariables(campaign, creator, negotiation),
		})
		if err == nil {
			e.logger.Printf("negotiation %d: call started for creator %d (conversation %s, attempt %d)",
				negotiation.ID, creator.ID, conversationID, negotiation.AttemptCount)
			return conversationID, nil
		}

		e.logger.Printf("negotiation %d: call initiation failed (attempt %d/%d): %v",
			negotiation.ID, negotiation.AttemptCount, e.config.MaxAttempts, err)

		if negotiation.AttemptCount >= e.config.MaxAttempts {
			result := e.fail(negotiation, fmt.Errorf("call initiation failed after %d attempts: %w", negotiation.AttemptCount, err))
			return "", &result
		}

		if terr := transition(negotiation, models.NegotiationPhasePending); terr != nil {
			result := e.fail(negotiation, terr)
			return "", &result
		}

		select {
		case <-ctx.Done():
			result := e.fail(negotiation, ErrMonitorCancelled)
			return "", &result
		case <-time.After(e.retryBackoff(negotiation.AttemptCount)):
		}
	}
}

// resolveOutcome maps the provider's terminal report onto a negotiation phase.
// An acceptance only counts when the final rate lands inside the acceptance
// window; anything outside it needs a human followup.
func (e *NegotiationEngineImpl) resolveOutcome(negotiation *models.Negotiation, status *services.ConversationStatus) NegotiationResult {
	var transcriptRef *string
	if status.TranscriptRef != "" {
		transcriptRef = &status.TranscriptRef
	}

	switch status.Outcome {
	case services.CallOutcomeAccepted:
		finalRate := negotiation.OfferedRate
		if status.FinalRate != nil {
			finalRate = *status.FinalRate
		}

		floor := negotiation.OfferedRate * e.config.AcceptFloorFactor
		if finalRate < floor || finalRate > negotiation.MaxRate {
			e.logger.Printf("negotiation %d: agreed rate %.2f outside acceptance window [%.2f, %.2f]",
				negotiation.ID, finalRate, floor, negotiation.MaxRate)
			return e.finish(negotiation, models.NegotiationPhaseNeedsFollowup, &finalRate, status.Deliverables, transcriptRef)
		}

		return e.finish(negotiation, models.NegotiationPhaseAccepted, &finalRate, status.Deliverables, transcriptRef)

	case services.CallOutcomeDeclined:
		return e.finish(negotiation, models.NegotiationPhaseDeclined, nil, nil, transcriptRef)

	default:
		return e.finish(negotiation, models.NegotiationPhaseNeedsFollowup, nil, nil, transcriptRef)
	}
}

// callVariables builds the dynamic variables injected into the voice agent's
// conversation context.
func (e *NegotiationEngineImpl) callVariables(campaign *models.Campaign, creator *models.Creator, negotiation *models.Negotiation) map[string]string {
	return map[string]string{
		"creator_name":  creator.Name,
		"brand_name":    campaign.Brief.BrandName,
		"product_name":  campaign.Brief.ProductName,
		"product_niche": campaign.Brief.ProductNiche,
		"campaign_goal": campaign.Brief.CampaignGoal,
		"offered_rate":  fmt.Sprintf("%.2f", negotiation.OfferedRate),
		"max_rate":      fmt.Sprintf("%.2f", negotiation.MaxRate),
	}
}

// retryBackoff doubles the base delay per attempt, capped at the configured
// ceiling.
func (e *NegotiationEngineImpl) retryBackoff(attempt int) time.Duration {
	backoff := e.config.BackoffBase
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= e.config.BackoffCap {
			return e.config.BackoffCap
		}
	}
	return backoff
}

func (e *NegotiationEngineImpl) finish(negotiation *models.Negotiation, phase models.NegotiationPhase, finalRate *float64, deliverables []string, transcriptRef *string) NegotiationResult {
	if err := transition(negotiation, phase); err != nil {
		return e.fail(negotiation, err)
	}

	negotiation.FinalRate = finalRate
	negotiation.TranscriptRef = transcriptRef

	return NegotiationResult{
		Phase:         phase,
		FinalRate:     finalRate,
		Deliverables:  deliverables,
		TranscriptRef: transcriptRef,
	}
}

func (e *NegotiationEngineImpl) fail(negotiation *models.Negotiation, err error) NegotiationResult {
	e.logger.Printf("negotiation %d failed: %v", negotiation.ID, err)

	msg := err.Error()
	negotiation.LastError = &msg
	if !negotiation.Phase.Terminal() {
		negotiation.Phase = models.NegotiationPhaseError
	}

	return NegotiationResult{
		Phase: negotiation.Phase,
		Err:   err,
	}
}

// transition applies a phase change after checking the phase machine allows it
func transition(negotiation *models.Negotiation, next models.NegotiationPhase) error {
	if !negotiation.Phase.CanTransitionTo(next) {
		return fmt.Errorf("invalid negotiation phase transition %s -> %s", negotiation.Phase, next)
	}
	negotiation.Phase = next
	now := utils.UTCNow()
	negotiation.UpdatedAt = &now
	return nil
}
