package orchestrator

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/wolfsbane9513/influencer-ai/app/services"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// ConversationMonitor polls the voice provider until a conversation reaches
// a terminal state
type ConversationMonitor interface {
	AwaitOutcome(ctx context.Context, conversationID string) (*services.ConversationStatus, error)
}

// ConversationMonitorImpl implements ConversationMonitor. Terminal reports are
// cached per conversation so repeated awaits for the same call return the same
// report without touching the provider again.
type ConversationMonitorImpl struct {
	voice  services.VoiceService
	config *config.NegotiationConfig
	logger *log.Logger

	mu       sync.Mutex
	terminal map[string]*services.ConversationStatus
}

// NewConversationMonitor creates a new conversation monitor
func NewConversationMonitor(voice services.VoiceService, cfg *config.NegotiationConfig, logger *log.Logger) ConversationMonitor {
	return &ConversationMonitorImpl{
		voice:    voice,
		config:   cfg,
		logger:   logger,
		terminal: make(map[string]*services.ConversationStatus),
	}
}

// AwaitOutcome polls the conversation until it ends, the call duration limit
// passes, or the context is cancelled. Transient provider errors back off
// with jitter instead of aborting the watch.
func (m *ConversationMonitorImpl) AwaitOutcome(ctx context.Context, conversationID string) (*services.ConversationStatus, error) {
	if report := m.cachedReport(conversationID); report != nil {
		return report, nil
	}

	deadline := utils.UTCNow().Add(m.config.MaxCallDuration)
	interval := m.config.PollInterval
	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ErrMonitorCancelled
		default:
		}

		if utils.UTCNow().After(deadline) {
			m.logger.Printf("conversation %s exceeded max call duration", conversationID)
			return nil, ErrCallTimeout
		}

		status, err := m.voice.GetConversation(ctx, conversationID)
		if err != nil {
			consecutiveErrors++
			interval = m.backoffInterval(consecutiveErrors)
			m.logger.Printf("conversation %s poll failed (attempt %d): %v", conversationID, consecutiveErrors, err)
		} else {
			consecutiveErrors = 0
			interval = m.config.PollInterval

			if status.Status == services.ConversationStatusEnded {
				m.storeReport(conversationID, status)
				return status, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ErrMonitorCancelled
		case <-time.After(interval):
		}
	}
}

// backoffInterval grows the poll interval exponentially with jitter, capped
// at the configured poll backoff ceiling.
func (m *ConversationMonitorImpl) backoffInterval(consecutiveErrors int) time.Duration {
	interval := m.config.PollInterval
	for i := 1; i < consecutiveErrors; i++ {
		interval *= 2
		if interval >= m.config.PollBackoffCap {
			interval = m.config.PollBackoffCap
			break
		}
	}

	// Up to 20% jitter to avoid synchronized polling across negotiations.
	jitter := time.Duration(rand.Int63n(int64(interval)/5 + 1))
	interval += jitter
	if interval > m.config.PollBackoffCap {
		interval = m.config.PollBackoffCap
	}
	return interval
}

func (m *ConversationMonitorImpl) cachedReport(conversationID string) *services.ConversationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminal[conversationID]
}

func (m *ConversationMonitorImpl) storeReport(conversationID string, status *services.ConversationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.terminal[conversationID]; !exists {
		m.terminal[conversationID] = status
	}
}
