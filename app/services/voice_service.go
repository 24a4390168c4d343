// Package services provides external service integrations and technical concerns like voice calls and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfsbane9513/influencer-ai/config"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// Conversation status values reported by the voice provider
const (
	ConversationStatusOngoing = "ongoing"
	ConversationStatusEnded   = "ended"
)

// Negotiation outcomes extracted from an ended conversation
const (
	CallOutcomeAccepted      = "accepted"
	CallOutcomeDeclined      = "declined"
	CallOutcomeNeedsFollowup = "needs_followup"
)

// VoiceService drives outbound negotiation calls through the voice provider
type VoiceService interface {
	StartCall(ctx context.Context, req *StartCallRequest) (string, error)
	GetConversation(ctx context.Context, conversationID string) (*ConversationStatus, error)
}

// StartCallRequest carries the call target and the dynamic variables injected
// into the voice agent's conversation context
type StartCallRequest struct {
	ToNumber         string            `json:"to_number"`
	DynamicVariables map[string]string `json:"dynamic_variables"`
}

// ConversationStatus is the provider's view of a conversation
type ConversationStatus struct {
	ConversationID string   `json:"conversation_id"`
	Status         string   `json:"status"` // ongoing, ended
	Outcome        string   `json:"outcome,omitempty"`
	FinalRate      *float64 `json:"final_rate,omitempty"`
	Deliverables   []string `json:"deliverables,omitempty"`
	Sentiment      string   `json:"sentiment,omitempty"`
	TranscriptRef  string   `json:"transcript_ref,omitempty"`
}

// VoiceServiceImpl implements VoiceService against the ElevenLabs conversational API
type VoiceServiceImpl struct {
	config *config.VoiceConfig
	client *http.Client
}

// outboundCallRequest is the provider payload for initiating a call
type outboundCallRequest struct {
	AgentID                       string              `json:"agent_id"`
	AgentPhoneNumberID            string              `json:"agent_phone_number_id"`
	ToNumber                      string              `json:"to_number"`
	ConversationInitiationData    *initiationData     `json:"conversation_initiation_client_data,omitempty"`
}

type initiationData struct {
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`
}

// outboundCallResponse is the provider response for a call initiation
type outboundCallResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversation_id"`
	CallSID        string `json:"callSid"`
	Message        string `json:"message,omitempty"`
}

// conversationResponse is the provider response for a conversation lookup
type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Analysis       *struct {
		CallSuccessful             string `json:"call_successful"`
		TranscriptSummary          string `json:"transcript_summary"`
		DataCollectionResults      map[string]json.RawMessage `json:"data_collection_results,omitempty"`
	} `json:"analysis,omitempty"`
}

// NewVoiceService creates a new voice service instance
func NewVoiceService(cfg *config.VoiceConfig) VoiceService {
	return &VoiceServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// NewVoiceServiceFromConfig returns the real provider client when credentials
// are configured and the mock otherwise.
func NewVoiceServiceFromConfig(cfg *config.VoiceConfig) VoiceService {
	if cfg.APIKey == "" || cfg.AgentID == "" {
		return NewMockVoiceService()
	}
	return NewVoiceService(cfg)
}

// StartCall initiates an outbound call and returns the conversation ID
func (s *VoiceServiceImpl) StartCall(ctx context.Context, req *StartCallRequest) (string, error) {
	payload := outboundCallRequest{
		AgentID:            s.config.AgentID,
		AgentPhoneNumberID: s.config.AgentPhoneNumberID,
		ToNumber:           req.ToNumber,
	}
	if len(req.DynamicVariables) > 0 {
		payload.ConversationInitiationData = &initiationData{DynamicVariables: req.DynamicVariables}
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal call request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/convai/twilio/outbound-call", s.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send call request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("call initiation failed with status %d", resp.StatusCode)
	}

	var result outboundCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode call response: %w", err)
	}
	if result.ConversationID == "" {
		return "", fmt.Errorf("call initiation rejected: %s", result.Message)
	}

	return result.ConversationID, nil
}

// GetConversation retrieves the current status of a conversation
func (s *VoiceServiceImpl) GetConversation(ctx context.Context, conversationID string) (*ConversationStatus, error) {
	url := fmt.Sprintf("%s/v1/convai/conversations/%s", s.config.APIBase, conversationID)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("conversation lookup failed with status %d", resp.StatusCode)
	}

	var result conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode conversation response: %w", err)
	}

	status := &ConversationStatus{
		ConversationID: result.ConversationID,
		Status:         ConversationStatusOngoing,
	}
	if result.Status == "done" || result.Status == "ended" || result.Status == "failed" {
		status.Status = ConversationStatusEnded
		status.Outcome = CallOutcomeNeedsFollowup
		if result.Analysis != nil {
			status.TranscriptRef = result.ConversationID
			switch result.Analysis.CallSuccessful {
			case "success":
				status.Outcome = CallOutcomeAccepted
			case "failure":
				status.Outcome = CallOutcomeDeclined
			}
			if raw, ok := result.Analysis.DataCollectionResults["final_rate"]; ok {
				var rate float64
				if err := json.Unmarshal(raw, &rate); err == nil {
					status.FinalRate = &rate
				}
			}
			if raw, ok := result.Analysis.DataCollectionResults["deliverables"]; ok {
				var deliverables []string
				if err := json.Unmarshal(raw, &deliverables); err == nil {
					status.Deliverables = deliverables
				}
			}
		}
	}

	return status, nil
}

// MockVoiceService implements VoiceService for testing and credential-less runs.
// Conversations resolve after a scripted number of polls; the outcome is keyed
// off the target phone number suffix so tests stay deterministic.
type MockVoiceService struct {
	mu            sync.Mutex
	conversations map[string]*mockConversation

	// FailInitiations makes the next N StartCall invocations fail
	FailInitiations int
	// PollsUntilEnded is how many status polls a conversation stays ongoing (default 1)
	PollsUntilEnded int
	// StartedCalls records every successfully initiated call
	StartedCalls []MockStartedCall
}

// MockStartedCall records a mock call initiation
type MockStartedCall struct {
	ConversationID   string
	ToNumber         string
	DynamicVariables map[string]string
	StartedAt        time.Time
}

type mockConversation struct {
	toNumber     string
	offeredRate  float64
	pollsLeft    int
	finalReport  *ConversationStatus
}

// NewMockVoiceService creates a new mock voice service
func NewMockVoiceService() *MockVoiceService {
	return &MockVoiceService{
		conversations:   make(map[string]*mockConversation),
		PollsUntilEnded: 1,
	}
}

// StartCall initiates a mock call
func (m *MockVoiceService) StartCall(ctx context.Context, req *StartCallRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInitiations > 0 {
		m.FailInitiations--
		return "", fmt.Errorf("mock provider rejected call to %s", req.ToNumber)
	}

	conversationID := fmt.Sprintf("mock-conv-%s", uuid.New().String()[:8])

	offeredRate := 0.0
	if v, ok := req.DynamicVariables["offered_rate"]; ok {
		fmt.Sscanf(v, "%f", &offeredRate)
	}

	m.conversations[conversationID] = &mockConversation{
		toNumber:    req.ToNumber,
		offeredRate: offeredRate,
		pollsLeft:   m.PollsUntilEnded,
	}
	m.StartedCalls = append(m.StartedCalls, MockStartedCall{
		ConversationID:   conversationID,
		ToNumber:         req.ToNumber,
		DynamicVariables: req.DynamicVariables,
		StartedAt:        utils.UTCNow(),
	})

	return conversationID, nil
}

// GetConversation returns the mock conversation status. Once a conversation
// has ended, repeated polls return the same report.
func (m *MockVoiceService) GetConversation(ctx context.Context, conversationID string) (*ConversationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("unknown conversation %s", conversationID)
	}

	if conv.finalReport != nil {
		return conv.finalReport, nil
	}

	if conv.pollsLeft > 0 {
		conv.pollsLeft--
		return &ConversationStatus{
			ConversationID: conversationID,
			Status:         ConversationStatusOngoing,
		}, nil
	}

	report := m.scriptedOutcome(conversationID, conv)
	if report.Status == ConversationStatusEnded {
		conv.finalReport = report
	}
	return report, nil
}

// scriptedOutcome maps the phone number suffix to a deterministic outcome:
// 0,1,2,3 decline; 4,5 need a followup; 9 never answers (stays ongoing);
// everything else accepts slightly under the offered rate.
func (m *MockVoiceService) scriptedOutcome(conversationID string, conv *mockConversation) *ConversationStatus {
	report := &ConversationStatus{
		ConversationID: conversationID,
		Status:         ConversationStatusEnded,
		TranscriptRef:  conversationID,
	}

	suffix := ""
	if n := len(conv.toNumber); n > 0 {
		suffix = conv.toNumber[n-1:]
	}

	switch {
	case strings.Contains("0123", suffix):
		report.Outcome = CallOutcomeDeclined
		report.Sentiment = "negative"
	case strings.Contains("45", suffix):
		report.Outcome = CallOutcomeNeedsFollowup
		report.Sentiment = "neutral"
	case suffix == "9":
		// Simulates a creator who never picks up; the monitor times out.
		return &ConversationStatus{
			ConversationID: conversationID,
			Status:         ConversationStatusOngoing,
		}
	default:
		rate := conv.offeredRate * 0.95
		report.Outcome = CallOutcomeAccepted
		report.FinalRate = &rate
		report.Sentiment = "positive"
		report.Deliverables = []string{"1 sponsored post", "3 stories"}
	}

	return report
}

// ClearStartedCalls clears the recorded call list
func (m *MockVoiceService) ClearStartedCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartedCalls = nil
}
