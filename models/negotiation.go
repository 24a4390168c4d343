package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// NegotiationPhase represents the phase of a single creator negotiation
type NegotiationPhase string

const (
	NegotiationPhasePending       NegotiationPhase = "pending"
	NegotiationPhaseCalling       NegotiationPhase = "calling"
	NegotiationPhaseMonitoring    NegotiationPhase = "monitoring"
	NegotiationPhaseAccepted      NegotiationPhase = "accepted"
	NegotiationPhaseDeclined      NegotiationPhase = "declined"
	NegotiationPhaseNeedsFollowup NegotiationPhase = "needs_followup"
	NegotiationPhaseTimedOut      NegotiationPhase = "timed_out"
	NegotiationPhaseError         NegotiationPhase = "error"
)

// String returns the string representation of the phase
func (p NegotiationPhase) String() string {
	return string(p)
}

// Valid checks if the phase is valid
func (p NegotiationPhase) Valid() bool {
	switch p {
	case NegotiationPhasePending, NegotiationPhaseCalling, NegotiationPhaseMonitoring,
		NegotiationPhaseAccepted, NegotiationPhaseDeclined, NegotiationPhaseNeedsFollowup,
		NegotiationPhaseTimedOut, NegotiationPhaseError:
		return true
	default:
		return false
	}
}

// Terminal checks if the phase is terminal
func (p NegotiationPhase) Terminal() bool {
	switch p {
	case NegotiationPhaseAccepted, NegotiationPhaseDeclined, NegotiationPhaseNeedsFollowup,
		NegotiationPhaseTimedOut, NegotiationPhaseError:
		return true
	default:
		return false
	}
}

// Successful checks if the phase is a successful terminal outcome
func (p NegotiationPhase) Successful() bool {
	return p == NegotiationPhaseAccepted
}

// Scan implements the sql.Scanner interface for NegotiationPhase
func (p *NegotiationPhase) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = NegotiationPhase(v)
	case []byte:
		*p = NegotiationPhase(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NegotiationPhase", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NegotiationPhase
func (p NegotiationPhase) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid NegotiationPhase: %s", p)
	}
	return string(p), nil
}

// CanTransitionTo checks if the negotiation can move to the given phase.
// The graph is forward-only; the single backward edge (calling -> pending)
// covers a failed call initiation that is retried after backoff.
func (p NegotiationPhase) CanTransitionTo(next NegotiationPhase) bool {
	if p.Terminal() {
		return false
	}
	if next == NegotiationPhaseError {
		return true
	}
	switch p {
	case NegotiationPhasePending:
		return next == NegotiationPhaseCalling
	case NegotiationPhaseCalling:
		return next == NegotiationPhaseMonitoring || next == NegotiationPhasePending
	case NegotiationPhaseMonitoring:
		return next == NegotiationPhaseAccepted || next == NegotiationPhaseDeclined ||
			next == NegotiationPhaseNeedsFollowup || next == NegotiationPhaseTimedOut
	default:
		return false
	}
}

// Negotiation represents a single creator negotiation within a campaign
type Negotiation struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_negotiations_uuid" json:"uuid"`
	CampaignID    uint             `gorm:"not null;index:idx_negotiations_campaign_id" json:"campaign_id"`
	CreatorID     uint             `gorm:"not null;index:idx_negotiations_creator_id" json:"creator_id"`
	Phase         NegotiationPhase `gorm:"type:negotiation_phase;not null;default:'pending'" json:"phase"`
	OfferedRate   float64          `gorm:"not null" json:"offered_rate"`
	MaxRate       float64          `gorm:"not null" json:"max_rate"`
	FinalRate     *float64         `json:"final_rate,omitempty"`
	AttemptCount  int              `gorm:"not null;default:0" json:"attempt_count"`
	DeadlineAt    *time.Time       `json:"deadline_at,omitempty"`
	TranscriptRef *string          `json:"transcript_ref,omitempty"`
	LastError     *string          `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time       `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Creator  *Creator  `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
}

// TableName returns the table name for the model
func (Negotiation) TableName() string {
	return "negotiations"
}

// BeforeCreate is called before creating a new record
func (n *Negotiation) BeforeCreate(tx *gorm.DB) error {
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.Phase == "" {
		n.Phase = NegotiationPhasePending
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (n *Negotiation) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	n.UpdatedAt = &now
	return nil
}

// NegotiationFilter represents filter criteria for negotiations
type NegotiationFilter struct {
	ID         *uint             `json:"id,omitempty"`
	CampaignID *uint             `json:"campaign_id,omitempty"`
	CreatorID  *uint             `json:"creator_id,omitempty"`
	Phase      *NegotiationPhase `json:"phase,omitempty"`
}
