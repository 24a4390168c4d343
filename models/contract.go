package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// ContractTier selects the contract template by creator follower count
type ContractTier string

const (
	ContractTierMicro    ContractTier = "micro"
	ContractTierStandard ContractTier = "standard"
	ContractTierPremium  ContractTier = "premium"
)

// Valid checks if the tier is valid
func (t ContractTier) Valid() bool {
	switch t {
	case ContractTierMicro, ContractTierStandard, ContractTierPremium:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ContractTier
func (t *ContractTier) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = ContractTier(v)
	case []byte:
		*t = ContractTier(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ContractTier", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ContractTier
func (t ContractTier) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ContractTier: %s", t)
	}
	return string(t), nil
}

// PaymentMilestone is one entry of a contract's payment schedule
type PaymentMilestone struct {
	Stage      string  `json:"stage"` // signing, delivery, completion
	Percentage int     `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// PaymentSchedule is the ordered list of payment milestones; percentages sum to 100
type PaymentSchedule []PaymentMilestone

// Value implements the driver.Valuer interface for PaymentSchedule
func (s PaymentSchedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for PaymentSchedule
func (s *PaymentSchedule) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentSchedule", value)
	}

	return json.Unmarshal(bytes, s)
}

// TotalPercentage returns the sum of all milestone percentages
func (s PaymentSchedule) TotalPercentage() int {
	total := 0
	for _, m := range s {
		total += m.Percentage
	}
	return total
}

// Contract represents a generated contract for an accepted negotiation
type Contract struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_contracts_uuid" json:"uuid"`
	CampaignID      uint            `gorm:"not null;index:idx_contracts_campaign_id" json:"campaign_id"`
	NegotiationID   uint            `gorm:"not null;uniqueIndex:uk_contracts_negotiation_id" json:"negotiation_id"`
	CreatorID       uint            `gorm:"not null;index:idx_contracts_creator_id" json:"creator_id"`
	Tier            ContractTier    `gorm:"type:contract_tier;not null" json:"tier"`
	AgreedRate      float64         `gorm:"not null" json:"agreed_rate"`
	Currency        string          `gorm:"not null;default:'USD'" json:"currency"`
	Deliverables    pq.StringArray  `gorm:"type:text[]" json:"deliverables"`
	PaymentSchedule PaymentSchedule `gorm:"type:jsonb;not null" json:"payment_schedule"`
	DeliveryDays    int             `gorm:"not null" json:"delivery_days"`
	CreatedAt       time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Campaign    *Campaign    `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Negotiation *Negotiation `gorm:"foreignKey:NegotiationID;references:ID" json:"negotiation,omitempty"`
	Creator     *Creator     `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
}

// TableName returns the table name for the model
func (Contract) TableName() string {
	return "contracts"
}

// BeforeCreate is called before creating a new record
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Currency == "" {
		c.Currency = utils.USDCurrency
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Contract) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// ContractFilter represents filter criteria for contracts
type ContractFilter struct {
	ID         *uint         `json:"id,omitempty"`
	UUID       *uuid.UUID    `json:"uuid,omitempty"`
	CampaignID *uint         `json:"campaign_id,omitempty"`
	CreatorID  *uint         `json:"creator_id,omitempty"`
	Tier       *ContractTier `json:"tier,omitempty"`
}
