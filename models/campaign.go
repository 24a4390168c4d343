package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// CampaignStage represents the stage of a campaign workflow
type CampaignStage string

const (
	CampaignStageStarting    CampaignStage = "starting"
	CampaignStageDiscovery   CampaignStage = "discovery"
	CampaignStageNegotiating CampaignStage = "negotiating"
	CampaignStageContracting CampaignStage = "contracting"
	CampaignStageCompleted   CampaignStage = "completed"
	CampaignStageFailed      CampaignStage = "failed"
	CampaignStageCancelled   CampaignStage = "cancelled"
)

// String returns the string representation of the stage
func (s CampaignStage) String() string {
	return string(s)
}

// Valid checks if the stage is valid
func (s CampaignStage) Valid() bool {
	switch s {
	case CampaignStageStarting, CampaignStageDiscovery, CampaignStageNegotiating,
		CampaignStageContracting, CampaignStageCompleted, CampaignStageFailed,
		CampaignStageCancelled:
		return true
	default:
		return false
	}
}

// Terminal checks if the stage is terminal
func (s CampaignStage) Terminal() bool {
	switch s {
	case CampaignStageCompleted, CampaignStageFailed, CampaignStageCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStage
func (s *CampaignStage) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStage(v)
	case []byte:
		*s = CampaignStage(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStage", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStage
func (s CampaignStage) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStage: %s", s)
	}
	return string(s), nil
}

// CampaignBrief is the immutable input a campaign starts from
type CampaignBrief struct {
	ProductName        string  `json:"product_name"`
	BrandName          string  `json:"brand_name"`
	ProductDescription string  `json:"product_description"`
	TargetAudience     string  `json:"target_audience"`
	CampaignGoal       string  `json:"campaign_goal"`
	ProductNiche       string  `json:"product_niche"`
	TotalBudget        float64 `json:"total_budget"`
}

// Value implements the driver.Valuer interface for CampaignBrief
func (b CampaignBrief) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface for CampaignBrief
func (b *CampaignBrief) Scan(value any) error {
	if value == nil {
		*b = CampaignBrief{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignBrief", value)
	}

	return json.Unmarshal(bytes, b)
}

// BriefText returns the text used to compute the brief's semantic embedding
func (b *CampaignBrief) BriefText() string {
	return fmt.Sprintf("%s by %s. %s. Target audience: %s. Goal: %s. Niche: %s",
		b.ProductName, b.BrandName, b.ProductDescription, b.TargetAudience, b.CampaignGoal, b.ProductNiche)
}

// Campaign represents a campaign record in the database
type Campaign struct {
	ID                     uint          `gorm:"primaryKey" json:"id"`
	UUID                   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	TaskID                 uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_task_id" json:"task_id"`
	ClientID               uint          `gorm:"not null;index:idx_campaigns_client_id" json:"client_id"`
	Stage                  CampaignStage `gorm:"type:campaign_stage;not null;default:'starting';index:idx_campaigns_stage" json:"stage"`
	Brief                  CampaignBrief `gorm:"type:jsonb;not null" json:"brief"`
	CreatorsFound          int           `gorm:"not null;default:0" json:"creators_found"`
	CompletedNegotiations  int           `gorm:"not null;default:0" json:"completed_negotiations"`
	SuccessfulNegotiations int           `gorm:"not null;default:0" json:"successful_negotiations"`
	ContractsGenerated     int           `gorm:"not null;default:0" json:"contracts_generated"`
	BudgetCommitted        float64       `gorm:"not null;default:0" json:"budget_committed"`
	LastError              *string       `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt              time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt              *time.Time    `json:"updated_at,omitempty"`
	FinishedAt             *time.Time    `json:"finished_at,omitempty"`

	// Relations
	Negotiations []Negotiation `gorm:"foreignKey:CampaignID" json:"negotiations,omitempty"`
	Contracts    []Contract    `gorm:"foreignKey:CampaignID" json:"contracts,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.TaskID == uuid.Nil {
		c.TaskID = uuid.New()
	}
	if c.Stage == "" {
		c.Stage = CampaignStageStarting
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// CanTransitionTo checks if the campaign can transition to the given stage.
// Stages only move forward; cancellation is allowed from any non-terminal stage.
func (c *Campaign) CanTransitionTo(newStage CampaignStage) bool {
	if c.Stage.Terminal() {
		return false
	}
	if newStage == CampaignStageCancelled || newStage == CampaignStageFailed {
		return true
	}
	switch c.Stage {
	case CampaignStageStarting:
		return newStage == CampaignStageDiscovery
	case CampaignStageDiscovery:
		return newStage == CampaignStageNegotiating || newStage == CampaignStageCompleted
	case CampaignStageNegotiating:
		return newStage == CampaignStageContracting || newStage == CampaignStageCompleted
	case CampaignStageContracting:
		return newStage == CampaignStageCompleted
	default:
		return false
	}
}

// ProgressPercentage maps the stage and negotiation counters to a coarse
// completion percentage for the progress endpoint.
func (c *Campaign) ProgressPercentage() int {
	switch c.Stage {
	case CampaignStageStarting:
		return 5
	case CampaignStageDiscovery:
		return 25
	case CampaignStageNegotiating:
		if c.CreatorsFound == 0 {
			return 40
		}
		return 40 + (30*c.CompletedNegotiations)/c.CreatorsFound
	case CampaignStageContracting:
		return 85
	case CampaignStageCompleted:
		return 100
	default:
		// failed and cancelled freeze at the negotiation scale
		if c.CreatorsFound == 0 {
			return 25
		}
		return 40 + (30*c.CompletedNegotiations)/c.CreatorsFound
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint          `json:"id,omitempty"`
	UUID          *uuid.UUID     `json:"uuid,omitempty"`
	TaskID        *uuid.UUID     `json:"task_id,omitempty"`
	ClientID      *uint          `json:"client_id,omitempty"`
	Stage         *CampaignStage `json:"stage,omitempty"`
	Niche         *string        `json:"niche,omitempty"`
	CreatedAfter  *time.Time     `json:"created_after,omitempty"`
	CreatedBefore *time.Time     `json:"created_before,omitempty"`
	MinBudget     *float64       `json:"min_budget,omitempty"`
	MaxBudget     *float64       `json:"max_budget,omitempty"`
}
