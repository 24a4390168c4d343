package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// CreatorTier classifies a creator by follower count
type CreatorTier string

const (
	CreatorTierMicro CreatorTier = "micro" // < 100k followers
	CreatorTierMacro CreatorTier = "macro" // 100k - 1M followers
	CreatorTierMega  CreatorTier = "mega"  // > 1M followers
)

// Follower count breakpoints for tier classification
const (
	MacroFollowerThreshold = 100_000
	MegaFollowerThreshold  = 1_000_000
)

// Creator represents an influencer profile in the roster
type Creator struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_creators_uuid" json:"uuid"`
	Name           string         `gorm:"not null" json:"name"`
	Platform       string         `gorm:"not null;index:idx_creators_platform" json:"platform"`
	Handle         string         `gorm:"not null" json:"handle"`
	Niche          string         `gorm:"not null;index:idx_creators_niche" json:"niche"`
	FollowerCount  int64          `gorm:"not null" json:"follower_count"`
	EngagementRate float64        `gorm:"not null" json:"engagement_rate"`
	TypicalRate    float64        `gorm:"not null" json:"typical_rate"`
	Phone          string         `gorm:"not null" json:"phone"`
	Email          string         `json:"email"`
	Languages      pq.StringArray `gorm:"type:text[]" json:"languages"`
	ContentTypes   pq.StringArray `gorm:"type:text[]" json:"content_types"`
	Bio            string         `gorm:"type:text" json:"bio"`
	IsActive       *bool          `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Creator) TableName() string {
	return "creators"
}

// BeforeCreate is called before creating a new record
func (c *Creator) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Creator) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// Tier returns the follower-count tier of the creator
func (c *Creator) Tier() CreatorTier {
	switch {
	case c.FollowerCount > MegaFollowerThreshold:
		return CreatorTierMega
	case c.FollowerCount >= MacroFollowerThreshold:
		return CreatorTierMacro
	default:
		return CreatorTierMicro
	}
}

// ProfileText returns the text used to compute the creator's semantic embedding.
// The representation must stay stable: the embedding cache is keyed off it.
func (c *Creator) ProfileText() string {
	parts := []string{
		fmt.Sprintf("%s creator on %s", c.Niche, c.Platform),
		fmt.Sprintf("%d followers", c.FollowerCount),
		fmt.Sprintf("%.2f engagement rate", c.EngagementRate),
	}
	if len(c.ContentTypes) > 0 {
		parts = append(parts, strings.Join(c.ContentTypes, " "))
	}
	if c.Bio != "" {
		parts = append(parts, c.Bio)
	}
	return strings.Join(parts, ". ")
}

// CreatorFilter represents filter criteria for creators
type CreatorFilter struct {
	ID           *uint      `json:"id,omitempty"`
	UUID         *uuid.UUID `json:"uuid,omitempty"`
	Platform     *string    `json:"platform,omitempty"`
	Niche        *string    `json:"niche,omitempty"`
	MinFollowers *int64     `json:"min_followers,omitempty"`
	MaxFollowers *int64     `json:"max_followers,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
}
