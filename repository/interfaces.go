// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/wolfsbane9513/influencer-ai/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ByTaskID(ctx context.Context, taskID string) (*models.Campaign, error)
	ByClientID(ctx context.Context, clientID uint, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
	UpdateStage(ctx context.Context, id uint, stage models.CampaignStage) error
}

// CreatorRepository defines operations for the creator roster
type CreatorRepository interface {
	Repository[models.Creator, models.CreatorFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Creator, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Creator, error)
	ListByNiche(ctx context.Context, niche string, limit, offset int) ([]*models.Creator, error)
}

// NegotiationRepository defines operations for negotiations
type NegotiationRepository interface {
	Repository[models.Negotiation, models.NegotiationFilter]
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Negotiation, error)
	Update(ctx context.Context, negotiation models.Negotiation) error
}

// ContractRepository defines operations for contracts
type ContractRepository interface {
	Repository[models.Contract, models.ContractFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Contract, error)
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Contract, error)
}
