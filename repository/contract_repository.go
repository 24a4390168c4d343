package repository

import (
	"context"

	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// ContractRepositoryImpl implements the ContractRepository interface
type ContractRepositoryImpl struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &ContractRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db),
	}
}

// ByUUID retrieves a contract by UUID
func (r *ContractRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Contract, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.ContractFilter{UUID: &parsedUUID}
	contracts, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(contracts) == 0 {
		return nil, nil
	}

	return contracts[0], nil
}

// ByCampaignID retrieves all contracts for a campaign
func (r *ContractRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Contract, error) {
	filter := models.ContractFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// ByFilter retrieves contracts based on filter criteria
func (r *ContractRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Contract{})
	query = applyContractFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var contracts []*models.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}

	return contracts, nil
}

// Count returns the number of contracts matching the filter
func (r *ContractRepositoryImpl) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Contract{})
	query = applyContractFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func applyContractFilter(query *gorm.DB, filter models.ContractFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.Tier != nil {
		query = query.Where("tier = ?", *filter.Tier)
	}
	return query
}
