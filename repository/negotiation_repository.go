package repository

import (
	"context"

	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"
)

// NegotiationRepositoryImpl implements the NegotiationRepository interface
type NegotiationRepositoryImpl struct {
	*BaseRepository[models.Negotiation, models.NegotiationFilter]
}

// NewNegotiationRepository creates a new negotiation repository
func NewNegotiationRepository(db *gorm.DB) NegotiationRepository {
	return &NegotiationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Negotiation, models.NegotiationFilter](db),
	}
}

// ByCampaignID retrieves all negotiations for a campaign
func (r *NegotiationRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Negotiation, error) {
	filter := models.NegotiationFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// ByFilter retrieves negotiations based on filter criteria
func (r *NegotiationRepositoryImpl) ByFilter(ctx context.Context, filter models.NegotiationFilter, orderBy string, limit, offset int) ([]*models.Negotiation, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Negotiation{})
	query = applyNegotiationFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var negotiations []*models.Negotiation
	if err := query.Find(&negotiations).Error; err != nil {
		return nil, err
	}

	return negotiations, nil
}

// Count returns the number of negotiations matching the filter
func (r *NegotiationRepositoryImpl) Count(ctx context.Context, filter models.NegotiationFilter) (int64, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Negotiation{})
	query = applyNegotiationFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Update updates a negotiation
func (r *NegotiationRepositoryImpl) Update(ctx context.Context, negotiation models.Negotiation) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := utils.UTCNow()
	negotiation.UpdatedAt = &now

	err = db.Save(&negotiation).Error
	if err != nil {
		return err
	}

	return nil
}

func applyNegotiationFilter(query *gorm.DB, filter models.NegotiationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.Phase != nil {
		query = query.Where("phase = ?", *filter.Phase)
	}
	return query
}
