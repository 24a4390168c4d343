package repository

import (
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/utils"
	"gorm.io/gorm"

	"context"
)

// CreatorRepositoryImpl implements the CreatorRepository interface
type CreatorRepositoryImpl struct {
	*BaseRepository[models.Creator, models.CreatorFilter]
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &CreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Creator, models.CreatorFilter](db),
	}
}

// ByUUID retrieves a creator by UUID
func (r *CreatorRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Creator, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CreatorFilter{UUID: &parsedUUID}
	creators, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return nil, nil
	}

	return creators[0], nil
}

// ListActive retrieves active creators with pagination
func (r *CreatorRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*models.Creator, error) {
	filter := models.CreatorFilter{IsActive: utils.ToPtr(true)}
	return r.ByFilter(ctx, filter, "follower_count DESC", limit, offset)
}

// ListByNiche retrieves active creators in the given niche with pagination
func (r *CreatorRepositoryImpl) ListByNiche(ctx context.Context, niche string, limit, offset int) ([]*models.Creator, error) {
	filter := models.CreatorFilter{Niche: &niche, IsActive: utils.ToPtr(true)}
	return r.ByFilter(ctx, filter, "follower_count DESC", limit, offset)
}

// ByFilter retrieves creators based on filter criteria
func (r *CreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Creator{})
	query = applyCreatorFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var creators []*models.Creator
	if err := query.Find(&creators).Error; err != nil {
		return nil, err
	}

	return creators, nil
}

// Count returns the number of creators matching the filter
func (r *CreatorRepositoryImpl) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Creator{})
	query = applyCreatorFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func applyCreatorFilter(query *gorm.DB, filter models.CreatorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Niche != nil {
		query = query.Where("niche = ?", *filter.Niche)
	}
	if filter.MinFollowers != nil {
		query = query.Where("follower_count >= ?", *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		query = query.Where("follower_count <= ?", *filter.MaxFollowers)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
