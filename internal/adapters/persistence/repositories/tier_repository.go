package repositories

import (
	"context"

	"rewardhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// tierRepository implements TierRepository interface
type tierRepository struct {
	db *gorm.DB
}

// NewTierRepository creates a new tier repository
func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

// Create creates a new tier
func (r *tierRepository) Create(ctx context.Context, tier *models.Tier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

// GetByID gets a tier by ID
func (r *tierRepository) GetByID(ctx context.Context, id uint) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// GetByCode gets a tier by code
func (r *tierRepository) GetByCode(ctx context.Context, code string) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// GetByRank gets a tier by its rank
func (r *tierRepository) GetByRank(ctx context.Context, rank int) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.WithContext(ctx).Where("`rank` = ?", rank).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// Update updates a tier
func (r *tierRepository) Update(ctx context.Context, tier *models.Tier) error {
	return r.db.WithContext(ctx).Save(tier).Error
}

// List lists all tiers ordered by rank
func (r *tierRepository) List(ctx context.Context) ([]*models.Tier, error) {
	var tiers []*models.Tier
	err := r.db.WithContext(ctx).Order("`rank` ASC").Find(&tiers).Error
	return tiers, err
}

// GetLowest gets the floor tier (lowest rank)
func (r *tierRepository) GetLowest(ctx context.Context) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.WithContext(ctx).Order("`rank` ASC").First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}
