package repositories

import (
	"context"

	"rewardhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// assetRepository implements AssetRepository interface
type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new physical asset repository
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// Create creates a new physical asset
func (r *assetRepository) Create(ctx context.Context, asset *models.PhysicalAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

// GetByID gets a physical asset by ID
func (r *assetRepository) GetByID(ctx context.Context, id uint) (*models.PhysicalAsset, error) {
	var asset models.PhysicalAsset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// Update updates a physical asset
func (r *assetRepository) Update(ctx context.Context, asset *models.PhysicalAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// List lists physical assets with pagination
func (r *assetRepository) List(ctx context.Context, offset, limit int) ([]*models.PhysicalAsset, int64, error) {
	var assets []*models.PhysicalAsset
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.PhysicalAsset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&assets).Error; err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// GetFirstAvailableByType gets the first available asset of a type
func (r *assetRepository) GetFirstAvailableByType(ctx context.Context, assetType string) (*models.PhysicalAsset, error) {
	var asset models.PhysicalAsset
	err := r.db.WithContext(ctx).
		Where("asset_type = ? AND status = ?", assetType, models.AssetStatusAvailable).
		Order("id ASC").
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
