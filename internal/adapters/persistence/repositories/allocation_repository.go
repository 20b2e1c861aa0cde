package repositories

import (
	"context"
	"time"

	"rewardhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// allocationRepository implements AllocationRepository interface
type allocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository creates a new asset allocation repository
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

// Create creates a new asset allocation
func (r *allocationRepository) Create(ctx context.Context, allocation *models.AssetAllocation) error {
	return r.db.WithContext(ctx).Create(allocation).Error
}

// GetByID gets an allocation by ID with the backing asset preloaded
func (r *allocationRepository) GetByID(ctx context.Context, id uint) (*models.AssetAllocation, error) {
	var allocation models.AssetAllocation
	err := r.db.WithContext(ctx).Preload("Asset").Where("id = ?", id).First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// Update updates an allocation. Associations are omitted so the preloaded
// Asset is never written back through the allocation save.
func (r *allocationRepository) Update(ctx context.Context, allocation *models.AssetAllocation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(allocation).Error
}

// ListByUser lists a user's allocations
func (r *allocationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.AssetAllocation, error) {
	var allocations []*models.AssetAllocation
	err := r.db.WithContext(ctx).Preload("Asset").
		Where("user_id = ?", userID).
		Order("allocated_at DESC").
		Find(&allocations).Error
	return allocations, err
}

// ListEligible lists allocations still subject to the maintenance check
func (r *allocationRepository) ListEligible(ctx context.Context) ([]*models.AssetAllocation, error) {
	var allocations []*models.AssetAllocation
	err := r.db.WithContext(ctx).Preload("Asset").
		Where("status IN ?", []string{models.AllocationStatusPending, models.AllocationStatusActive}).
		Find(&allocations).Error
	return allocations, err
}

// ForfeitAndReleaseAsset marks the allocation forfeited and returns the
// backing physical asset to the available pool. Both rows change in one
// transaction so the inventory can never disagree with the allocation.
func (r *allocationRepository) ForfeitAndReleaseAsset(ctx context.Context, allocation *models.AssetAllocation, forfeitedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allocation.Status = models.AllocationStatusForfeited
		allocation.ForfeitedAt = &forfeitedAt
		if err := tx.Omit(clause.Associations).Save(allocation).Error; err != nil {
			return err
		}

		return tx.Model(&models.PhysicalAsset{}).
			Where("id = ?", allocation.AssetID).
			Updates(map[string]interface{}{
				"status":   models.AssetStatusAvailable,
				"owner_id": nil,
			}).Error
	})
}

// RecoverAndRestock marks a forfeited allocation recovered and restocks the
// backing physical asset in one transaction
func (r *allocationRepository) RecoverAndRestock(ctx context.Context, allocation *models.AssetAllocation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allocation.Status = models.AllocationStatusRecovered
		if err := tx.Omit(clause.Associations).Save(allocation).Error; err != nil {
			return err
		}

		return tx.Model(&models.PhysicalAsset{}).
			Where("id = ?", allocation.AssetID).
			Updates(map[string]interface{}{
				"status":   models.AssetStatusAvailable,
				"owner_id": nil,
			}).Error
	})
}
