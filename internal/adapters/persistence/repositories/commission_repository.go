package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
)

// commissionRepository implements CommissionRepository interface
type commissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

// Create creates a new commission
func (r *commissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

// GetByID gets a commission by ID
func (r *commissionRepository) GetByID(ctx context.Context, id uint) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

// Update updates a commission
func (r *commissionRepository) Update(ctx context.Context, commission *models.Commission) error {
	return r.db.WithContext(ctx).Save(commission).Error
}

// ListByEarner lists commissions earned by a user with pagination
func (r *commissionRepository) ListByEarner(ctx context.Context, earnerID uint, offset, limit int) ([]*models.Commission, int64, error) {
	var commissions []*models.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Commission{}).Where("earner_id = ?", earnerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("earned_at DESC").Offset(offset).Limit(limit).Find(&commissions).Error
	if err != nil {
		return nil, 0, err
	}

	return commissions, total, nil
}

// ListByStatus lists commissions in a given status with pagination
func (r *commissionRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Commission, int64, error) {
	var commissions []*models.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Commission{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("earned_at ASC").Offset(offset).Limit(limit).Find(&commissions).Error
	if err != nil {
		return nil, 0, err
	}

	return commissions, total, nil
}

// ExistsByEarnerAndTypeSince reports whether the earner already has a
// commission of the given type earned at or after since
func (r *commissionRepository) ExistsByEarnerAndTypeSince(ctx context.Context, earnerID uint, commissionType string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("earner_id = ? AND type = ? AND earned_at >= ?", earnerID, commissionType, since).
		Count(&count).Error
	return count > 0, err
}

// SumByEarnerAndStatus sums commission amounts for an earner in a status
func (r *commissionRepository) SumByEarnerAndStatus(ctx context.Context, earnerID uint, status string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Commission{}).
		Select("SUM(amount)").
		Where("earner_id = ? AND status = ?", earnerID, status).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
