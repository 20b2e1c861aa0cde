package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
)

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new package order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new package order
func (r *orderRepository) Create(ctx context.Context, order *models.PackageOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID gets a package order by ID
func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.PackageOrder, error) {
	var order models.PackageOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByBuyer lists package orders for a buyer with pagination
func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uint, offset, limit int) ([]*models.PackageOrder, int64, error) {
	var orders []*models.PackageOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PackageOrder{}).Where("buyer_id = ?", buyerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// SumAmountByBuyersSince sums order amounts across buyers from `since` on
func (r *orderRepository) SumAmountByBuyersSince(ctx context.Context, buyerIDs []uint, since time.Time) (decimal.Decimal, error) {
	if len(buyerIDs) == 0 {
		return decimal.Zero, nil
	}

	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.PackageOrder{}).
		Select("SUM(amount)").
		Where("buyer_id IN ? AND created_at >= ?", buyerIDs, since).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
