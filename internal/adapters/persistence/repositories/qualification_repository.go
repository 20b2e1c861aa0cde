package repositories

import (
	"context"

	"rewardhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// qualificationRepository implements QualificationRepository interface
type qualificationRepository struct {
	db *gorm.DB
}

// NewQualificationRepository creates a new tier qualification repository
func NewQualificationRepository(db *gorm.DB) QualificationRepository {
	return &qualificationRepository{db: db}
}

// Create creates a new tier qualification record
func (r *qualificationRepository) Create(ctx context.Context, q *models.TierQualification) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// GetByUserID gets a user's tier qualification with the tier preloaded
func (r *qualificationRepository) GetByUserID(ctx context.Context, userID uint) (*models.TierQualification, error) {
	var q models.TierQualification
	err := r.db.WithContext(ctx).Preload("Tier").Where("user_id = ?", userID).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Update updates a tier qualification record. Associations are omitted so a
// stale preloaded Tier can never overwrite a changed TierID.
func (r *qualificationRepository) Update(ctx context.Context, q *models.TierQualification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(q).Error
}

// ListAll lists all tier qualifications with tiers preloaded
func (r *qualificationRepository) ListAll(ctx context.Context) ([]*models.TierQualification, error) {
	var qs []*models.TierQualification
	err := r.db.WithContext(ctx).Preload("Tier").Find(&qs).Error
	return qs, err
}
