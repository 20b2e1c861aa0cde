package repositories

import (
	"context"
	"errors"

	"rewardhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername gets a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByReferralCode gets a user by referral code
func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByUsername checks if username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// GetUplineChain walks referrer links upward, nearest ancestor first.
// Stops at maxDepth levels or when the chain is exhausted.
func (r *userRepository) GetUplineChain(ctx context.Context, userID uint, maxDepth int) ([]uint, error) {
	chain := make([]uint, 0, maxDepth)
	currentID := userID

	for level := 0; level < maxDepth; level++ {
		var user models.User
		err := r.db.WithContext(ctx).Select("referrer_id").
			Where("id = ?", currentID).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		if user.ReferrerID == nil {
			break
		}
		chain = append(chain, *user.ReferrerID)
		currentID = *user.ReferrerID
	}

	return chain, nil
}

// GetDownlineUserIDs collects descendant user IDs breadth-first up to maxDepth
func (r *userRepository) GetDownlineUserIDs(ctx context.Context, userID uint, maxDepth int) ([]uint, error) {
	var downline []uint
	frontier := []uint{userID}

	for level := 0; level < maxDepth && len(frontier) > 0; level++ {
		var childIDs []uint
		err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("referrer_id IN ?", frontier).
			Pluck("id", &childIDs).Error
		if err != nil {
			return nil, err
		}
		downline = append(downline, childIDs...)
		frontier = childIDs
	}

	return downline, nil
}

// CountActiveDirectReferrals counts active users directly referred by userID
func (r *userRepository) CountActiveDirectReferrals(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("referrer_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

// ListDirectReferrals lists users directly referred by userID
func (r *userRepository) ListDirectReferrals(ctx context.Context, userID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Where("referrer_id = ?", userID).Find(&users).Error
	return users, err
}

// ListActiveMemberIDs lists IDs of all active members
func (r *userRepository) ListActiveMemberIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ? AND role = ?", true, "MEMBER").
		Pluck("id", &ids).Error
	return ids, err
}
