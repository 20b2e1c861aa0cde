package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rewardhub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// GetUplineChain returns ancestor user IDs, nearest first, up to maxDepth
	GetUplineChain(ctx context.Context, userID uint, maxDepth int) ([]uint, error)
	// GetDownlineUserIDs returns all descendant user IDs up to maxDepth levels deep
	GetDownlineUserIDs(ctx context.Context, userID uint, maxDepth int) ([]uint, error)
	CountActiveDirectReferrals(ctx context.Context, userID uint) (int64, error)
	ListDirectReferrals(ctx context.Context, userID uint) ([]*models.User, error)
	ListActiveMemberIDs(ctx context.Context) ([]uint, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// TierRepository defines tier master data repository interface
type TierRepository interface {
	Create(ctx context.Context, tier *models.Tier) error
	GetByID(ctx context.Context, id uint) (*models.Tier, error)
	GetByCode(ctx context.Context, code string) (*models.Tier, error)
	GetByRank(ctx context.Context, rank int) (*models.Tier, error)
	Update(ctx context.Context, tier *models.Tier) error
	List(ctx context.Context) ([]*models.Tier, error)
	GetLowest(ctx context.Context) (*models.Tier, error)
}

// OrderRepository defines package order repository interface
type OrderRepository interface {
	Create(ctx context.Context, order *models.PackageOrder) error
	GetByID(ctx context.Context, id uint) (*models.PackageOrder, error)
	ListByBuyer(ctx context.Context, buyerID uint, offset, limit int) ([]*models.PackageOrder, int64, error)
	// SumAmountByBuyersSince sums order amounts across the given buyers from `since` on
	SumAmountByBuyersSince(ctx context.Context, buyerIDs []uint, since time.Time) (decimal.Decimal, error)
}

// CommissionRepository defines commission ledger repository interface
type CommissionRepository interface {
	Create(ctx context.Context, commission *models.Commission) error
	GetByID(ctx context.Context, id uint) (*models.Commission, error)
	Update(ctx context.Context, commission *models.Commission) error
	ListByEarner(ctx context.Context, earnerID uint, offset, limit int) ([]*models.Commission, int64, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.Commission, int64, error)
	// ExistsByEarnerAndTypeSince reports whether the earner already has a
	// commission of the given type earned at or after since
	ExistsByEarnerAndTypeSince(ctx context.Context, earnerID uint, commissionType string, since time.Time) (bool, error)
	SumByEarnerAndStatus(ctx context.Context, earnerID uint, status string) (decimal.Decimal, error)
}

// QualificationRepository defines tier qualification repository interface
type QualificationRepository interface {
	Create(ctx context.Context, q *models.TierQualification) error
	GetByUserID(ctx context.Context, userID uint) (*models.TierQualification, error)
	Update(ctx context.Context, q *models.TierQualification) error
	ListAll(ctx context.Context) ([]*models.TierQualification, error)
}

// AllocationRepository defines asset allocation repository interface
type AllocationRepository interface {
	Create(ctx context.Context, allocation *models.AssetAllocation) error
	GetByID(ctx context.Context, id uint) (*models.AssetAllocation, error)
	Update(ctx context.Context, allocation *models.AssetAllocation) error
	ListByUser(ctx context.Context, userID uint) ([]*models.AssetAllocation, error)
	// ListEligible returns allocations in PENDING or ACTIVE status
	ListEligible(ctx context.Context) ([]*models.AssetAllocation, error)
	// ForfeitAndReleaseAsset marks the allocation forfeited and returns the
	// backing physical asset to the available pool in one transaction
	ForfeitAndReleaseAsset(ctx context.Context, allocation *models.AssetAllocation, forfeitedAt time.Time) error
	// RecoverAndRestock marks a forfeited allocation recovered and restocks the
	// backing physical asset in one transaction
	RecoverAndRestock(ctx context.Context, allocation *models.AssetAllocation) error
}

// AssetRepository defines physical asset inventory repository interface
type AssetRepository interface {
	Create(ctx context.Context, asset *models.PhysicalAsset) error
	GetByID(ctx context.Context, id uint) (*models.PhysicalAsset, error)
	Update(ctx context.Context, asset *models.PhysicalAsset) error
	List(ctx context.Context, offset, limit int) ([]*models.PhysicalAsset, int64, error)
	GetFirstAvailableByType(ctx context.Context, assetType string) (*models.PhysicalAsset, error)
}
