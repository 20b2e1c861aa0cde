package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	ReferralCode string         `gorm:"uniqueIndex;size:36;not null" json:"referral_code"`
	ReferrerID   *uint          `gorm:"index" json:"referrer_id"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	JoinedAt     time.Time      `gorm:"not null" json:"joined_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ReferralCode string    `json:"referral_code"`
	ReferrerID   *uint     `json:"referrer_id,omitempty"`
	TierName     string    `json:"tier_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	JoinedAt     time.Time `json:"joined_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		ReferralCode: u.ReferralCode,
		ReferrerID:   u.ReferrerID,
		IsActive:     u.IsActive,
		JoinedAt:     u.JoinedAt,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Tier ranked membership level (Master, seeded)
// Rank is the total order: Bronze(1) < Silver(2) < Gold(3) < Diamond(4) < Elite(5).
// Requirements must be monotonic in rank.
type Tier struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	Code                    string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name                    string          `gorm:"size:50;not null" json:"name"`
	Rank                    int             `gorm:"uniqueIndex;not null" json:"rank"`
	RequiredActiveReferrals int             `gorm:"not null" json:"required_active_referrals"`
	RequiredTeamVolume      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"required_team_volume"`
	TeamVolumeBonusRate     float64         `gorm:"type:decimal(5,2);not null" json:"team_volume_bonus_rate"`
	AchievementBonus        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"achievement_bonus"`
	DirectReferralRate      float64         `gorm:"type:decimal(5,2);not null" json:"direct_referral_rate"`
	Level2Rate              float64         `gorm:"type:decimal(5,2);not null" json:"level2_rate"`
	Level3Rate              float64         `gorm:"type:decimal(5,2);not null" json:"level3_rate"`
	IsActive                bool            `gorm:"default:true" json:"is_active"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tier) TableName() string {
	return "tiers"
}

// RateForLevel returns the tier-configurable commission rate for upline
// levels 1-3. Levels 4-5 use the fixed platform schedule, not the tier.
func (t *Tier) RateForLevel(level int) float64 {
	switch level {
	case 1:
		return t.DirectReferralRate
	case 2:
		return t.Level2Rate
	case 3:
		return t.Level3Rate
	default:
		return 0
	}
}

// ============================================================
// Main Tables
// ============================================================

// PackageOrder a member's package purchase (the commission trigger event)
type PackageOrder struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	BuyerID     uint            `gorm:"not null;index" json:"buyer_id"`
	PackageType string          `gorm:"size:30;not null" json:"package_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`

	Buyer *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
}

func (PackageOrder) TableName() string {
	return "package_orders"
}

// Commission a single commission credit. Immutable once created except the
// PENDING -> PAID status transition.
type Commission struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	EarnerID     uint            `gorm:"not null;index" json:"earner_id"`
	SourceUserID uint            `gorm:"not null;index" json:"source_user_id"`
	OrderID      *uint           `gorm:"index" json:"order_id"`
	Level        int             `gorm:"not null" json:"level"` // 1-5 referral, 0 team-volume / achievement
	Type         string          `gorm:"size:20;not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status       string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	EarnedAt     time.Time       `gorm:"not null" json:"earned_at"`
	PaidAt       *time.Time      `json:"paid_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Earner *User `gorm:"foreignKey:EarnerID" json:"earner,omitempty"`
	Source *User `gorm:"foreignKey:SourceUserID" json:"source,omitempty"`
}

func (Commission) TableName() string {
	return "commissions"
}

// Commission Types
const (
	CommissionTypeReferral    = "REFERRAL"
	CommissionTypeTeamVolume  = "TEAM_VOLUME"
	CommissionTypeAchievement = "ACHIEVEMENT"
)

// Commission Status
const (
	CommissionStatusPending = "PENDING"
	CommissionStatusPaid    = "PAID"
)

// CommissionResponse DTO
type CommissionResponse struct {
	ID           uint            `json:"id"`
	EarnerID     uint            `json:"earner_id"`
	SourceUserID uint            `json:"source_user_id"`
	Level        int             `json:"level"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	EarnedAt     time.Time       `json:"earned_at"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
}

func (c *Commission) ToResponse() *CommissionResponse {
	return &CommissionResponse{
		ID:           c.ID,
		EarnerID:     c.EarnerID,
		SourceUserID: c.SourceUserID,
		Level:        c.Level,
		Type:         c.Type,
		Amount:       c.Amount,
		Status:       c.Status,
		EarnedAt:     c.EarnedAt,
		PaidAt:       c.PaidAt,
	}
}

// TierQualification one row per user tracking current tier standing.
// Mutated by the monthly sweep; never deleted.
type TierQualification struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TierID              uint      `gorm:"not null" json:"tier_id"`
	ConsecutiveMonths   int       `gorm:"not null;default:0" json:"consecutive_months"`
	IsPermanent         bool      `gorm:"not null;default:false" json:"is_permanent"`
	LastEvaluatedPeriod string    `gorm:"size:7" json:"last_evaluated_period"` // YYYY-MM
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Tier *Tier `gorm:"foreignKey:TierID" json:"tier,omitempty"`
}

func (TierQualification) TableName() string {
	return "tier_qualifications"
}

// ============================================================
// Physical Asset Tables
// ============================================================

// PhysicalAsset inventory item backing an allocation
type PhysicalAsset struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AssetType string          `gorm:"size:20;not null;index" json:"asset_type"`
	Label     string          `gorm:"size:100;not null" json:"label"`
	Value     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"value"`
	Status    string          `gorm:"size:20;not null;default:'AVAILABLE';index" json:"status"`
	OwnerID   *uint           `gorm:"index" json:"owner_id"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (PhysicalAsset) TableName() string {
	return "physical_assets"
}

// Physical Asset Status
const (
	AssetStatusAvailable = "AVAILABLE"
	AssetStatusAllocated = "ALLOCATED"
)

// AssetAllocation a physical reward allocated to a user, kept in good standing
// by the monthly maintenance check
type AssetAllocation struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	UserID                  uint            `gorm:"not null;index" json:"user_id"`
	AssetID                 uint            `gorm:"not null;index" json:"asset_id"`
	AssetType               string          `gorm:"size:20;not null" json:"asset_type"`
	OriginalValue           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"original_value"`
	Status                  string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	MaintenancePeriodMonths int             `gorm:"not null" json:"maintenance_period_months"`
	AllocatedAt             time.Time       `gorm:"not null" json:"allocated_at"`
	CompletedAt             *time.Time      `json:"completed_at"`
	ForfeitedAt             *time.Time      `json:"forfeited_at"`
	LastCheckedPeriod       string          `gorm:"size:7" json:"last_checked_period"` // YYYY-MM
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	User  *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Asset *PhysicalAsset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

func (AssetAllocation) TableName() string {
	return "asset_allocations"
}

// Allocation Status
const (
	AllocationStatusPending   = "PENDING"
	AllocationStatusActive    = "ACTIVE"
	AllocationStatusCompleted = "COMPLETED"
	AllocationStatusForfeited = "FORFEITED"
	AllocationStatusRecovered = "RECOVERED"
)

// AllocationResponse DTO
type AllocationResponse struct {
	ID                      uint            `json:"id"`
	UserID                  uint            `json:"user_id"`
	AssetID                 uint            `json:"asset_id"`
	AssetType               string          `json:"asset_type"`
	AssetLabel              string          `json:"asset_label,omitempty"`
	OriginalValue           decimal.Decimal `json:"original_value"`
	Status                  string          `json:"status"`
	MaintenancePeriodMonths int             `json:"maintenance_period_months"`
	AllocatedAt             time.Time       `json:"allocated_at"`
	CompletedAt             *time.Time      `json:"completed_at,omitempty"`
	ForfeitedAt             *time.Time      `json:"forfeited_at,omitempty"`
}

func (a *AssetAllocation) ToResponse() *AllocationResponse {
	resp := &AllocationResponse{
		ID:                      a.ID,
		UserID:                  a.UserID,
		AssetID:                 a.AssetID,
		AssetType:               a.AssetType,
		OriginalValue:           a.OriginalValue,
		Status:                  a.Status,
		MaintenancePeriodMonths: a.MaintenancePeriodMonths,
		AllocatedAt:             a.AllocatedAt,
		CompletedAt:             a.CompletedAt,
		ForfeitedAt:             a.ForfeitedAt,
	}

	if a.Asset != nil {
		resp.AssetLabel = a.Asset.Label
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Master
		&Tier{},
		// Main
		&PackageOrder{},
		&Commission{},
		&TierQualification{},
		// Physical assets
		&PhysicalAsset{},
		&AssetAllocation{},
	)
}
