package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents user role in the system
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// AssetType enumerates the physical reward catalog
type AssetType string

const (
	AssetStarterKit AssetType = "STARTER_KIT"
	AssetSmartphone AssetType = "SMARTPHONE"
	AssetTablet     AssetType = "TABLET"
	AssetMotorbike  AssetType = "MOTORBIKE"
	AssetCar        AssetType = "CAR"
	AssetProperty   AssetType = "PROPERTY"
)

// AssetTypes lists all valid asset types, cheapest first
var AssetTypes = []AssetType{
	AssetStarterKit,
	AssetSmartphone,
	AssetTablet,
	AssetMotorbike,
	AssetCar,
	AssetProperty,
}

// IsValidAssetType reports whether s names a known asset type
func IsValidAssetType(s string) bool {
	for _, t := range AssetTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// UserStats a user's current standing, computed per evaluation.
// Derived from referral and order records; never persisted as its own entity.
type UserStats struct {
	UserID                  uint
	ActiveReferralCount     int
	TeamVolume              decimal.Decimal
	CurrentTierRank         int
	ConsecutiveMonthsAtTier int
	TenureMonths            int
}

// MaintenanceRequirement the ongoing standing an allocation's owner must hold
type MaintenanceRequirement struct {
	RequiredTierRank   int
	MinActiveReferrals int
	MinTeamVolume      decimal.Decimal
}

// maintenanceTable per-asset-type maintenance requirements.
// Tier ranks: Bronze=1 Silver=2 Gold=3 Diamond=4 Elite=5.
var maintenanceTable = map[AssetType]MaintenanceRequirement{
	AssetStarterKit: {RequiredTierRank: 1, MinActiveReferrals: 1, MinTeamVolume: decimal.Zero},
	AssetSmartphone: {RequiredTierRank: 2, MinActiveReferrals: 3, MinTeamVolume: decimal.NewFromInt(15000)},
	AssetTablet:     {RequiredTierRank: 2, MinActiveReferrals: 3, MinTeamVolume: decimal.NewFromInt(15000)},
	AssetMotorbike:  {RequiredTierRank: 3, MinActiveReferrals: 10, MinTeamVolume: decimal.NewFromInt(50000)},
	AssetCar:        {RequiredTierRank: 4, MinActiveReferrals: 25, MinTeamVolume: decimal.NewFromInt(150000)},
	AssetProperty:   {RequiredTierRank: 5, MinActiveReferrals: 50, MinTeamVolume: decimal.NewFromInt(500000)},
}

// MaintenanceRequirementFor returns the requirement row for an asset type
func MaintenanceRequirementFor(t AssetType) (MaintenanceRequirement, error) {
	req, ok := maintenanceTable[t]
	if !ok {
		return MaintenanceRequirement{}, ErrUnknownAssetType
	}
	return req, nil
}

// depreciationTable monthly depreciation rate per asset type.
// PROPERTY appreciates, so its rate is negative.
var depreciationTable = map[AssetType]float64{
	AssetStarterKit: 0.02,
	AssetSmartphone: 0.02,
	AssetTablet:     0.02,
	AssetMotorbike:  0.01,
	AssetCar:        0.01,
	AssetProperty:   -0.005,
}

// DepreciationRateFor returns the monthly depreciation rate for an asset type
func DepreciationRateFor(t AssetType) (float64, error) {
	rate, ok := depreciationTable[t]
	if !ok {
		return 0, ErrUnknownAssetType
	}
	return rate, nil
}

// Fixed platform-wide commission rates for upline levels 4 and 5.
// These are not tier-configurable.
const (
	Level4RatePercent = 2.0
	Level5RatePercent = 1.0
)

// MaxUplineDepth caps upline chain resolution for commission payout
const MaxUplineDepth = 5

// PermanentTierMonths consecutive qualifying months before a tier becomes permanent
const PermanentTierMonths = 3

// RiskLevel classification for allocation alerting
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevelFor maps a failing-factor count to a risk level
func RiskLevelFor(riskFactors int) RiskLevel {
	switch {
	case riskFactors >= 2:
		return RiskHigh
	case riskFactors == 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// MonthsBetween returns whole calendar months elapsed from a to b
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
