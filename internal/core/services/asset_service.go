package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/core/domain"
)

// DefaultMaintenancePeriodMonths is used when an allocation is created without
// an explicit maintenance period
const DefaultMaintenancePeriodMonths = 12

// AssetService manages physical reward allocations: the monthly maintenance
// check, buyback quoting, and forfeiture recovery
type AssetService struct {
	allocationRepo repositories.AllocationRepository
	assetRepo      repositories.AssetRepository
	userRepo       repositories.UserRepository
	statsProvider  UserStatsProvider
	clock          Clock
}

// NewAssetService creates a new asset allocation service
func NewAssetService(
	allocationRepo repositories.AllocationRepository,
	assetRepo repositories.AssetRepository,
	userRepo repositories.UserRepository,
	statsProvider UserStatsProvider,
	clock Clock,
) *AssetService {
	return &AssetService{
		allocationRepo: allocationRepo,
		assetRepo:      assetRepo,
		userRepo:       userRepo,
		statsProvider:  statsProvider,
		clock:          clock,
	}
}

// AllocateAssetInput represents an admin asset grant
type AllocateAssetInput struct {
	UserID                  uint   `json:"user_id"`
	AssetType               string `json:"asset_type"`
	MaintenancePeriodMonths int    `json:"maintenance_period_months"`
}

// EvaluationResult represents the outcome of one allocation's maintenance check
type EvaluationResult struct {
	AllocationID uint             `json:"allocation_id"`
	Action       string           `json:"action"` // maintained, completed, violated, forfeited, skipped
	RiskFactors  []string         `json:"risk_factors,omitempty"`
	RiskLevel    domain.RiskLevel `json:"risk_level"`
}

// MaintenanceRunResult aggregates the monthly maintenance run counters
type MaintenanceRunResult struct {
	Processed  int `json:"processed"`
	Maintained int `json:"maintained"`
	Completed  int `json:"completed"`
	Violated   int `json:"violated"`
	Forfeited  int `json:"forfeited"`
	Failed     int `json:"failed"`
}

// BuybackQuote the platform's repurchase terms for a completed allocation
type BuybackQuote struct {
	AllocationID  uint            `json:"allocation_id"`
	OriginalValue decimal.Decimal `json:"original_value"`
	MonthsOwned   int             `json:"months_owned"`
	MarketValue   decimal.Decimal `json:"market_value"`
	MaxOffer      decimal.Decimal `json:"max_offer"`
}

// Evaluation actions
const (
	ActionMaintained = "maintained"
	ActionCompleted  = "completed"
	ActionViolated   = "violated"
	ActionForfeited  = "forfeited"
	ActionSkipped    = "skipped"
)

// AllocateAsset grants the first available asset of the requested type to a
// user. The allocation starts PENDING and activates on its first clean
// maintenance check.
func (s *AssetService) AllocateAsset(ctx context.Context, input *AllocateAssetInput) (*models.AssetAllocation, error) {
	if !domain.IsValidAssetType(input.AssetType) {
		return nil, domain.ErrUnknownAssetType
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	asset, err := s.assetRepo.GetFirstAvailableByType(ctx, input.AssetType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAssetNotAvailable
		}
		return nil, err
	}

	period := input.MaintenancePeriodMonths
	if period <= 0 {
		period = DefaultMaintenancePeriodMonths
	}

	allocation := &models.AssetAllocation{
		UserID:                  input.UserID,
		AssetID:                 asset.ID,
		AssetType:               asset.AssetType,
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusPending,
		MaintenancePeriodMonths: period,
		AllocatedAt:             s.clock.Now(),
	}
	if err := s.allocationRepo.Create(ctx, allocation); err != nil {
		return nil, err
	}

	asset.Status = models.AssetStatusAllocated
	asset.OwnerID = &input.UserID
	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}

	log.Printf("🎁 Asset %d (%s) allocated to user %d", asset.ID, asset.AssetType, input.UserID)
	return allocation, nil
}

// EvaluateAllocation runs the maintenance check for a single allocation.
// Terminal allocations and allocations already checked this period are
// skipped, so the monthly run can be re-executed safely.
func (s *AssetService) EvaluateAllocation(ctx context.Context, allocationID uint) (*EvaluationResult, error) {
	allocation, err := s.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, err
	}
	return s.evaluateOne(ctx, allocation)
}

func (s *AssetService) evaluateOne(ctx context.Context, allocation *models.AssetAllocation) (*EvaluationResult, error) {
	result := &EvaluationResult{AllocationID: allocation.ID}

	switch allocation.Status {
	case models.AllocationStatusPending, models.AllocationStatusActive:
	default:
		// Terminal states never move again
		result.Action = ActionSkipped
		result.RiskLevel = domain.RiskLow
		return result, nil
	}

	now := s.clock.Now()
	period := now.Format("2006-01")
	if allocation.LastCheckedPeriod == period {
		result.Action = ActionSkipped
		result.RiskLevel = domain.RiskLow
		return result, nil
	}

	factors, err := s.riskFactors(ctx, allocation)
	if err != nil {
		return nil, err
	}
	result.RiskFactors = factors
	result.RiskLevel = domain.RiskLevelFor(len(factors))

	allocation.LastCheckedPeriod = period

	switch {
	case len(factors) == 0:
		monthsElapsed := domain.MonthsBetween(allocation.AllocatedAt, now)
		if monthsElapsed >= allocation.MaintenancePeriodMonths {
			completedAt := now
			allocation.Status = models.AllocationStatusCompleted
			allocation.CompletedAt = &completedAt
			result.Action = ActionCompleted
			log.Printf("🏆 Allocation %d completed after %d month(s)", allocation.ID, monthsElapsed)
		} else {
			if allocation.Status == models.AllocationStatusPending {
				allocation.Status = models.AllocationStatusActive
			}
			result.Action = ActionMaintained
		}
		return result, s.allocationRepo.Update(ctx, allocation)

	case len(factors) < 3:
		// Warning territory: standing slipped but the allocation survives
		result.Action = ActionViolated
		log.Printf("⚠️ Allocation %d violated maintenance (%v)", allocation.ID, factors)
		return result, s.allocationRepo.Update(ctx, allocation)

	default:
		allocation.Status = models.AllocationStatusForfeited
		result.Action = ActionForfeited
		log.Printf("🛑 Allocation %d forfeited, asset %d returned to pool", allocation.ID, allocation.AssetID)
		return result, s.allocationRepo.ForfeitAndReleaseAsset(ctx, allocation, now)
	}
}

// riskFactors checks the owner's standing against the asset type's
// maintenance requirements
func (s *AssetService) riskFactors(ctx context.Context, allocation *models.AssetAllocation) ([]string, error) {
	req, err := domain.MaintenanceRequirementFor(domain.AssetType(allocation.AssetType))
	if err != nil {
		return nil, err
	}

	stats, err := s.statsProvider.GetStats(ctx, allocation.UserID)
	if err != nil {
		return nil, err
	}

	var factors []string
	if stats.ActiveReferralCount < req.MinActiveReferrals {
		factors = append(factors, "referral_deficit")
	}
	if stats.TeamVolume.LessThan(req.MinTeamVolume) {
		factors = append(factors, "volume_deficit")
	}
	if stats.CurrentTierRank < req.RequiredTierRank {
		factors = append(factors, "tier_mismatch")
	}
	return factors, nil
}

// ProcessAllEligibleAllocations runs the maintenance check over every PENDING
// and ACTIVE allocation. Per-allocation failures are counted, never aborting
// the run.
func (s *AssetService) ProcessAllEligibleAllocations(ctx context.Context) (*MaintenanceRunResult, error) {
	allocations, err := s.allocationRepo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}

	result := &MaintenanceRunResult{}
	for _, allocation := range allocations {
		result.Processed++

		evaluation, err := s.evaluateOne(ctx, allocation)
		if err != nil {
			result.Failed++
			log.Printf("❌ Maintenance check failed for allocation %d: %v", allocation.ID, err)
			continue
		}

		switch evaluation.Action {
		case ActionMaintained:
			result.Maintained++
		case ActionCompleted:
			result.Completed++
		case ActionViolated:
			result.Violated++
		case ActionForfeited:
			result.Forfeited++
		}
	}

	log.Printf("🧹 Maintenance run: processed=%d maintained=%d completed=%d violated=%d forfeited=%d failed=%d",
		result.Processed, result.Maintained, result.Completed, result.Violated, result.Forfeited, result.Failed)
	return result, nil
}

// RiskReport returns the current risk classification for an allocation
// without mutating it
func (s *AssetService) RiskReport(ctx context.Context, allocationID uint) (*EvaluationResult, error) {
	allocation, err := s.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, err
	}

	factors, err := s.riskFactors(ctx, allocation)
	if err != nil {
		return nil, err
	}

	return &EvaluationResult{
		AllocationID: allocation.ID,
		RiskFactors:  factors,
		RiskLevel:    domain.RiskLevelFor(len(factors)),
	}, nil
}

// QuoteBuyback prices the platform's repurchase of a completed allocation.
// Market value floors at 30% of the original; appreciating types (PROPERTY)
// exceed the original and are not capped.
func (s *AssetService) QuoteBuyback(ctx context.Context, allocationID uint) (*BuybackQuote, error) {
	allocation, err := s.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, err
	}

	if allocation.Status != models.AllocationStatusCompleted {
		return nil, domain.ErrBuybackNotCompleted
	}

	rate, err := domain.DepreciationRateFor(domain.AssetType(allocation.AssetType))
	if err != nil {
		return nil, err
	}

	monthsOwned := domain.MonthsBetween(allocation.AllocatedAt, s.clock.Now())

	depreciated := allocation.OriginalValue.Mul(
		decimal.NewFromInt(1).Sub(decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(int64(monthsOwned)))))
	floor := allocation.OriginalValue.Mul(decimal.NewFromFloat(0.3))

	marketValue := depreciated
	if floor.GreaterThan(marketValue) {
		marketValue = floor
	}

	return &BuybackQuote{
		AllocationID:  allocation.ID,
		OriginalValue: allocation.OriginalValue,
		MonthsOwned:   monthsOwned,
		MarketValue:   marketValue.Round(2),
		MaxOffer:      marketValue.Mul(decimal.NewFromFloat(0.9)).Round(2),
	}, nil
}

// RequestBuyback validates a buyback offer against the quote. Offers above
// the ceiling are rejected outright, never clamped.
func (s *AssetService) RequestBuyback(ctx context.Context, allocationID uint, offer decimal.Decimal) (*BuybackQuote, error) {
	if !offer.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	quote, err := s.QuoteBuyback(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	if offer.GreaterThan(quote.MaxOffer) {
		return nil, domain.ErrBuybackOfferTooHigh
	}

	log.Printf("🤝 Buyback accepted for allocation %d at %s (max %s)",
		allocationID, offer.String(), quote.MaxOffer.String())
	return quote, nil
}

// RecoverForfeited transitions a forfeited allocation to RECOVERED and puts
// the physical asset back in circulation
func (s *AssetService) RecoverForfeited(ctx context.Context, allocationID uint) (*models.AssetAllocation, error) {
	allocation, err := s.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, err
	}

	if allocation.Status != models.AllocationStatusForfeited {
		return nil, domain.ErrRecoveryNotForfeited
	}

	allocation.Status = models.AllocationStatusRecovered
	if err := s.allocationRepo.RecoverAndRestock(ctx, allocation); err != nil {
		return nil, err
	}

	log.Printf("♻️ Allocation %d recovered, asset %d restocked", allocation.ID, allocation.AssetID)
	return allocation, nil
}

// ListByUser lists a user's allocations
func (s *AssetService) ListByUser(ctx context.Context, userID uint) ([]*models.AssetAllocation, error) {
	return s.allocationRepo.ListByUser(ctx, userID)
}
