package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/core/domain"
)

// CommissionService computes referral commissions from package purchases and
// the monthly team-volume bonus run
type CommissionService struct {
	commissionRepo    repositories.CommissionRepository
	orderRepo         repositories.OrderRepository
	qualificationRepo repositories.QualificationRepository
	userRepo          repositories.UserRepository
	uplineResolver    UplineResolver
	statsProvider     UserStatsProvider
	tierService       *TierService
	clock             Clock
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	commissionRepo repositories.CommissionRepository,
	orderRepo repositories.OrderRepository,
	qualificationRepo repositories.QualificationRepository,
	userRepo repositories.UserRepository,
	uplineResolver UplineResolver,
	statsProvider UserStatsProvider,
	tierService *TierService,
	clock Clock,
) *CommissionService {
	return &CommissionService{
		commissionRepo:    commissionRepo,
		orderRepo:         orderRepo,
		qualificationRepo: qualificationRepo,
		userRepo:          userRepo,
		uplineResolver:    uplineResolver,
		statsProvider:     statsProvider,
		tierService:       tierService,
		clock:             clock,
	}
}

// PurchaseInput represents a package purchase event
type PurchaseInput struct {
	BuyerID     uint            `json:"buyer_id"`
	PackageType string          `json:"package_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseResult represents the outcome of a processed purchase
type PurchaseResult struct {
	Order       *models.PackageOrder `json:"order"`
	Commissions []*models.Commission `json:"commissions"`
}

// BatchResult aggregates counters for a batch run
type BatchResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// ProcessPurchase records the purchase and pays out the upline chain.
// One commission per upline level whose rate is non-zero; levels 1-3 use the
// ancestor's tier rates, levels 4-5 use the fixed platform schedule. A missing
// ancestor halts only that branch. After payout every participant gets a tier
// advancement re-check.
func (s *CommissionService) ProcessPurchase(ctx context.Context, input *PurchaseInput) (*PurchaseResult, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	buyer, err := s.userRepo.GetByID(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	order := &models.PackageOrder{
		BuyerID:     buyer.ID,
		PackageType: input.PackageType,
		Amount:      input.Amount,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	chain, err := s.uplineResolver.GetUplineChain(ctx, buyer.ID, domain.MaxUplineDepth)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	commissions := make([]*models.Commission, 0, len(chain))

	for i, ancestorID := range chain {
		level := i + 1

		rate, err := s.rateForAncestor(ctx, ancestorID, level)
		if err != nil {
			// A broken branch doesn't stop payout for the remaining levels
			log.Printf("⚠️ Skipping commission level %d (ancestor %d): %v", level, ancestorID, err)
			continue
		}
		if rate == 0 {
			continue
		}

		commission := &models.Commission{
			EarnerID:     ancestorID,
			SourceUserID: buyer.ID,
			OrderID:      &order.ID,
			Level:        level,
			Type:         models.CommissionTypeReferral,
			Amount:       percentOf(input.Amount, rate),
			Status:       models.CommissionStatusPending,
			EarnedAt:     now,
		}

		if err := s.commissionRepo.Create(ctx, commission); err != nil {
			log.Printf("❌ Commission create failed (level %d, ancestor %d): %v", level, ancestorID, err)
			continue
		}
		commissions = append(commissions, commission)
	}

	// Purchases move team volume, so buyer and upline may now qualify higher
	s.recheckTiers(ctx, append([]uint{buyer.ID}, chain...))

	log.Printf("💰 Purchase %d by user %d: %d commission(s) created", order.ID, buyer.ID, len(commissions))
	return &PurchaseResult{Order: order, Commissions: commissions}, nil
}

// rateForAncestor resolves the commission rate for an upline level.
// Levels 4 and 5 are fixed platform-wide; 1-3 come from the ancestor's tier.
func (s *CommissionService) rateForAncestor(ctx context.Context, ancestorID uint, level int) (float64, error) {
	switch level {
	case 4:
		return domain.Level4RatePercent, nil
	case 5:
		return domain.Level5RatePercent, nil
	}

	if _, err := s.userRepo.GetByID(ctx, ancestorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	q, err := s.qualificationRepo.GetByUserID(ctx, ancestorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unranked ancestors earn nothing on tier-rated levels
			return 0, nil
		}
		return 0, err
	}
	if q.Tier == nil {
		return 0, nil
	}

	return q.Tier.RateForLevel(level), nil
}

// recheckTiers runs a tier advancement check for each user, logging failures
func (s *CommissionService) recheckTiers(ctx context.Context, userIDs []uint) {
	for _, id := range userIDs {
		if _, err := s.tierService.Evaluate(ctx, id); err != nil {
			log.Printf("⚠️ Tier re-check failed for user %d: %v", id, err)
		}
	}
}

// ProcessMonthlyTeamVolumeBonuses pays the team-volume bonus to every ranked
// user with positive team volume. Per-user failures are logged and counted,
// never aborting the batch. Users already paid this period are skipped, so
// re-running the batch after a partial failure never double-pays.
func (s *CommissionService) ProcessMonthlyTeamVolumeBonuses(ctx context.Context) (*BatchResult, error) {
	userIDs, err := s.userRepo.ListActiveMemberIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result := &BatchResult{}

	for _, userID := range userIDs {
		result.Processed++

		created, err := s.payTeamVolumeBonus(ctx, userID, now)
		if err != nil {
			result.Failed++
			log.Printf("❌ Team-volume bonus failed for user %d: %v", userID, err)
			continue
		}
		if created {
			result.Created++
		}
	}

	log.Printf("📊 Team-volume bonus run: processed=%d created=%d failed=%d",
		result.Processed, result.Created, result.Failed)
	return result, nil
}

func (s *CommissionService) payTeamVolumeBonus(ctx context.Context, userID uint, now time.Time) (bool, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	paid, err := s.commissionRepo.ExistsByEarnerAndTypeSince(ctx, userID, models.CommissionTypeTeamVolume, monthStart)
	if err != nil {
		return false, err
	}
	if paid {
		return false, nil // already paid this period
	}

	stats, err := s.statsProvider.GetStats(ctx, userID)
	if err != nil {
		return false, err
	}
	if !stats.TeamVolume.IsPositive() {
		return false, nil
	}

	q, err := s.qualificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // no tier assigned, no bonus
		}
		return false, err
	}
	if q.Tier == nil {
		return false, nil
	}

	bonus := percentOf(stats.TeamVolume, q.Tier.TeamVolumeBonusRate)
	if !bonus.IsPositive() {
		return false, nil
	}

	commission := &models.Commission{
		EarnerID:     userID,
		SourceUserID: userID,
		Level:        0,
		Type:         models.CommissionTypeTeamVolume,
		Amount:       bonus,
		Status:       models.CommissionStatusPending,
		EarnedAt:     now,
	}
	if err := s.commissionRepo.Create(ctx, commission); err != nil {
		return false, err
	}
	return true, nil
}

// MarkPaid transitions a commission from PENDING to PAID
func (s *CommissionService) MarkPaid(ctx context.Context, commissionID uint) (*models.Commission, error) {
	commission, err := s.commissionRepo.GetByID(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}

	if commission.Status != models.CommissionStatusPending {
		return nil, domain.ErrCommissionNotPending
	}

	now := s.clock.Now()
	commission.Status = models.CommissionStatusPaid
	commission.PaidAt = &now

	if err := s.commissionRepo.Update(ctx, commission); err != nil {
		return nil, err
	}
	return commission, nil
}

// ListByEarner lists a user's commissions with pagination
func (s *CommissionService) ListByEarner(ctx context.Context, earnerID uint, offset, limit int) ([]*models.Commission, int64, error) {
	return s.commissionRepo.ListByEarner(ctx, earnerID, offset, limit)
}

// percentOf returns amount * rate / 100 rounded to 2 decimal places
func percentOf(amount decimal.Decimal, rate float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(rate)).Div(decimal.NewFromInt(100)).Round(2)
}
