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

// TierService evaluates tier qualification: advancement on demand and the
// monthly maintain/downgrade sweep
type TierService struct {
	qualificationRepo repositories.QualificationRepository
	tierRepo          repositories.TierRepository
	commissionRepo    repositories.CommissionRepository
	statsProvider     UserStatsProvider
	clock             Clock
}

// NewTierService creates a new tier qualification service
func NewTierService(
	qualificationRepo repositories.QualificationRepository,
	tierRepo repositories.TierRepository,
	commissionRepo repositories.CommissionRepository,
	statsProvider UserStatsProvider,
	clock Clock,
) *TierService {
	return &TierService{
		qualificationRepo: qualificationRepo,
		tierRepo:          tierRepo,
		commissionRepo:    commissionRepo,
		statsProvider:     statsProvider,
		clock:             clock,
	}
}

// EvaluateResult represents the outcome of a single-user tier check
type EvaluateResult struct {
	Qualified        bool            `json:"qualified"`
	Upgraded         bool            `json:"upgraded"`
	OldTier          string          `json:"old_tier"`
	NewTier          string          `json:"new_tier"`
	AchievementBonus decimal.Decimal `json:"achievement_bonus"`
}

// SweepResult aggregates the monthly sweep counters
type SweepResult struct {
	Maintained         int `json:"maintained"`
	Downgraded         int `json:"downgraded"`
	ConsecutiveUpdated int `json:"consecutive_updated"`
	Failed             int `json:"failed"`
}

// InitQualification creates the floor-tier qualification row for a new user
func (s *TierService) InitQualification(ctx context.Context, userID uint) (*models.TierQualification, error) {
	lowest, err := s.tierRepo.GetLowest(ctx)
	if err != nil {
		return nil, domain.ErrTierNotFound
	}

	q := &models.TierQualification{
		UserID: userID,
		TierID: lowest.ID,
	}
	if err := s.qualificationRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Evaluate checks whether the user advances to the next tier. Advancement is
// strictly one tier per call: a user whose stats also satisfy higher tiers
// still moves up a single rank and must be re-evaluated to climb further.
func (s *TierService) Evaluate(ctx context.Context, userID uint) (*EvaluateResult, error) {
	q, err := s.qualificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		q, err = s.InitQualification(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	current := q.Tier
	if current == nil {
		current, err = s.tierRepo.GetByID(ctx, q.TierID)
		if err != nil {
			return nil, domain.ErrTierNotFound
		}
	}

	stats, err := s.statsProvider.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &EvaluateResult{
		Qualified:        s.meetsRequirements(stats, current),
		OldTier:          current.Name,
		NewTier:          current.Name,
		AchievementBonus: decimal.Zero,
	}

	next, err := s.tierRepo.GetByRank(ctx, current.Rank+1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Highest tier: advancement is a no-op, not an error
			return result, nil
		}
		return nil, err
	}

	if !s.meetsRequirements(stats, next) {
		return result, nil
	}

	// Advance exactly one tier and restart the qualification streak
	q.TierID = next.ID
	q.ConsecutiveMonths = 0
	q.IsPermanent = false
	if err := s.qualificationRepo.Update(ctx, q); err != nil {
		return nil, err
	}

	result.Qualified = true
	result.Upgraded = true
	result.NewTier = next.Name
	result.AchievementBonus = next.AchievementBonus

	if next.AchievementBonus.IsPositive() {
		bonus := &models.Commission{
			EarnerID:     userID,
			SourceUserID: userID,
			Level:        0,
			Type:         models.CommissionTypeAchievement,
			Amount:       next.AchievementBonus,
			Status:       models.CommissionStatusPending,
			EarnedAt:     s.clock.Now(),
		}
		if err := s.commissionRepo.Create(ctx, bonus); err != nil {
			// The advancement already happened; surface the bonus failure
			log.Printf("❌ Achievement bonus credit failed for user %d: %v", userID, err)
		}
	}

	log.Printf("⬆️ User %d advanced: %s → %s", userID, result.OldTier, result.NewTier)
	return result, nil
}

// SweepMonthly runs the maintain/downgrade pass over every qualification.
// A second run in the same period is a per-user no-op, so re-running the job
// after a partial failure is safe.
func (s *TierService) SweepMonthly(ctx context.Context) (*SweepResult, error) {
	qs, err := s.qualificationRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	period := s.clock.Now().Format("2006-01")
	result := &SweepResult{}

	for _, q := range qs {
		if q.LastEvaluatedPeriod == period {
			continue
		}

		if err := s.sweepOne(ctx, q, period, result); err != nil {
			result.Failed++
			log.Printf("❌ Tier sweep failed for user %d: %v", q.UserID, err)
		}
	}

	log.Printf("🧹 Tier sweep [%s]: maintained=%d downgraded=%d updated=%d failed=%d",
		period, result.Maintained, result.Downgraded, result.ConsecutiveUpdated, result.Failed)
	return result, nil
}

func (s *TierService) sweepOne(ctx context.Context, q *models.TierQualification, period string, result *SweepResult) error {
	current := q.Tier
	if current == nil {
		var err error
		current, err = s.tierRepo.GetByID(ctx, q.TierID)
		if err != nil {
			return domain.ErrTierNotFound
		}
	}

	stats, err := s.statsProvider.GetStats(ctx, q.UserID)
	if err != nil {
		return err
	}

	q.LastEvaluatedPeriod = period

	if s.meetsRequirements(stats, current) {
		q.ConsecutiveMonths++
		if q.ConsecutiveMonths >= domain.PermanentTierMonths {
			q.IsPermanent = true
		}
		if err := s.qualificationRepo.Update(ctx, q); err != nil {
			return err
		}
		result.Maintained++
		result.ConsecutiveUpdated++
		return nil
	}

	if q.IsPermanent {
		// Permanent standing is never auto-downgraded
		if err := s.qualificationRepo.Update(ctx, q); err != nil {
			return err
		}
		result.Maintained++
		return nil
	}

	previous, err := s.tierRepo.GetByRank(ctx, current.Rank-1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Floor tier has no downgrade target
			if err := s.qualificationRepo.Update(ctx, q); err != nil {
				return err
			}
			result.Maintained++
			return nil
		}
		return err
	}

	q.TierID = previous.ID
	q.ConsecutiveMonths = 0
	if err := s.qualificationRepo.Update(ctx, q); err != nil {
		return err
	}
	result.Downgraded++
	log.Printf("⬇️ User %d downgraded: %s → %s", q.UserID, current.Name, previous.Name)
	return nil
}

// meetsRequirements checks a user's stats against a tier's thresholds
func (s *TierService) meetsRequirements(stats *domain.UserStats, tier *models.Tier) bool {
	return stats.ActiveReferralCount >= tier.RequiredActiveReferrals &&
		stats.TeamVolume.GreaterThanOrEqual(tier.RequiredTeamVolume)
}

// UpdateTier saves admin changes to tier master data. Requirements must stay
// monotonic in rank: a tier may never demand less than the rank below it or
// more than the rank above it.
func (s *TierService) UpdateTier(ctx context.Context, tier *models.Tier) error {
	if err := s.checkLadderMonotonic(ctx, tier); err != nil {
		return err
	}
	return s.tierRepo.Update(ctx, tier)
}

func (s *TierService) checkLadderMonotonic(ctx context.Context, tier *models.Tier) error {
	lower, err := s.tierRepo.GetByRank(ctx, tier.Rank-1)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if lower != nil && lower.ID != tier.ID {
		if tier.RequiredActiveReferrals < lower.RequiredActiveReferrals ||
			tier.RequiredTeamVolume.LessThan(lower.RequiredTeamVolume) {
			return domain.ErrTierNotMonotonic
		}
	}

	higher, err := s.tierRepo.GetByRank(ctx, tier.Rank+1)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if higher != nil && higher.ID != tier.ID {
		if tier.RequiredActiveReferrals > higher.RequiredActiveReferrals ||
			tier.RequiredTeamVolume.GreaterThan(higher.RequiredTeamVolume) {
			return domain.ErrTierNotMonotonic
		}
	}
	return nil
}

// GetStatus returns a user's qualification with tier details
func (s *TierService) GetStatus(ctx context.Context, userID uint) (*models.TierQualification, error) {
	q, err := s.qualificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQualificationNotFound
		}
		return nil, err
	}
	return q, nil
}
