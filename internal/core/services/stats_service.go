package services

import (
	"context"
	"errors"
	"time"

	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/core/domain"

	"gorm.io/gorm"
)

// StatsService derives a user's current standing from referral and order
// records. Implements UserStatsProvider.
type StatsService struct {
	userRepo          repositories.UserRepository
	orderRepo         repositories.OrderRepository
	qualificationRepo repositories.QualificationRepository
	clock             Clock
}

// NewStatsService creates a new stats service
func NewStatsService(
	userRepo repositories.UserRepository,
	orderRepo repositories.OrderRepository,
	qualificationRepo repositories.QualificationRepository,
	clock Clock,
) *StatsService {
	return &StatsService{
		userRepo:          userRepo,
		orderRepo:         orderRepo,
		qualificationRepo: qualificationRepo,
		clock:             clock,
	}
}

// GetStats computes the user's standing for the current period.
// Team volume covers downline purchases (up to 5 levels) in the current
// calendar month.
func (s *StatsService) GetStats(ctx context.Context, userID uint) (*domain.UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	referralCount, err := s.userRepo.CountActiveDirectReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}

	downlineIDs, err := s.userRepo.GetDownlineUserIDs(ctx, userID, domain.MaxUplineDepth)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	teamVolume, err := s.orderRepo.SumAmountByBuyersSince(ctx, downlineIDs, periodStart)
	if err != nil {
		return nil, err
	}

	stats := &domain.UserStats{
		UserID:              userID,
		ActiveReferralCount: int(referralCount),
		TeamVolume:          teamVolume,
		TenureMonths:        domain.MonthsBetween(user.JoinedAt, now),
	}

	qualification, err := s.qualificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No qualification row yet: user counts as unranked
		return stats, nil
	}

	if qualification.Tier != nil {
		stats.CurrentTierRank = qualification.Tier.Rank
	}
	stats.ConsecutiveMonthsAtTier = qualification.ConsecutiveMonths

	return stats, nil
}
