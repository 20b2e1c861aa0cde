package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/core/domain"
)

type tierFixture struct {
	svc         *TierService
	quals       *fakeQualificationRepo
	tiers       *fakeTierRepo
	commissions *fakeCommissionRepo
	stats       *fakeStatsProvider
	clock       *fixedClock
}

func newTierFixture(now time.Time) *tierFixture {
	f := &tierFixture{
		quals:       newFakeQualificationRepo(),
		tiers:       &fakeTierRepo{tiers: testTierLadder()},
		commissions: &fakeCommissionRepo{},
		stats:       &fakeStatsProvider{stats: make(map[uint]*domain.UserStats)},
		clock:       &fixedClock{now: now},
	}
	f.svc = NewTierService(f.quals, f.tiers, f.commissions, f.stats, f.clock)
	return f
}

func TestTierService_InitQualification(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

	q, err := f.svc.InitQualification(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), q.UserID)
	assert.Equal(t, uint(1), q.TierID, "new users start at the floor tier")
	assert.Equal(t, 0, q.ConsecutiveMonths)
	assert.False(t, q.IsPermanent)
}

func TestTierService_Evaluate_AdvancesOneTierPerCall(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 1, TierID: 1}))

	// Stats satisfy Gold outright, but advancement is one rank at a time
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 10,
		TeamVolume:          decimal.NewFromInt(25000),
	}

	result, err := f.svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	assert.True(t, result.Upgraded)
	assert.Equal(t, "Bronze", result.OldTier)
	assert.Equal(t, "Silver", result.NewTier)
	assert.True(t, decimal.NewFromInt(50).Equal(result.AchievementBonus))

	q, err := f.quals.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.TierID)
	assert.Equal(t, 0, q.ConsecutiveMonths, "streak restarts on advancement")
	assert.False(t, q.IsPermanent)

	// Second call climbs the next rank and pays the Gold bonus
	result, err = f.svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Upgraded)
	assert.Equal(t, "Gold", result.NewTier)

	// Third call: Diamond requirements are not met, so the user stays put
	result, err = f.svc.Evaluate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, result.Upgraded)
	assert.Equal(t, "Gold", result.NewTier)

	bonuses := f.commissions.byType(models.CommissionTypeAchievement)
	require.Len(t, bonuses, 2)
	assert.True(t, decimal.NewFromInt(50).Equal(bonuses[0].Amount))
	assert.True(t, decimal.NewFromInt(200).Equal(bonuses[1].Amount))
	for _, b := range bonuses {
		assert.Equal(t, models.CommissionStatusPending, b.Status)
		assert.Equal(t, 0, b.Level)
		assert.Equal(t, uint(1), b.EarnerID)
	}
}

func TestTierService_Evaluate_NoBonusWhenBonusIsZero(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// No qualification row yet: Evaluate seeds one at the floor first
	f.stats.stats[2] = &domain.UserStats{
		UserID:              2,
		ActiveReferralCount: 1,
		TeamVolume:          decimal.NewFromInt(100),
	}

	result, err := f.svc.Evaluate(ctx, 2)
	require.NoError(t, err)

	assert.False(t, result.Upgraded)
	assert.Equal(t, "Bronze", result.NewTier)

	q, err := f.quals.GetByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(1), q.TierID)
	assert.Empty(t, f.commissions.byType(models.CommissionTypeAchievement))
}

func TestTierService_Evaluate_HighestTierIsNoOp(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 1, TierID: 5}))
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 200,
		TeamVolume:          decimal.NewFromInt(1000000),
	}

	result, err := f.svc.Evaluate(ctx, 1)
	require.NoError(t, err)

	assert.True(t, result.Qualified)
	assert.False(t, result.Upgraded)
	assert.Equal(t, "Elite", result.NewTier)
}

func TestTierService_SweepMonthly_MaintainBuildsPermanence(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{
		UserID: 1, TierID: 3, ConsecutiveMonths: 2,
	}))
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 12,
		TeamVolume:          decimal.NewFromInt(30000),
	}

	result, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Maintained)
	assert.Equal(t, 0, result.Downgraded)
	assert.Equal(t, 0, result.Failed)

	q, err := f.quals.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, q.ConsecutiveMonths)
	assert.True(t, q.IsPermanent, "three consecutive qualifying months lock the tier")
	assert.Equal(t, "2026-08", q.LastEvaluatedPeriod)
}

func TestTierService_SweepMonthly_SamePeriodIsIdempotent(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 1, TierID: 3}))
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 12,
		TeamVolume:          decimal.NewFromInt(30000),
	}

	_, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	// Re-running within the same period must not double-count the month
	second, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Maintained)

	q, err := f.quals.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, q.ConsecutiveMonths)
}

func TestTierService_SweepMonthly_DowngradesOneRank(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{
		UserID: 1, TierID: 3, ConsecutiveMonths: 1,
	}))
	// Standing only satisfies Silver now
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 4,
		TeamVolume:          decimal.NewFromInt(6000),
	}

	result, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downgraded)

	q, err := f.quals.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(2), q.TierID, "downgrade moves exactly one rank down")
	assert.Equal(t, 0, q.ConsecutiveMonths)
}

func TestTierService_SweepMonthly_PermanentTierHolds(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{
		UserID: 1, TierID: 3, ConsecutiveMonths: 5, IsPermanent: true,
	}))
	f.stats.stats[1] = &domain.UserStats{UserID: 1}

	result, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Maintained)
	assert.Equal(t, 0, result.Downgraded)

	q, err := f.quals.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), q.TierID, "permanent standing survives a bad month")
}

func TestTierService_SweepMonthly_CountsPerUserFailures(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 1, TierID: 1}))
	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 2, TierID: 1}))
	// Only user 1 has stats; user 2 fails but must not abort the sweep
	f.stats.stats[1] = &domain.UserStats{UserID: 1}

	result, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Maintained)
	assert.Equal(t, 1, result.Failed)
}

func TestTierService_SweepMonthly_FailedUpdateIsOnlyCountedAsFailed(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, f.quals.Create(ctx, &models.TierQualification{UserID: 1, TierID: 3}))
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 12,
		TeamVolume:          decimal.NewFromInt(30000),
	}
	f.quals.updateErr = gorm.ErrInvalidTransaction

	result, err := f.svc.SweepMonthly(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Maintained, "a failed write is not a maintained tier")
	assert.Equal(t, 0, result.ConsecutiveUpdated)
}

func TestTierService_UpdateTier_KeepsLadderMonotonic(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("requirements above the next rank are rejected", func(t *testing.T) {
		silver := *f.tiers.tiers[1]
		silver.RequiredActiveReferrals = 30 // Gold only asks for 10

		err := f.svc.UpdateTier(ctx, &silver)
		assert.ErrorIs(t, err, domain.ErrTierNotMonotonic)
	})

	t.Run("requirements below the previous rank are rejected", func(t *testing.T) {
		gold := *f.tiers.tiers[2]
		gold.RequiredTeamVolume = decimal.NewFromInt(1000) // Silver asks for 5000

		err := f.svc.UpdateTier(ctx, &gold)
		assert.ErrorIs(t, err, domain.ErrTierNotMonotonic)
	})

	t.Run("in-range update is saved", func(t *testing.T) {
		silver := *f.tiers.tiers[1]
		silver.RequiredActiveReferrals = 5
		silver.RequiredTeamVolume = decimal.NewFromInt(10000)

		require.NoError(t, f.svc.UpdateTier(ctx, &silver))

		saved, err := f.tiers.GetByID(ctx, silver.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, saved.RequiredActiveReferrals)
	})

	t.Run("floor and ceiling ranks only check their one neighbor", func(t *testing.T) {
		elite := *f.tiers.tiers[4]
		elite.RequiredActiveReferrals = 100

		require.NoError(t, f.svc.UpdateTier(ctx, &elite))
	})
}

func TestTierService_GetStatus_NotFound(t *testing.T) {
	f := newTierFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

	_, err := f.svc.GetStatus(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrQualificationNotFound)
}
