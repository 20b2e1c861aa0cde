package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/core/domain"
)

type assetFixture struct {
	svc         *AssetService
	allocations *fakeAllocationRepo
	assets      *fakeAssetRepo
	users       *fakeUserRepo
	stats       *fakeStatsProvider
	clock       *fixedClock
}

func newAssetFixture(now time.Time) *assetFixture {
	assets := newFakeAssetRepo()
	f := &assetFixture{
		allocations: newFakeAllocationRepo(assets),
		assets:      assets,
		users:       newFakeUserRepo(),
		stats:       &fakeStatsProvider{stats: make(map[uint]*domain.UserStats)},
		clock:       &fixedClock{now: now},
	}
	f.users.users[1] = &models.User{Username: "member"}
	f.users.users[1].ID = 1
	f.svc = NewAssetService(f.allocations, f.assets, f.users, f.stats, f.clock)
	return f
}

func (f *assetFixture) stockAsset(assetType string, value int64) *models.PhysicalAsset {
	asset := &models.PhysicalAsset{
		AssetType: assetType,
		Label:     assetType,
		Value:     decimal.NewFromInt(value),
		Status:    models.AssetStatusAvailable,
	}
	_ = f.assets.Create(context.Background(), asset)
	return asset
}

// carOwnerStats satisfies the CAR maintenance row (rank 4, 25 referrals, 150k)
func carOwnerStats() *domain.UserStats {
	return &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 30,
		TeamVolume:          decimal.NewFromInt(200000),
		CurrentTierRank:     4,
	}
}

func TestAssetService_AllocateAsset(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	asset := f.stockAsset("CAR", 25000)

	allocation, err := f.svc.AllocateAsset(ctx, &AllocateAssetInput{UserID: 1, AssetType: "CAR"})
	require.NoError(t, err)

	assert.Equal(t, models.AllocationStatusPending, allocation.Status)
	assert.Equal(t, uint(1), allocation.UserID)
	assert.Equal(t, asset.ID, allocation.AssetID)
	assert.True(t, decimal.NewFromInt(25000).Equal(allocation.OriginalValue))
	assert.Equal(t, DefaultMaintenancePeriodMonths, allocation.MaintenancePeriodMonths)
	assert.Equal(t, f.clock.now, allocation.AllocatedAt)

	assert.Equal(t, models.AssetStatusAllocated, asset.Status)
	require.NotNil(t, asset.OwnerID)
	assert.Equal(t, uint(1), *asset.OwnerID)
}

func TestAssetService_AllocateAsset_Errors(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("unknown asset type", func(t *testing.T) {
		_, err := f.svc.AllocateAsset(ctx, &AllocateAssetInput{UserID: 1, AssetType: "YACHT"})
		assert.ErrorIs(t, err, domain.ErrUnknownAssetType)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.AllocateAsset(ctx, &AllocateAssetInput{UserID: 42, AssetType: "CAR"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("out of stock", func(t *testing.T) {
		_, err := f.svc.AllocateAsset(ctx, &AllocateAssetInput{UserID: 1, AssetType: "CAR"})
		assert.ErrorIs(t, err, domain.ErrAssetNotAvailable)
	})
}

func TestAssetService_EvaluateAllocation_MaintainActivatesPending(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	f.stats.stats[1] = carOwnerStats()

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusPending,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	result, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionMaintained, result.Action)
	assert.Empty(t, result.RiskFactors)
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
	assert.Equal(t, models.AllocationStatusActive, allocation.Status)
	assert.Equal(t, "2026-08", allocation.LastCheckedPeriod)
}

func TestAssetService_EvaluateAllocation_CompletesAfterFullPeriod(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	f.stats.stats[1] = carOwnerStats()

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	result, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionCompleted, result.Action)
	assert.Equal(t, models.AllocationStatusCompleted, allocation.Status)
	require.NotNil(t, allocation.CompletedAt)
	assert.Equal(t, f.clock.now, *allocation.CompletedAt)
}

func TestAssetService_EvaluateAllocation_ViolationKeepsAllocation(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Two failing factors: referrals and volume below the CAR row, rank holds
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 10,
		TeamVolume:          decimal.NewFromInt(100000),
		CurrentTierRank:     4,
	}

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	result, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionViolated, result.Action)
	assert.ElementsMatch(t, []string{"referral_deficit", "volume_deficit"}, result.RiskFactors)
	assert.Equal(t, domain.RiskHigh, result.RiskLevel)
	assert.Equal(t, models.AllocationStatusActive, allocation.Status, "a violation is a warning, not a forfeiture")
}

func TestAssetService_EvaluateAllocation_ForfeitsAndReleasesAsset(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// All three factors fail
	f.stats.stats[1] = &domain.UserStats{UserID: 1, CurrentTierRank: 1}

	asset := f.stockAsset("CAR", 25000)
	asset.Status = models.AssetStatusAllocated
	ownerID := uint(1)
	asset.OwnerID = &ownerID

	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	result, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionForfeited, result.Action)
	assert.Equal(t, models.AllocationStatusForfeited, allocation.Status)
	require.NotNil(t, allocation.ForfeitedAt)

	assert.Equal(t, models.AssetStatusAvailable, asset.Status, "forfeited assets return to the pool")
	assert.Nil(t, asset.OwnerID)
}

func TestAssetService_EvaluateAllocation_SamePeriodIsSkipped(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	f.stats.stats[1] = carOwnerStats()

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	first, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionMaintained, first.Action)

	second, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, second.Action)
}

func TestAssetService_EvaluateAllocation_TerminalStatusIsSkipped(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           asset.Value,
		Status:                  models.AllocationStatusCompleted,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	result, err := f.svc.EvaluateAllocation(ctx, allocation.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, result.Action)
}

func TestAssetService_ProcessAllEligibleAllocations(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	f.stats.stats[1] = carOwnerStats()

	asset1 := f.stockAsset("CAR", 25000)
	asset2 := f.stockAsset("CAR", 25000)

	// Maintains: owner in good standing, period not yet served
	require.NoError(t, f.allocations.Create(ctx, &models.AssetAllocation{
		UserID: 1, AssetID: asset1.ID, AssetType: "CAR",
		OriginalValue: asset1.Value, Status: models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}))

	// Fails: owner has no stats
	require.NoError(t, f.allocations.Create(ctx, &models.AssetAllocation{
		UserID: 9, AssetID: asset2.ID, AssetType: "CAR",
		OriginalValue: asset2.Value, Status: models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}))

	result, err := f.svc.ProcessAllEligibleAllocations(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Maintained)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Forfeited)
}

func TestAssetService_RiskReport_DoesNotMutate(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// One failing factor: volume below the CAR row
	f.stats.stats[1] = &domain.UserStats{
		UserID:              1,
		ActiveReferralCount: 30,
		TeamVolume:          decimal.NewFromInt(100000),
		CurrentTierRank:     4,
	}

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue: asset.Value, Status: models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	report, err := f.svc.RiskReport(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"volume_deficit"}, report.RiskFactors)
	assert.Equal(t, domain.RiskMedium, report.RiskLevel)
	assert.Empty(t, allocation.LastCheckedPeriod, "a report never consumes the period check")
}

func TestAssetService_QuoteBuyback_DepreciatingAsset(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("CAR", 10000)
	completedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           decimal.NewFromInt(10000),
		Status:                  models.AllocationStatusCompleted,
		MaintenancePeriodMonths: 6,
		AllocatedAt:             time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC),
		CompletedAt:             &completedAt,
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	quote, err := f.svc.QuoteBuyback(ctx, allocation.ID)
	require.NoError(t, err)

	// 10 months at 1% monthly: 10000 * 0.90
	assert.Equal(t, 10, quote.MonthsOwned)
	assert.Equal(t, "9000", quote.MarketValue.String())
	assert.Equal(t, "8100", quote.MaxOffer.String())
}

func TestAssetService_QuoteBuyback_FloorsAtThirtyPercent(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("SMARTPHONE", 800)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "SMARTPHONE",
		OriginalValue:           decimal.NewFromInt(800),
		Status:                  models.AllocationStatusCompleted,
		MaintenancePeriodMonths: 6,
		// 48 months at 2% would depreciate past zero; the floor holds
		AllocatedAt: time.Date(2022, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	quote, err := f.svc.QuoteBuyback(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, "240", quote.MarketValue.String(), "30%% of the original value")
	assert.Equal(t, "216", quote.MaxOffer.String())
}

func TestAssetService_QuoteBuyback_AppreciatingPropertyIsUncapped(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("PROPERTY", 100000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "PROPERTY",
		OriginalValue:           decimal.NewFromInt(100000),
		Status:                  models.AllocationStatusCompleted,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	quote, err := f.svc.QuoteBuyback(ctx, allocation.ID)
	require.NoError(t, err)

	// 12 months at -0.5% monthly: 100000 * 1.06
	assert.Equal(t, 12, quote.MonthsOwned)
	assert.Equal(t, "106000", quote.MarketValue.String())
	assert.Equal(t, "95400", quote.MaxOffer.String())
}

func TestAssetService_QuoteBuyback_RequiresCompletedAllocation(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("CAR", 25000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue: asset.Value, Status: models.AllocationStatusActive,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	_, err := f.svc.QuoteBuyback(ctx, allocation.ID)
	assert.ErrorIs(t, err, domain.ErrBuybackNotCompleted)

	_, err = f.svc.QuoteBuyback(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAllocationNotFound)
}

func TestAssetService_RequestBuyback_RejectsOfferAboveCeiling(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("CAR", 10000)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "CAR",
		OriginalValue:           decimal.NewFromInt(10000),
		Status:                  models.AllocationStatusCompleted,
		MaintenancePeriodMonths: 6,
		AllocatedAt:             time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	// Max offer is 8100; above-ceiling offers are rejected, never clamped
	_, err := f.svc.RequestBuyback(ctx, allocation.ID, decimal.NewFromInt(8200))
	assert.ErrorIs(t, err, domain.ErrBuybackOfferTooHigh)

	quote, err := f.svc.RequestBuyback(ctx, allocation.ID, decimal.NewFromInt(8100))
	require.NoError(t, err)
	assert.Equal(t, "8100", quote.MaxOffer.String())

	_, err = f.svc.RequestBuyback(ctx, allocation.ID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestAssetService_RecoverForfeited(t *testing.T) {
	f := newAssetFixture(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	asset := f.stockAsset("TABLET", 600)
	allocation := &models.AssetAllocation{
		UserID: 1, AssetID: asset.ID, AssetType: "TABLET",
		OriginalValue: asset.Value, Status: models.AllocationStatusForfeited,
		MaintenancePeriodMonths: 12,
		AllocatedAt:             time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.allocations.Create(ctx, allocation))

	recovered, err := f.svc.RecoverForfeited(ctx, allocation.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AllocationStatusRecovered, recovered.Status)
	assert.Equal(t, models.AssetStatusAvailable, asset.Status)

	// Only forfeited allocations can be recovered
	_, err = f.svc.RecoverForfeited(ctx, allocation.ID)
	assert.ErrorIs(t, err, domain.ErrRecoveryNotForfeited)
}
