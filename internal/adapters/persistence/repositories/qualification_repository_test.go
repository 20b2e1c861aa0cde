package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rewardhub/internal/adapters/persistence/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

// A qualification loaded with its Tier preloaded still carries the old tier
// after the service reassigns TierID. The save must write the new foreign key
// and leave the tiers table alone.
func TestQualificationRepository_UpdateKeepsReassignedTier(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQualificationRepository(db)

	bronze := &models.Tier{
		ID: 1, Code: "BRONZE", Name: "Bronze", Rank: 1,
		RequiredTeamVolume: decimal.Zero,
		AchievementBonus:   decimal.Zero,
	}

	q := &models.TierQualification{
		ID:     1,
		UserID: 1,
		TierID: 2, // advanced to Silver
		Tier:   bronze,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tier_qualifications`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, uint(2), q.TierID, "stale preloaded Tier must not revert the advancement")
	assert.NoError(t, mock.ExpectationsWereMet(), "only the qualification row may be written")
}

func TestAllocationRepository_UpdateLeavesAssetAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAllocationRepository(db)

	allocation := &models.AssetAllocation{
		ID:            1,
		UserID:        1,
		AssetID:       1,
		AssetType:     "CAR",
		OriginalValue: decimal.NewFromInt(25000),
		Status:        models.AllocationStatusActive,
		Asset: &models.PhysicalAsset{
			ID: 1, AssetType: "CAR",
			Value:  decimal.NewFromInt(25000),
			Status: models.AssetStatusAllocated,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `asset_allocations`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), allocation)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet(), "the preloaded asset row must not be written")
}
