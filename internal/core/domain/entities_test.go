package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "one day short of a month",
			a:    time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "exactly one month",
			a:    time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "across year boundary",
			a:    time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			want: 10,
		},
		{
			name: "b before a clamps to zero",
			a:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(tt.a, tt.b))
		})
	}
}

func TestRiskLevelFor(t *testing.T) {
	assert.Equal(t, RiskLow, RiskLevelFor(0))
	assert.Equal(t, RiskMedium, RiskLevelFor(1))
	assert.Equal(t, RiskHigh, RiskLevelFor(2))
	assert.Equal(t, RiskHigh, RiskLevelFor(3))
}

func TestMaintenanceRequirementFor(t *testing.T) {
	// Requirements scale with the asset catalog, cheapest to priciest
	prev := MaintenanceRequirement{}
	for _, assetType := range AssetTypes {
		req, err := MaintenanceRequirementFor(assetType)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, req.RequiredTierRank, prev.RequiredTierRank, "tier rank for %s", assetType)
		assert.GreaterOrEqual(t, req.MinActiveReferrals, prev.MinActiveReferrals, "referrals for %s", assetType)
		assert.True(t, req.MinTeamVolume.GreaterThanOrEqual(prev.MinTeamVolume), "volume for %s", assetType)
		prev = req
	}

	_, err := MaintenanceRequirementFor(AssetType("YACHT"))
	assert.ErrorIs(t, err, ErrUnknownAssetType)
}

func TestDepreciationRateFor(t *testing.T) {
	rate, err := DepreciationRateFor(AssetProperty)
	require.NoError(t, err)
	assert.Negative(t, rate, "property appreciates")

	rate, err = DepreciationRateFor(AssetCar)
	require.NoError(t, err)
	assert.Positive(t, rate)

	_, err = DepreciationRateFor(AssetType("YACHT"))
	assert.ErrorIs(t, err, ErrUnknownAssetType)
}

func TestIsValidAssetType(t *testing.T) {
	for _, assetType := range AssetTypes {
		assert.True(t, IsValidAssetType(string(assetType)))
	}
	assert.False(t, IsValidAssetType("YACHT"))
	assert.False(t, IsValidAssetType(""))
}
