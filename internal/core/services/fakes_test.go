package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/adapters/persistence/repositories"
	"rewardhub/internal/core/domain"
)

// fixedClock pins time for deterministic evaluations
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// fakeStatsProvider returns canned stats per user
type fakeStatsProvider struct {
	stats map[uint]*domain.UserStats
}

func (p *fakeStatsProvider) GetStats(_ context.Context, userID uint) (*domain.UserStats, error) {
	s, ok := p.stats[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s, nil
}

// fakeUplineResolver returns a canned ancestor chain
type fakeUplineResolver struct {
	chains map[uint][]uint
}

func (r *fakeUplineResolver) GetUplineChain(_ context.Context, userID uint, maxDepth int) ([]uint, error) {
	chain := r.chains[userID]
	if len(chain) > maxDepth {
		chain = chain[:maxDepth]
	}
	return chain, nil
}

// fakeUserRepo covers only what the engines call
type fakeUserRepo struct {
	repositories.UserRepository
	users     map[uint]*models.User
	memberIDs []uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListActiveMemberIDs(_ context.Context) ([]uint, error) {
	return r.memberIDs, nil
}

// fakeTierRepo holds the seeded ladder in rank order
type fakeTierRepo struct {
	repositories.TierRepository
	tiers []*models.Tier
}

func (r *fakeTierRepo) GetByID(_ context.Context, id uint) (*models.Tier, error) {
	for _, t := range r.tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTierRepo) GetByRank(_ context.Context, rank int) (*models.Tier, error) {
	for _, t := range r.tiers {
		if t.Rank == rank {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTierRepo) Update(_ context.Context, tier *models.Tier) error {
	for i, t := range r.tiers {
		if t.ID == tier.ID {
			r.tiers[i] = tier
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTierRepo) GetLowest(_ context.Context) (*models.Tier, error) {
	if len(r.tiers) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	lowest := r.tiers[0]
	for _, t := range r.tiers {
		if t.Rank < lowest.Rank {
			lowest = t
		}
	}
	return lowest, nil
}

// fakeCommissionRepo records created commissions in order
type fakeCommissionRepo struct {
	repositories.CommissionRepository
	commissions []*models.Commission
	nextID      uint
}

func (r *fakeCommissionRepo) Create(_ context.Context, c *models.Commission) error {
	r.nextID++
	c.ID = r.nextID
	r.commissions = append(r.commissions, c)
	return nil
}

func (r *fakeCommissionRepo) GetByID(_ context.Context, id uint) (*models.Commission, error) {
	for _, c := range r.commissions {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCommissionRepo) Update(_ context.Context, c *models.Commission) error {
	for i, existing := range r.commissions {
		if existing.ID == c.ID {
			r.commissions[i] = c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCommissionRepo) ExistsByEarnerAndTypeSince(_ context.Context, earnerID uint, commissionType string, since time.Time) (bool, error) {
	for _, c := range r.commissions {
		if c.EarnerID == earnerID && c.Type == commissionType && !c.EarnedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCommissionRepo) byType(commissionType string) []*models.Commission {
	var out []*models.Commission
	for _, c := range r.commissions {
		if c.Type == commissionType {
			out = append(out, c)
		}
	}
	return out
}

// fakeQualificationRepo keyed by user ID. Set updateErr to make every Update
// fail.
type fakeQualificationRepo struct {
	repositories.QualificationRepository
	byUser    map[uint]*models.TierQualification
	nextID    uint
	updateErr error
}

func newFakeQualificationRepo() *fakeQualificationRepo {
	return &fakeQualificationRepo{byUser: make(map[uint]*models.TierQualification)}
}

func (r *fakeQualificationRepo) Create(_ context.Context, q *models.TierQualification) error {
	r.nextID++
	q.ID = r.nextID
	r.byUser[q.UserID] = q
	return nil
}

func (r *fakeQualificationRepo) GetByUserID(_ context.Context, userID uint) (*models.TierQualification, error) {
	q, ok := r.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *fakeQualificationRepo) Update(_ context.Context, q *models.TierQualification) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.byUser[q.UserID] = q
	return nil
}

func (r *fakeQualificationRepo) ListAll(_ context.Context) ([]*models.TierQualification, error) {
	var out []*models.TierQualification
	for _, q := range r.byUser {
		out = append(out, q)
	}
	return out, nil
}

// fakeOrderRepo records orders
type fakeOrderRepo struct {
	repositories.OrderRepository
	orders []*models.PackageOrder
	nextID uint
}

func (r *fakeOrderRepo) Create(_ context.Context, o *models.PackageOrder) error {
	r.nextID++
	o.ID = r.nextID
	r.orders = append(r.orders, o)
	return nil
}

// fakeAllocationRepo keyed by allocation ID
type fakeAllocationRepo struct {
	repositories.AllocationRepository
	allocations map[uint]*models.AssetAllocation
	assets      *fakeAssetRepo
	nextID      uint
}

func newFakeAllocationRepo(assets *fakeAssetRepo) *fakeAllocationRepo {
	return &fakeAllocationRepo{allocations: make(map[uint]*models.AssetAllocation), assets: assets}
}

func (r *fakeAllocationRepo) Create(_ context.Context, a *models.AssetAllocation) error {
	r.nextID++
	a.ID = r.nextID
	r.allocations[a.ID] = a
	return nil
}

func (r *fakeAllocationRepo) GetByID(_ context.Context, id uint) (*models.AssetAllocation, error) {
	a, ok := r.allocations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAllocationRepo) Update(_ context.Context, a *models.AssetAllocation) error {
	r.allocations[a.ID] = a
	return nil
}

func (r *fakeAllocationRepo) ListByUser(_ context.Context, userID uint) ([]*models.AssetAllocation, error) {
	var out []*models.AssetAllocation
	for _, a := range r.allocations {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) ListEligible(_ context.Context) ([]*models.AssetAllocation, error) {
	var out []*models.AssetAllocation
	for _, a := range r.allocations {
		if a.Status == models.AllocationStatusPending || a.Status == models.AllocationStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) ForfeitAndReleaseAsset(_ context.Context, a *models.AssetAllocation, forfeitedAt time.Time) error {
	a.Status = models.AllocationStatusForfeited
	a.ForfeitedAt = &forfeitedAt
	r.allocations[a.ID] = a
	if asset, ok := r.assets.assets[a.AssetID]; ok {
		asset.Status = models.AssetStatusAvailable
		asset.OwnerID = nil
	}
	return nil
}

func (r *fakeAllocationRepo) RecoverAndRestock(_ context.Context, a *models.AssetAllocation) error {
	a.Status = models.AllocationStatusRecovered
	r.allocations[a.ID] = a
	if asset, ok := r.assets.assets[a.AssetID]; ok {
		asset.Status = models.AssetStatusAvailable
		asset.OwnerID = nil
	}
	return nil
}

// fakeAssetRepo keyed by asset ID
type fakeAssetRepo struct {
	repositories.AssetRepository
	assets map[uint]*models.PhysicalAsset
	nextID uint
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[uint]*models.PhysicalAsset)}
}

func (r *fakeAssetRepo) Create(_ context.Context, a *models.PhysicalAsset) error {
	r.nextID++
	a.ID = r.nextID
	r.assets[a.ID] = a
	return nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id uint) (*models.PhysicalAsset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAssetRepo) Update(_ context.Context, a *models.PhysicalAsset) error {
	r.assets[a.ID] = a
	return nil
}

func (r *fakeAssetRepo) GetFirstAvailableByType(_ context.Context, assetType string) (*models.PhysicalAsset, error) {
	var best *models.PhysicalAsset
	for _, a := range r.assets {
		if a.AssetType == assetType && a.Status == models.AssetStatusAvailable {
			if best == nil || a.ID < best.ID {
				best = a
			}
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

// testTierLadder builds the standard five-tier ladder used across tests
func testTierLadder() []*models.Tier {
	return []*models.Tier{
		{
			ID: 1, Code: "BRONZE", Name: "Bronze", Rank: 1,
			RequiredActiveReferrals: 0, RequiredTeamVolume: decimal.Zero,
			TeamVolumeBonusRate: 1.0, AchievementBonus: decimal.Zero,
			DirectReferralRate: 5.0, Level2Rate: 2.0, Level3Rate: 1.0,
		},
		{
			ID: 2, Code: "SILVER", Name: "Silver", Rank: 2,
			RequiredActiveReferrals: 3, RequiredTeamVolume: decimal.NewFromInt(5000),
			TeamVolumeBonusRate: 2.0, AchievementBonus: decimal.NewFromInt(50),
			DirectReferralRate: 7.0, Level2Rate: 3.0, Level3Rate: 1.0,
		},
		{
			ID: 3, Code: "GOLD", Name: "Gold", Rank: 3,
			RequiredActiveReferrals: 10, RequiredTeamVolume: decimal.NewFromInt(25000),
			TeamVolumeBonusRate: 3.0, AchievementBonus: decimal.NewFromInt(200),
			DirectReferralRate: 10.0, Level2Rate: 4.0, Level3Rate: 2.0,
		},
		{
			ID: 4, Code: "DIAMOND", Name: "Diamond", Rank: 4,
			RequiredActiveReferrals: 25, RequiredTeamVolume: decimal.NewFromInt(100000),
			TeamVolumeBonusRate: 4.0, AchievementBonus: decimal.NewFromInt(1000),
			DirectReferralRate: 12.0, Level2Rate: 5.0, Level3Rate: 2.0,
		},
		{
			ID: 5, Code: "ELITE", Name: "Elite", Rank: 5,
			RequiredActiveReferrals: 50, RequiredTeamVolume: decimal.NewFromInt(250000),
			TeamVolumeBonusRate: 5.0, AchievementBonus: decimal.NewFromInt(5000),
			DirectReferralRate: 15.0, Level2Rate: 6.0, Level3Rate: 3.0,
		},
	}
}
