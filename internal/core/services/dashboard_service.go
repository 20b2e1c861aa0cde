package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers   int64 `json:"total_users"`
	TotalAdmins  int64 `json:"total_admins"`
	TotalMembers int64 `json:"total_members"`
	ActiveUsers  int64 `json:"active_users"`

	// Commission Statistics
	TotalCommissions   int64   `json:"total_commissions"`
	PendingCommissions int64   `json:"pending_commissions"`
	PaidCommissions    int64   `json:"paid_commissions"`
	TotalPayout        float64 `json:"total_payout"`
	PendingPayout      float64 `json:"pending_payout"`

	// Order Statistics
	TotalOrders     int64   `json:"total_orders"`
	TotalVolume     float64 `json:"total_volume"`
	OrdersThisMonth int64   `json:"orders_this_month"`
	VolumeThisMonth float64 `json:"volume_this_month"`

	// Asset Statistics
	AvailableAssets      int64 `json:"available_assets"`
	ActiveAllocations    int64 `json:"active_allocations"`
	CompletedAllocations int64 `json:"completed_allocations"`
	ForfeitedAllocations int64 `json:"forfeited_allocations"`

	// Tier distribution
	TierDistribution []TierCount `json:"tier_distribution"`

	// Top Earners
	TopEarners []EarnerStats `json:"top_earners"`
}

// TierCount represents member count per tier
type TierCount struct {
	TierName string `json:"tier_name"`
	Rank     int    `json:"rank"`
	Members  int64  `json:"members"`
}

// EarnerStats represents a top earner row
type EarnerStats struct {
	UserID      uint    `json:"user_id"`
	Username    string  `json:"username"`
	TotalEarned float64 `json:"total_earned"`
	Commissions int64   `json:"commissions"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "ADMIN").Count(&data.TotalAdmins)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "MEMBER").Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("users").Where("is_active = ? AND deleted_at IS NULL", true).Count(&data.ActiveUsers)

	// Commission counts and payouts
	s.db.WithContext(ctx).Table("commissions").Count(&data.TotalCommissions)
	s.db.WithContext(ctx).Table("commissions").Where("status = ?", "PENDING").Count(&data.PendingCommissions)
	s.db.WithContext(ctx).Table("commissions").Where("status = ?", "PAID").Count(&data.PaidCommissions)

	s.db.WithContext(ctx).Table("commissions").
		Where("status = ?", "PAID").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalPayout)

	s.db.WithContext(ctx).Table("commissions").
		Where("status = ?", "PENDING").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.PendingPayout)

	// Order totals
	s.db.WithContext(ctx).Table("package_orders").Count(&data.TotalOrders)
	s.db.WithContext(ctx).Table("package_orders").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalVolume)

	// This month statistics
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("package_orders").
		Where("created_at >= ?", startOfMonth).
		Count(&data.OrdersThisMonth)

	s.db.WithContext(ctx).Table("package_orders").
		Where("created_at >= ?", startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.VolumeThisMonth)

	// Asset inventory and allocation counts
	s.db.WithContext(ctx).Table("physical_assets").Where("status = ?", "AVAILABLE").Count(&data.AvailableAssets)
	s.db.WithContext(ctx).Table("asset_allocations").Where("status IN ?", []string{"PENDING", "ACTIVE"}).Count(&data.ActiveAllocations)
	s.db.WithContext(ctx).Table("asset_allocations").Where("status = ?", "COMPLETED").Count(&data.CompletedAllocations)
	s.db.WithContext(ctx).Table("asset_allocations").Where("status = ?", "FORFEITED").Count(&data.ForfeitedAllocations)

	// Tier distribution
	var tierCounts []struct {
		TierName string
		Rank     int
		Members  int64
	}
	s.db.WithContext(ctx).Table("tier_qualifications").
		Select("tiers.name as tier_name, tiers.`rank`, COUNT(*) as members").
		Joins("JOIN tiers ON tier_qualifications.tier_id = tiers.id").
		Group("tiers.id, tiers.name, tiers.`rank`").
		Order("tiers.`rank` ASC").
		Scan(&tierCounts)

	data.TierDistribution = make([]TierCount, len(tierCounts))
	for i, t := range tierCounts {
		data.TierDistribution[i] = TierCount{
			TierName: t.TierName,
			Rank:     t.Rank,
			Members:  t.Members,
		}
	}

	// Top earners
	var topEarners []struct {
		UserID      uint
		Username    string
		TotalEarned float64
		Commissions int64
	}
	s.db.WithContext(ctx).Table("commissions").
		Select("commissions.earner_id as user_id, users.username, COALESCE(SUM(commissions.amount), 0) as total_earned, COUNT(*) as commissions").
		Joins("LEFT JOIN users ON commissions.earner_id = users.id").
		Group("commissions.earner_id, users.username").
		Order("total_earned DESC").
		Limit(5).
		Scan(&topEarners)

	data.TopEarners = make([]EarnerStats, len(topEarners))
	for i, e := range topEarners {
		data.TopEarners[i] = EarnerStats{
			UserID:      e.UserID,
			Username:    e.Username,
			TotalEarned: e.TotalEarned,
			Commissions: e.Commissions,
		}
	}

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// MemberDashboardData represents member dashboard data
type MemberDashboardData struct {
	// Earnings Summary
	TotalEarned    float64 `json:"total_earned"`
	PendingEarning float64 `json:"pending_earning"`
	PaidEarning    float64 `json:"paid_earning"`

	// Network Summary
	DirectReferrals int64        `json:"direct_referrals"`
	DownlineByLevel []LevelCount `json:"downline_by_level"`

	// Tier
	TierName          string `json:"tier_name"`
	ConsecutiveMonths int    `json:"consecutive_months"`
	IsPermanent       bool   `json:"is_permanent"`

	// Recent Commissions
	RecentCommissions []CommissionSummary `json:"recent_commissions"`
}

// LevelCount represents downline size per level
type LevelCount struct {
	Level   int   `json:"level"`
	Members int64 `json:"members"`
}

// CommissionSummary represents a commission row on the dashboard
type CommissionSummary struct {
	ID       uint      `json:"id"`
	Type     string    `json:"type"`
	Level    int       `json:"level"`
	Amount   float64   `json:"amount"`
	Status   string    `json:"status"`
	EarnedAt time.Time `json:"earned_at"`
}

// GetMemberDashboard returns member dashboard data
func (s *DashboardService) GetMemberDashboard(ctx context.Context, userID uint) (*MemberDashboardData, error) {
	data := &MemberDashboardData{}

	// Earnings
	s.db.WithContext(ctx).Table("commissions").
		Where("earner_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalEarned)

	s.db.WithContext(ctx).Table("commissions").
		Where("earner_id = ? AND status = ?", userID, "PENDING").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.PendingEarning)

	s.db.WithContext(ctx).Table("commissions").
		Where("earner_id = ? AND status = ?", userID, "PAID").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.PaidEarning)

	// Direct referrals
	s.db.WithContext(ctx).Table("users").
		Where("referrer_id = ? AND is_active = ? AND deleted_at IS NULL", userID, true).
		Count(&data.DirectReferrals)

	// Downline sizes, level by level
	frontier := []uint{userID}
	for level := 1; level <= 5; level++ {
		var ids []uint
		s.db.WithContext(ctx).Table("users").
			Where("referrer_id IN ? AND deleted_at IS NULL", frontier).
			Pluck("id", &ids)
		if len(ids) == 0 {
			break
		}
		data.DownlineByLevel = append(data.DownlineByLevel, LevelCount{Level: level, Members: int64(len(ids))})
		frontier = ids
	}

	// Tier standing
	var tier struct {
		TierName          string
		ConsecutiveMonths int
		IsPermanent       bool
	}
	s.db.WithContext(ctx).Table("tier_qualifications").
		Select("tiers.name as tier_name, tier_qualifications.consecutive_months, tier_qualifications.is_permanent").
		Joins("JOIN tiers ON tier_qualifications.tier_id = tiers.id").
		Where("tier_qualifications.user_id = ?", userID).
		Scan(&tier)
	data.TierName = tier.TierName
	data.ConsecutiveMonths = tier.ConsecutiveMonths
	data.IsPermanent = tier.IsPermanent

	// Recent commissions
	var recent []struct {
		ID       uint
		Type     string
		Level    int
		Amount   float64
		Status   string
		EarnedAt time.Time
	}
	s.db.WithContext(ctx).Table("commissions").
		Select("id, type, level, amount, status, earned_at").
		Where("earner_id = ?", userID).
		Order("earned_at DESC").
		Limit(10).
		Scan(&recent)

	data.RecentCommissions = make([]CommissionSummary, len(recent))
	for i, c := range recent {
		data.RecentCommissions[i] = CommissionSummary{
			ID:       c.ID,
			Type:     c.Type,
			Level:    c.Level,
			Amount:   c.Amount,
			Status:   c.Status,
			EarnedAt: c.EarnedAt,
		}
	}

	return data, nil
}
