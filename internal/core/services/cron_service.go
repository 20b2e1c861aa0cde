package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"rewardhub/internal/adapters/persistence/repositories"
)

// CronService schedules the recurring platform jobs: the monthly tier sweep,
// the monthly asset maintenance run, the monthly team-volume bonus run, and
// daily refresh token cleanup
type CronService struct {
	cron              *cron.Cron
	tierService       *TierService
	assetService      *AssetService
	commissionService *CommissionService
	refreshTokenRepo  repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(
	tierService *TierService,
	assetService *AssetService,
	commissionService *CommissionService,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *CronService {
	return &CronService{
		cron:              cron.New(),
		tierService:       tierService,
		assetService:      assetService,
		commissionService: commissionService,
		refreshTokenRepo:  refreshTokenRepo,
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() {
	// Monthly tier maintain/downgrade sweep, 1st of month 02:00
	s.cron.AddFunc("0 2 1 * *", func() {
		if _, err := s.tierService.SweepMonthly(context.Background()); err != nil {
			log.Printf("❌ Scheduled tier sweep failed: %v", err)
		}
	})

	// Monthly asset maintenance run, 1st of month 03:00
	s.cron.AddFunc("0 3 1 * *", func() {
		if _, err := s.assetService.ProcessAllEligibleAllocations(context.Background()); err != nil {
			log.Printf("❌ Scheduled maintenance run failed: %v", err)
		}
	})

	// Monthly team-volume bonus run, 1st of month 04:00.
	// Runs after the tier sweep so bonuses use post-sweep tiers.
	s.cron.AddFunc("0 4 1 * *", func() {
		if _, err := s.commissionService.ProcessMonthlyTeamVolumeBonuses(context.Background()); err != nil {
			log.Printf("❌ Scheduled team-volume bonus run failed: %v", err)
		}
	})

	// Daily expired refresh token cleanup, 01:00
	s.cron.AddFunc("0 1 * * *", func() {
		if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
			log.Printf("❌ Expired token cleanup failed: %v", err)
		}
	})

	s.cron.Start()
	log.Println("✅ Cron service started (monthly sweeps + daily token cleanup)")
}

// Stop stops the cron scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}
