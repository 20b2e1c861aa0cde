package config

import (
	"log"
	"time"

	"rewardhub/internal/adapters/persistence/models"
	"rewardhub/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedMasterData seeds initial master data
func SeedMasterData(db *gorm.DB) error {
	// Seed Tiers
	if err := seedTiers(db); err != nil {
		return err
	}

	// Seed Physical Assets
	if err := seedPhysicalAssets(db); err != nil {
		return err
	}

	// Seed Admin User
	if err := seedAdminUser(db); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Master data seeded successfully")
	return nil
}

// seedTiers seeds the tier ladder. Requirements are monotonic in rank.
func seedTiers(db *gorm.DB) error {
	tiers := []models.Tier{
		{
			Code:                    "BRONZE",
			Name:                    "Bronze",
			Rank:                    1,
			RequiredActiveReferrals: 0,
			RequiredTeamVolume:      decimal.Zero,
			TeamVolumeBonusRate:     1.0,
			AchievementBonus:        decimal.Zero,
			DirectReferralRate:      5.0,
			Level2Rate:              2.0,
			Level3Rate:              1.0,
			IsActive:                true,
		},
		{
			Code:                    "SILVER",
			Name:                    "Silver",
			Rank:                    2,
			RequiredActiveReferrals: 3,
			RequiredTeamVolume:      decimal.NewFromInt(5000),
			TeamVolumeBonusRate:     2.0,
			AchievementBonus:        decimal.NewFromInt(50),
			DirectReferralRate:      7.0,
			Level2Rate:              3.0,
			Level3Rate:              1.0,
			IsActive:                true,
		},
		{
			Code:                    "GOLD",
			Name:                    "Gold",
			Rank:                    3,
			RequiredActiveReferrals: 10,
			RequiredTeamVolume:      decimal.NewFromInt(25000),
			TeamVolumeBonusRate:     3.0,
			AchievementBonus:        decimal.NewFromInt(200),
			DirectReferralRate:      10.0,
			Level2Rate:              4.0,
			Level3Rate:              2.0,
			IsActive:                true,
		},
		{
			Code:                    "DIAMOND",
			Name:                    "Diamond",
			Rank:                    4,
			RequiredActiveReferrals: 25,
			RequiredTeamVolume:      decimal.NewFromInt(100000),
			TeamVolumeBonusRate:     4.0,
			AchievementBonus:        decimal.NewFromInt(1000),
			DirectReferralRate:      12.0,
			Level2Rate:              5.0,
			Level3Rate:              2.0,
			IsActive:                true,
		},
		{
			Code:                    "ELITE",
			Name:                    "Elite",
			Rank:                    5,
			RequiredActiveReferrals: 50,
			RequiredTeamVolume:      decimal.NewFromInt(250000),
			TeamVolumeBonusRate:     5.0,
			AchievementBonus:        decimal.NewFromInt(5000),
			DirectReferralRate:      15.0,
			Level2Rate:              6.0,
			Level3Rate:              3.0,
			IsActive:                true,
		},
	}

	for _, t := range tiers {
		var existing models.Tier
		if err := db.Where("code = ?", t.Code).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&t).Error; err != nil {
					return err
				}
				log.Printf("   Created tier: %s", t.Name)
			}
		}
	}
	return nil
}

// seedPhysicalAssets seeds a starter inventory for each asset type
func seedPhysicalAssets(db *gorm.DB) error {
	var count int64
	db.Model(&models.PhysicalAsset{}).Count(&count)
	if count > 0 {
		return nil // Inventory already stocked
	}

	assets := []models.PhysicalAsset{
		{AssetType: "STARTER_KIT", Label: "Starter Kit #1", Value: decimal.NewFromInt(200), Status: models.AssetStatusAvailable},
		{AssetType: "STARTER_KIT", Label: "Starter Kit #2", Value: decimal.NewFromInt(200), Status: models.AssetStatusAvailable},
		{AssetType: "SMARTPHONE", Label: "Smartphone #1", Value: decimal.NewFromInt(800), Status: models.AssetStatusAvailable},
		{AssetType: "TABLET", Label: "Tablet #1", Value: decimal.NewFromInt(600), Status: models.AssetStatusAvailable},
		{AssetType: "MOTORBIKE", Label: "Motorbike #1", Value: decimal.NewFromInt(3500), Status: models.AssetStatusAvailable},
		{AssetType: "CAR", Label: "Car #1", Value: decimal.NewFromInt(25000), Status: models.AssetStatusAvailable},
		{AssetType: "PROPERTY", Label: "Apartment Unit #1", Value: decimal.NewFromInt(100000), Status: models.AssetStatusAvailable},
	}

	for _, a := range assets {
		if err := db.Create(&a).Error; err != nil {
			return err
		}
		log.Printf("   Created asset: %s", a.Label)
	}
	return nil
}

// seedAdminUser seeds default admin user.
// This is for development/testing only; in production, create the admin
// through a secure process.
func seedAdminUser(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     "admin",
		Email:        "admin@rewardhub.io",
		Password:     hashedPassword,
		Role:         "ADMIN",
		ReferralCode: uuid.New().String(),
		IsActive:     true,
		JoinedAt:     time.Now(),
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
