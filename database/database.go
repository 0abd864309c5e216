package database

import (
	"deals-app/internal/domain/billing"
	"deals-app/internal/domain/deals"
	"deals-app/internal/domain/plans"
	"deals-app/internal/domain/users"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(dsn string, logger *zap.Logger) {
	if dsn == "" {
		logger.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("❌ Failed to connect to database", zap.Error(err))
	}

	DB = db

	// ✅ Auto-migrate all domain models
	if err := DB.AutoMigrate(
		&users.User{},
		&plans.Plan{},

		&deals.Merchant{},
		&deals.Deal{},
		&deals.Redemption{},

		&billing.Payment{},
	); err != nil {
		logger.Fatal("❌ AutoMigrate error", zap.Error(err))
	}

	logger.Info("✅ Connected and migrated successfully")
}
