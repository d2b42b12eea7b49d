package database

import (
	"fmt"
	"log/slog"

	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// A till agent talks to one outlet database; keep the pool small.
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)

	slog.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	slog.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Printer{},
		&entity.BillSequence{},
		&entity.PrintJob{},
		&entity.BusinessProfile{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData copies the station printers into an empty printers table and
// creates the bill sequence row at start. Existing rows are left alone.
func SeedDefaultData(db *gorm.DB, printers []entity.Printer, sequence string, start int64) error {
	var count int64
	if err := db.Model(&entity.Printer{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count printers: %w", err)
	}
	if count == 0 && len(printers) > 0 {
		seed := make([]entity.Printer, len(printers))
		copy(seed, printers)
		if err := db.Create(&seed).Error; err != nil {
			return fmt.Errorf("seed printers: %w", err)
		}
		slog.Info("seeded printers", "count", len(seed))
	}

	row := entity.BillSequence{Name: sequence, LastValue: start}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("seed bill sequence: %w", err)
	}
	return nil
}
