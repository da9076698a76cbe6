package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/coach-scheduler/internal/config"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Coach{},
		&models.CoachService{},
		&models.Student{},
		&models.Booking{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.Exec(`
        UPDATE coaches
        SET timezone = ?
        WHERE timezone IS NULL OR timezone = ''
    `, cfg.DefaultTimezone)

	if err := migrateOverlapConstraint(db); err != nil {
		return nil, fmt.Errorf("migrate overlap constraint: %w", err)
	}

	return db, nil
}

// migrateOverlapConstraint makes postgres refuse two active bookings of the
// same coach whose [scheduled_at, ends_at) ranges intersect. The row lock in
// CreateBooking cannot see concurrent inserts; this constraint can.
func migrateOverlapConstraint(db *gorm.DB) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`UPDATE bookings
         SET ends_at = scheduled_at + (duration * interval '1 minute')
         WHERE ends_at IS NULL OR ends_at <> scheduled_at + (duration * interval '1 minute')`,
		`DO $$
         BEGIN
             IF NOT EXISTS (
                 SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap'
             ) THEN
                 ALTER TABLE bookings
                 ADD CONSTRAINT bookings_no_overlap
                 EXCLUDE USING gist (
                     coach_id WITH =,
                     tstzrange(scheduled_at, ends_at) WITH &&
                 ) WHERE (status IN ('pending', 'confirmed'));
             END IF;
         END $$`,
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCoaches upserts coaches and their services by primary key, so the
// sample catalogue can be reloaded on every start.
func SeedCoaches(ctx context.Context, db *gorm.DB, coaches []models.Coach, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range coaches {
			services := c.Services
			c.Services = nil

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&c).Error; err != nil {
				return fmt.Errorf("seed coach %s: %w", c.Slug, err)
			}

			for _, s := range services {
				s.CoachID = c.ID
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					UpdateAll: true,
				}).Create(&s).Error; err != nil {
					return fmt.Errorf("seed service %s: %w", s.ID, err)
				}
			}

			log.Info("coach seeded", zap.String("slug", c.Slug), zap.Int("services", len(services)))
		}
		return nil
	})
}
