package database

import (
	"fmt"

	"github.com/KRaymonne/pro/internal/config"
	logging "github.com/KRaymonne/pro/internal/logging"
	"github.com/KRaymonne/pro/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	if err := Connect(postgres.Open(dsn), log); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection established successfully.")
}

// Connect opens the database through the given dialector and runs migrations.
// Production uses postgres; tests pass an in-memory sqlite dialector.
func Connect(dialector gorm.Dialector, log *zap.Logger) error {
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// Translate driver-specific unique violations into gorm.ErrDuplicatedKey
		// so the session find-or-create race is detectable across drivers.
		TranslateError: true,
		// Sessions link to their recording and recordings back to their
		// session; FK constraints for that cycle cannot be auto-created.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return err
	}

	return runMigrations(log)
}

func runMigrations(log *zap.Logger) error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// Partial and composite indexes are handled separately below.
	err := DB.AutoMigrate(
		&models.User{},
		&models.Poem{},
		&models.Recording{},
		&models.ReadingSession{},
		&models.Favorite{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// At most one en-cours session per (user, poem). StartSession relies on
	// this index to stay race-free: the second concurrent insert fails with a
	// unique violation and re-reads the winner's row.
	activeIndex := `CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON reading_sessions (user_id, poem_id) WHERE status = 'en-cours';`
	if err := DB.Exec(activeIndex).Error; err != nil {
		return fmt.Errorf("failed to create active-session index: %w", err)
	}

	log.Info("Database migrations completed successfully.")
	return nil
}
