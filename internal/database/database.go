package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shaygp/boxd/internal/config"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize opens the configured store and installs the tracing plugin
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "boxd.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if cfg.IsDevelopment() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := open(dialector, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// one writer; concurrent feed batches queue on the pool
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
		logger.WarnWithFields("Failed to install GORM tracing plugin", err)
	}

	DB = db
	logger.Log.Info("Database connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// OpenInMemory returns a migrated SQLite database living in memory. The pool
// is pinned to a single connection so every query sees the same database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := open(sqlite.Open("file::memory:"), gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func open(dialector gorm.Dialector, l gormlogger.Interface) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.Follow{},
		&models.RaceLog{},
		&models.List{},
		&models.Like{},
		&models.Comment{},
		&models.Activity{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// createIndexes adds the ordering indexes feed and inbox reads rely on
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// (created_at desc, id asc) matches the feed sort key
		"CREATE INDEX IF NOT EXISTS idx_activities_feed_order ON activities (created_at DESC, id)",
		"CREATE INDEX IF NOT EXISTS idx_activities_actor_feed_order ON activities (actor_id, created_at DESC, id)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_inbox ON notifications (recipient_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comments_target_created ON comments (target_id, created_at DESC)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
