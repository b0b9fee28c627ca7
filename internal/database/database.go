package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xelth-com/xrfdesk/internal/config"
	"github.com/xelth-com/xrfdesk/internal/models"
)

// DB wraps gorm.DB for the shop's local store
type DB struct {
	*gorm.DB
	driver string
}

// Connect opens the configured store: a local SQLite file by default, or an
// external PostgreSQL database when STORE_DRIVER=postgres.
func Connect(cfg config.StoreConfig, log *zap.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.Path)
		log.Info("Opening local store", zap.String("driver", "sqlite"), zap.String("path", cfg.Path))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
		log.Info("Connecting to external store", zap.String("driver", "postgres"))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	// Configure GORM
	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormLog := logger.New(zapWriter{log.Named("gorm").Sugar(), cfg.Debug}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// one connection: SQLite has a single writer and :memory: databases are per-connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("Store connection established")
	return &DB{DB: db, driver: dialector.Name()}, nil
}

// zapWriter routes gorm's logger output into zap
type zapWriter struct {
	log   *zap.SugaredLogger
	debug bool
}

func (w zapWriter) Printf(format string, args ...any) {
	if w.debug {
		w.log.Infof(format, args...)
		return
	}
	w.log.Warnf(format, args...)
}

// Driver returns the dialect name in use
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate synchronizes the schema for records and the history index, and
// fills the search column of index rows written before it existed.
func (db *DB) Migrate() error {
	if err := db.DB.AutoMigrate(&models.Record{}, &models.HistoryEntry{}); err != nil {
		return err
	}
	var stale []models.HistoryEntry
	if err := db.DB.Where("search_text IS NULL OR search_text = ''").Find(&stale).Error; err != nil {
		return err
	}
	for _, e := range stale {
		text := models.SearchText(e.TokenNumber, e.CustomerName, e.ItemDescription)
		if err := db.DB.Model(&models.HistoryEntry{}).Where("record_id = ?", e.RecordID).
			Update("search_text", text).Error; err != nil {
			return err
		}
	}
	return nil
}
