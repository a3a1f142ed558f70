// database/bootstrap.go
package database

import (
	"fmt"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cancelflow/entities"
)

// OpenSQLite opens the database at path, removes duplicate cancellation rows
// left by older schemas and migrates every table.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(gormWriter{log.Logger.With().Str("component", "gorm").Logger()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel(zerolog.GlobalLevel()),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Each :memory: connection is its own database.
	if strings.Contains(path, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Must run before AutoMigrate creates the unique index on user_id.
	if err := dedupeCancellations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := db.AutoMigrate(
		&entities.Subscription{},
		&entities.Cancellation{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

type gormWriter struct{ l zerolog.Logger }

func (w gormWriter) Printf(format string, args ...any) { w.l.Log().Msgf(format, args...) }

func gormLevel(l zerolog.Level) gormlogger.LogLevel {
	switch {
	case l <= zerolog.DebugLevel:
		return gormlogger.Info
	case l <= zerolog.WarnLevel:
		return gormlogger.Warn
	case l <= zerolog.ErrorLevel:
		return gormlogger.Error
	}
	return gormlogger.Silent
}

// dedupeCancellations keeps only the most recently updated cancellation per
// user when the table predates the unique user_id index.
func dedupeCancellations(db *gorm.DB) error {
	var tbl string
	if err := db.Raw(`SELECT name FROM sqlite_master WHERE type='table' AND name='cancellations'`).Scan(&tbl).Error; err != nil {
		return fmt.Errorf("check table exist: %w", err)
	}
	if tbl == "" {
		return nil
	}

	type indexInfo struct {
		Seq    int
		Name   string
		Unique int
	}
	var idx []indexInfo
	if err := db.Raw(`PRAGMA index_list(cancellations)`).Scan(&idx).Error; err != nil {
		return fmt.Errorf("index_list: %w", err)
	}
	for _, i := range idx {
		if i.Unique == 1 && i.Name == "idx_cancellations_user_id" {
			return nil
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
DELETE FROM cancellations WHERE rowid NOT IN (
    SELECT rowid FROM (
        SELECT rowid, ROW_NUMBER() OVER (
            PARTITION BY user_id ORDER BY updated_at DESC, rowid DESC
        ) AS rn FROM cancellations
    ) WHERE rn = 1
)`)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Warn().Int64("rows", res.RowsAffected).Msg("removed duplicate cancellation records")
		}
		// An older non-unique index of the same name would make AutoMigrate skip it.
		return tx.Exec(`DROP INDEX IF EXISTS idx_cancellations_user_id`).Error
	})
}
