// Package store persists metric records in SQLite and answers time-window
// queries over them. All timestamps are normalized to UTC before touching
// the database so stored rows and query bounds always compare consistently.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/statline/statline/internal/models"
)

// Store wraps the metrics database. It holds a single connection so writes
// are serialized and every reader sees a consistent snapshot; inserts and
// prunes can never interleave with a running query.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens the SQLite database at path, creating file and schema when
// missing. Existing data is preserved across restarts.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", models.ErrInvalidArgument)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening database %s: %v", models.ErrPersistence, path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: database handle: %v", models.ErrPersistence, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.MetricsRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrating schema: %v", models.ErrPersistence, err)
	}

	logger.Info("Metrics store ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Insert stores one record. Inserting an ID that already exists is reported
// as a conflict, never silently dropped.
func (s *Store) Insert(ctx context.Context, rec *models.MetricsRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", models.ErrInvalidArgument)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: record has no ID", models.ErrInvalidArgument)
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: record %s already exists", models.ErrPersistence, rec.ID)
		}
		return fmt.Errorf("%w: inserting record: %v", models.ErrPersistence, err)
	}
	return nil
}

// Latest returns the most recent record by timestamp, or nil when the store
// is empty.
func (s *Store) Latest(ctx context.Context) (*models.MetricsRecord, error) {
	var rec models.MetricsRecord
	err := s.db.WithContext(ctx).Order("timestamp DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying latest record: %v", models.ErrPersistence, err)
	}
	return &rec, nil
}

// Range returns records with start <= timestamp <= end, oldest first. An
// empty window yields an empty slice, not an error.
func (s *Store) Range(ctx context.Context, start, end time.Time) ([]models.MetricsRecord, error) {
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s precedes start %s",
			models.ErrInvalidArgument, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	recs := make([]models.MetricsRecord, 0)
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: querying range: %v", models.ErrPersistence, err)
	}
	return recs, nil
}

// Recent returns records from the trailing window of length d.
func (s *Store) Recent(ctx context.Context, d time.Duration) ([]models.MetricsRecord, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: negative window %s", models.ErrInvalidArgument, d)
	}
	now := time.Now().UTC()
	return s.Range(ctx, now.Add(-d), now)
}

// Prune deletes records older than the retention window and reports how many
// rows were removed. Running it again with the same window removes nothing.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("%w: negative retention %s", models.ErrInvalidArgument, olderThan)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	res := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.MetricsRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: pruning records: %v", models.ErrPersistence, res.Error)
	}

	if res.RowsAffected > 0 {
		s.logger.Info("Pruned metric records",
			zap.Int64("deleted", res.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return res.RowsAffected, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: database handle: %v", models.ErrPersistence, err)
	}
	return sqlDB.Close()
}
