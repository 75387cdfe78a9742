package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// readingRecord is the row layout of the readings table.
type readingRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PPM         float64   `gorm:"not null"`
	AirQuality  string    `gorm:"size:32"`
	Temperature *float64
	Humidity    *float64
	Motion      bool      `gorm:"not null;default:false"`
	Timestamp   time.Time `gorm:"index;not null"`
}

func (readingRecord) TableName() string {
	return "readings"
}

func toRecord(r airquality.Reading) readingRecord {
	return readingRecord{
		ID:          r.ID,
		PPM:         r.PPM,
		AirQuality:  string(r.AirQuality),
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Motion:      r.Motion,
		Timestamp:   r.Timestamp.UTC(),
	}
}

func (rec readingRecord) toReading() airquality.Reading {
	return airquality.Reading{
		ID:          rec.ID,
		PPM:         rec.PPM,
		AirQuality:  airquality.Quality(rec.AirQuality),
		Temperature: rec.Temperature,
		Humidity:    rec.Humidity,
		Motion:      rec.Motion,
		Timestamp:   rec.Timestamp.UTC(),
	}
}

// SQLStore persists readings in SQLite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore opens (or creates) the SQLite database at path and makes sure
// the readings table exists.
func OpenSQLStore(path string) (*SQLStore, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", airquality.ErrStoreUnavailable, err)
	}

	if err := db.AutoMigrate(&readingRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create readings table: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Insert(ctx context.Context, r airquality.Reading) error {
	rec := toRecord(r)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("%w: insert reading: %v", airquality.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLStore) Latest(ctx context.Context) (airquality.Reading, error) {
	var recs []readingRecord
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return airquality.Reading{}, fmt.Errorf("%w: latest reading: %v", airquality.ErrStoreUnavailable, err)
	}
	if len(recs) == 0 {
		return airquality.Reading{}, airquality.ErrNoData
	}
	return recs[0].toReading(), nil
}

func (s *SQLStore) Since(ctx context.Context, from time.Time, limit int) ([]airquality.Reading, error) {
	q := s.db.WithContext(ctx).
		Where("timestamp >= ?", from.UTC()).
		Order("timestamp ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []readingRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("%w: readings since %s: %v", airquality.ErrStoreUnavailable, from.Format(time.RFC3339), err)
	}

	readings := make([]airquality.Reading, 0, len(recs))
	for _, rec := range recs {
		readings = append(readings, rec.toReading())
	}
	return readings, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&readingRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count readings: %v", airquality.ErrStoreUnavailable, err)
	}
	return n, nil
}
