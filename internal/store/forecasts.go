package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ForecastStore holds the most recent forecast snapshot per location.
type ForecastStore struct {
	logger *slog.Logger
	db     *gorm.DB
}

// NewForecastStore creates a new ForecastStore instance.
func NewForecastStore(db *gorm.DB, logger *slog.Logger) (*ForecastStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &ForecastStore{db: db, logger: logger}, nil
}

// ReplaceSnapshot atomically replaces the stored snapshot for a location:
// delete every existing row, insert the new rows, and re-read them ordered
// ascending by timestamp, all within one transaction. Concurrent readers see
// either the complete old snapshot or the complete new one, never a mix. On
// any failure the transaction rolls back and the prior snapshot survives
// untouched. An empty points slice is a valid empty-snapshot replace.
func (s *ForecastStore) ReplaceSnapshot(ctx context.Context, locationID uint, points []ForecastPoint) ([]ForecastPoint, error) {
	var out []ForecastPoint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", locationID).Delete(&ForecastPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete prior snapshot: %w", err)
		}

		if len(points) > 0 {
			for i := range points {
				points[i].ID = 0
				points[i].LocationID = locationID
			}
			if err := tx.Create(&points).Error; err != nil {
				return fmt.Errorf("failed to insert snapshot: %w", err)
			}
		}

		if err := tx.Where("location_id = ?", locationID).
			Order("timestamp ASC").
			Find(&out).Error; err != nil {
			return fmt.Errorf("failed to read back snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("replaced forecast snapshot", "location_id", locationID, "points", len(out))
	return out, nil
}

// ListByLocation returns the current snapshot for a location ordered ascending
// by timestamp. A location with no snapshot yields an empty slice.
func (s *ForecastStore) ListByLocation(ctx context.Context, locationID uint) ([]ForecastPoint, error) {
	var points []ForecastPoint
	if err := s.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("timestamp ASC").
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to list forecast points for location %d: %w", locationID, err)
	}
	return points, nil
}
