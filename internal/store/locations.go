package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced location id does not exist. It is
// distinct from other storage failures so callers can map it to a user-visible
// "not found" outcome.
var ErrNotFound = errors.New("location not found")

// LocationStore provides CRUD operations over registered locations.
type LocationStore struct {
	logger *slog.Logger
	db     *gorm.DB
}

// NewLocationStore creates a new LocationStore instance.
func NewLocationStore(db *gorm.DB, logger *slog.Logger) (*LocationStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &LocationStore{db: db, logger: logger}, nil
}

// Create persists a new location and assigns its identifier.
func (s *LocationStore) Create(ctx context.Context, loc *Location) error {
	if loc == nil {
		return errors.New("location cannot be nil")
	}

	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	s.logger.Info("created location", "location_id", loc.ID, "name", loc.Name)
	return nil
}

// Get fetches a location by id. Returns ErrNotFound when the id does not exist.
func (s *LocationStore) Get(ctx context.Context, id uint) (Location, error) {
	var loc Location
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Location{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Location{}, fmt.Errorf("failed to fetch location %d: %w", id, err)
	}
	return loc, nil
}

// List returns all registered locations ordered by id.
func (s *LocationStore) List(ctx context.Context) ([]Location, error) {
	var locs []Location
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

// Update replaces all mutable fields of an existing location. Returns
// ErrNotFound when the id does not exist.
func (s *LocationStore) Update(ctx context.Context, loc *Location) error {
	if loc == nil {
		return errors.New("location cannot be nil")
	}

	// Select forces a full field replace so cleared optional fields persist.
	result := s.db.WithContext(ctx).
		Model(&Location{ID: loc.ID}).
		Select("Name", "APIKey", "Latitude", "Longitude", "GridSubstation", "FeederNumber").
		Updates(loc)
	if result.Error != nil {
		return fmt.Errorf("failed to update location %d: %w", loc.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, loc.ID)
	}

	s.logger.Info("updated location", "location_id", loc.ID, "name", loc.Name)
	return nil
}

// Delete removes a location and, within the same transaction, every forecast
// point that belongs to it. Returns ErrNotFound when the id does not exist.
func (s *LocationStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", id).Delete(&ForecastPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete forecast points: %w", err)
		}

		result := tx.Delete(&Location{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete location: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("deleted location", "location_id", id)
	return nil
}
