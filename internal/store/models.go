// Package store provides the persistence layer for registered locations and
// their forecast snapshots, backed by PostgreSQL via GORM.
package store

import (
	"time"
)

// Location represents a registered site on the distribution grid for which
// irradiation forecasts are collected.
type Location struct {
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	Name           string          `gorm:"size:100;not null"`
	APIKey         string          `gorm:"size:100"`
	GridSubstation string          `gorm:"size:100"`
	FeederNumber   string          `gorm:"size:50"`
	Latitude       float64         `gorm:"not null"`
	Longitude      float64         `gorm:"not null"`
	ID             uint            `gorm:"primaryKey"`
	Forecasts      []ForecastPoint `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Location model.
func (Location) TableName() string {
	return "locations"
}

// ForecastPoint is one timestamped row of the current forecast snapshot for a
// location. All rows for a location are replaced in bulk on refresh and are
// never updated in place. Numeric fields are pointers because the upstream
// feed may omit any of them.
type ForecastPoint struct {
	Timestamp    time.Time `gorm:"index:idx_location_timestamp;not null"`
	GHI          *float64
	GHI10        *float64
	GHI90        *float64
	EBH          *float64
	DNI          *float64
	DNI10        *float64
	DNI90        *float64
	DHI          *float64
	AirTemp      *float64
	Zenith       *float64
	Azimuth      *float64
	CloudOpacity *float64
	LocationID   uint `gorm:"index:idx_location_timestamp;not null"`
	ID           uint `gorm:"primaryKey"`
}

// TableName specifies the table name for ForecastPoint model.
func (ForecastPoint) TableName() string {
	return "forecast_points"
}
