package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Timezonelist GORM model for database mapping
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	CountryName string         `gorm:"column:countryname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

func (t Timezonelist) toEntity() *entity.Airport {
	return &entity.Airport{
		ID:          t.ID,
		AirportCode: t.AirportCode,
		AirportName: t.AirportName,
		CityCode:    t.CityCode,
		CityName:    t.CityName,
		CountryName: t.CountryName,
		GmtTz:       t.GmtTz,
		TzName:      t.TzName,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

// GetByAirportCode finds an airport by its IATA code
func (r *GormAirportRepository) GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error) {
	var row Timezonelist
	result := r.db.WithContext(ctx).Unscoped().Where("airportcode = ?", code).First(&row)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	return row.toEntity(), nil
}

// ListAll returns every airport that has not been soft-deleted
func (r *GormAirportRepository) ListAll(ctx context.Context) ([]*entity.Airport, error) {
	var rows []Timezonelist
	if err := r.db.WithContext(ctx).Order("airportcode").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}

	airports := make([]*entity.Airport, 0, len(rows))
	for _, row := range rows {
		airports = append(airports, row.toEntity())
	}
	return airports, nil
}
