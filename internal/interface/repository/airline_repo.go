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

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

func (a Airlines) toEntity() *entity.Airline {
	return &entity.Airline{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: a.DeletedAt,
	}
}

// GetByCode finds an airline by code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Unscoped().Where("code = ?", code).First(&airline)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	return airline.toEntity(), nil
}

// ListAll returns every active airline
func (r *GormAirlineRepository) ListAll(ctx context.Context) ([]*entity.Airline, error) {
	var rows []Airlines
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list airlines: %w", err)
	}

	airlines := make([]*entity.Airline, 0, len(rows))
	for _, row := range rows {
		airlines = append(airlines, row.toEntity())
	}
	return airlines, nil
}

// GormAircraftTypeRepository implements the AircraftTypeRepository interface
type GormAircraftTypeRepository struct {
	db *gorm.DB
}

// NewGormAircraftTypeRepository creates a new GORM aircraft type repository
func NewGormAircraftTypeRepository(db *gorm.DB) repository.AircraftTypeRepository {
	return &GormAircraftTypeRepository{db: db}
}

// AircraftTypes GORM model for database mapping
type AircraftTypes struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"column:code;unique"`
	Name      string `gorm:"column:name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (AircraftTypes) TableName() string {
	return "m_aircraft_types"
}

// ListAll returns every aircraft type
func (r *GormAircraftTypeRepository) ListAll(ctx context.Context) ([]*entity.AircraftType, error) {
	var rows []AircraftTypes
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list aircraft types: %w", err)
	}

	types := make([]*entity.AircraftType, 0, len(rows))
	for _, row := range rows {
		types = append(types, &entity.AircraftType{
			ID:        row.ID,
			Code:      row.Code,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return types, nil
}
