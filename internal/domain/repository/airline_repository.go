package repository

import (
	"context"

	"pnr-itinerary-service/internal/domain/entity"
)

// AirlineRepository defines the interface for airline operations
type AirlineRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
	ListAll(ctx context.Context) ([]*entity.Airline, error)
}

// AircraftTypeRepository defines the interface for aircraft type lookups
type AircraftTypeRepository interface {
	ListAll(ctx context.Context) ([]*entity.AircraftType, error)
}
