package repository

import (
	"context"

	"pnr-itinerary-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference data
type AirportRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error)
	ListAll(ctx context.Context) ([]*entity.Airport, error)
}
