package repository

import (
	"context"

	"pnr-itinerary-service/internal/domain/entity"
)

// ConversionRepository stores the audit trail of conversions
type ConversionRepository interface {
	Save(ctx context.Context, record *entity.ConversionRecord) error
	FindByID(ctx context.Context, id string) (*entity.ConversionRecord, error)
	FindRecent(ctx context.Context, suspiciousOnly bool, limit int) ([]*entity.ConversionRecord, error)
}
