package repository

import (
	"context"

	"pnr-itinerary-service/internal/domain/entity"
)

// AlertRepository delivers operator alerts
type AlertRepository interface {
	Send(ctx context.Context, alert *entity.Alert) error
}
