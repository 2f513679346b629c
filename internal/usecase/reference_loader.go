package usecase

import (
	"context"
	"fmt"

	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"
)

// ReferenceLoader snapshots the reference repositories into lookup tables
type ReferenceLoader struct {
	airportRepo  repository.AirportRepository
	airlineRepo  repository.AirlineRepository
	aircraftRepo repository.AircraftTypeRepository
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewReferenceLoader creates a new reference loader
func NewReferenceLoader(
	airportRepo repository.AirportRepository,
	airlineRepo repository.AirlineRepository,
	aircraftRepo repository.AircraftTypeRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ReferenceLoader {
	return &ReferenceLoader{
		airportRepo:  airportRepo,
		airlineRepo:  airlineRepo,
		aircraftRepo: aircraftRepo,
		metrics:      metrics,
		logger:       logger,
	}
}

// Load reads every table once. The returned tables are not touched again
// and can be shared by concurrent parsers.
func (l *ReferenceLoader) Load(ctx context.Context) (*pnr.MapTables, error) {
	tables := pnr.NewMapTables()

	airports, err := l.airportRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airports: %w", err)
	}
	for _, a := range airports {
		if a.AirportCode == "" {
			continue
		}
		tables.Airports[a.AirportCode] = a.ToRecord()
	}

	airlines, err := l.airlineRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load airlines: %w", err)
	}
	for _, a := range airlines {
		tables.Airlines[a.Code] = a.Name
	}

	if l.aircraftRepo != nil {
		types, err := l.aircraftRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aircraft types: %w", err)
		}
		for _, t := range types {
			tables.Aircraft[t.Code] = t.Name
		}
	}

	if l.metrics != nil {
		l.metrics.ReferenceRecordsSeen.WithLabelValues("airports").Set(float64(len(tables.Airports)))
		l.metrics.ReferenceRecordsSeen.WithLabelValues("airlines").Set(float64(len(tables.Airlines)))
		l.metrics.ReferenceRecordsSeen.WithLabelValues("aircraft").Set(float64(len(tables.Aircraft)))
	}

	l.logger.Info("Reference data loaded",
		"airports", len(tables.Airports),
		"airlines", len(tables.Airlines),
		"aircraft", len(tables.Aircraft))

	return tables, nil
}
