package router

import (
	"testing"

	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/logger"
)

func TestSubjectRouter(t *testing.T) {
	r := NewSubjectRouter(logger.NewNopLogger())
	itinerary := usecase.NewItineraryEmailHandler(nil, nil, nil, logger.NewNopLogger())
	schedule := usecase.NewItineraryEmailHandler(nil, nil, []string{"SCHEDULE CHANGE", "PNR"}, logger.NewNopLogger())
	r.Register(itinerary)
	r.Register(schedule)

	tests := []struct {
		subject string
		want    usecase.TemplateHandler
	}{
		{"PNR ABC123", itinerary},
		{"Schedule change for your trip", schedule},
		{"Updated Itinerary", itinerary},
		{"Weekly newsletter", nil},
	}
	for _, tt := range tests {
		if got := r.GetHandler(tt.subject); got != tt.want {
			t.Errorf("GetHandler(%q) = %v, want %v", tt.subject, got, tt.want)
		}
	}
}
