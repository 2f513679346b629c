package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/utils"
)

// ErrNoPNRText is returned when an email has no usable body
var ErrNoPNRText = errors.New("email has no pnr text")

// DefaultItineraryPatterns are the subject fragments routed to the converter
var DefaultItineraryPatterns = []string{"PNR", "ITINERARY"}

// Converter is the part of ConverterService the email handler needs
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error)
}

// ItineraryEmailHandler converts PNR dumps received by email
type ItineraryEmailHandler struct {
	converter Converter
	emailRepo repository.EmailRepository
	patterns  []string
	logger    logger.Logger
}

// NewItineraryEmailHandler creates a new handler. emailRepo may be nil, in
// which case process steps are not recorded.
func NewItineraryEmailHandler(
	converter Converter,
	emailRepo repository.EmailRepository,
	patterns []string,
	logger logger.Logger,
) *ItineraryEmailHandler {
	if len(patterns) == 0 {
		patterns = DefaultItineraryPatterns
	}
	return &ItineraryEmailHandler{
		converter: converter,
		emailRepo: emailRepo,
		patterns:  patterns,
		logger:    logger,
	}
}

// Name returns the handler name
func (h *ItineraryEmailHandler) Name() string {
	return "itinerary"
}

// CanHandle checks if this handler can process the email
func (h *ItineraryEmailHandler) CanHandle(subject string) bool {
	subject = strings.ToLower(subject)
	for _, pattern := range h.patterns {
		if strings.Contains(subject, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Process converts the email body, preferring the HTML part
func (h *ItineraryEmailHandler) Process(ctx context.Context, email *entity.Email) (map[string]interface{}, error) {
	body := email.HTMLBody
	if body == "" {
		body = email.Body
	}

	text := utils.HTMLToText(body)
	if text == "" {
		return nil, ErrNoPNRText
	}

	steps := entity.ProcessSteps{TextExtracted: true}
	h.recordSteps(ctx, email.EmailID, steps)

	resp, err := h.converter.Convert(ctx, ConvertRequest{
		Text:      text,
		Source:    entity.SourceEmail,
		SourceRef: email.EmailID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert email %s: %w", email.EmailID, err)
	}

	steps.PNRConverted = true
	steps.FlightCount = len(resp.Result.Flights)
	steps.PassengerCount = len(resp.Result.Passengers)
	h.recordSteps(ctx, email.EmailID, steps)

	routes := make([]string, 0, len(resp.Result.Flights))
	for _, f := range resp.Result.Flights {
		routes = append(routes, f.Departure.Code+"-"+f.Arrival.Code)
	}

	return map[string]interface{}{
		"flightCount":       len(resp.Result.Flights),
		"passengers":        resp.Result.Passengers,
		"routes":            routes,
		"multiCity":         resp.Result.MultiCity,
		"suspicious":        resp.Suspicious,
		"suspiciousReasons": resp.Reasons,
		"conversionId":      resp.RecordID,
	}, nil
}

func (h *ItineraryEmailHandler) recordSteps(ctx context.Context, emailID string, steps entity.ProcessSteps) {
	if h.emailRepo == nil {
		return
	}
	if err := h.emailRepo.UpdateProcessStepsByEmailID(ctx, emailID, steps); err != nil {
		h.logger.Warn("Failed to record process steps", "emailID", emailID, "error", err)
	}
}
