package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"
)

// ErrInputTooLarge is returned when the PNR text exceeds the configured limit
var ErrInputTooLarge = errors.New("pnr text too large")

const (
	alertSnippetLen = 500
	alertInputLen   = 1500
)

// ConvertRequest is one PNR conversion
type ConvertRequest struct {
	Text      string
	Options   pnr.Options
	Source    string
	SourceRef string
}

// ConvertResponse carries the parse result and what the service made of it
type ConvertResponse struct {
	Result     pnr.Result
	Attempted  bool
	Suspicious bool
	Reasons    []string
	RecordID   string
}

// ConverterDefaults are applied to requests that leave options empty
type ConverterDefaults struct {
	MaxInputBytes     int
	SegmentTimeFormat pnr.TimeFormat
	TransitTimeFormat pnr.TimeFormat
}

// ConverterService turns PNR text into itineraries and keeps the audit trail
type ConverterService struct {
	parser         *pnr.Parser
	conversionRepo repository.ConversionRepository
	alertRepo      repository.AlertRepository
	metrics        *metrics.Metrics
	defaults       ConverterDefaults
	logger         logger.Logger
}

// NewConverterService creates a new converter service. conversionRepo and
// alertRepo may be nil, in which case records are not stored and alerts are
// not sent.
func NewConverterService(
	parser *pnr.Parser,
	conversionRepo repository.ConversionRepository,
	alertRepo repository.AlertRepository,
	metrics *metrics.Metrics,
	defaults ConverterDefaults,
	logger logger.Logger,
) *ConverterService {
	return &ConverterService{
		parser:         parser,
		conversionRepo: conversionRepo,
		alertRepo:      alertRepo,
		metrics:        metrics,
		defaults:       defaults,
		logger:         logger,
	}
}

// Convert parses req.Text and records the outcome
func (s *ConverterService) Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error) {
	if s.defaults.MaxInputBytes > 0 && len(req.Text) > s.defaults.MaxInputBytes {
		s.metrics.ErrorsCount.WithLabelValues("convert_too_large").Inc()
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(req.Text), s.defaults.MaxInputBytes)
	}

	if req.Source == "" {
		req.Source = entity.SourceAPI
	}

	text := strings.ToUpper(req.Text)
	if text == "" {
		return &ConvertResponse{
			Result: pnr.Result{Flights: []pnr.FlightSegment{}, Passengers: []string{}},
		}, nil
	}

	opts := req.Options
	if opts.SegmentTimeFormat == "" {
		opts.SegmentTimeFormat = s.defaults.SegmentTimeFormat
	}
	if opts.TransitTimeFormat == "" {
		opts.TransitTimeFormat = s.defaults.TransitTimeFormat
	}

	start := time.Now()
	result := s.parser.Parse(text, opts)
	elapsed := time.Since(start)

	resp := &ConvertResponse{
		Result:    result,
		Attempted: true,
	}
	resp.Reasons = DetectSuspicious(result)
	resp.Suspicious = len(resp.Reasons) > 0

	s.metrics.ConversionsTotal.WithLabelValues(req.Source).Inc()
	s.metrics.ConversionTime.Observe(elapsed.Seconds())
	s.metrics.FlightsParsed.Add(float64(len(result.Flights)))
	s.metrics.PassengersParsed.Add(float64(len(result.Passengers)))

	s.logger.Info("PNR converted",
		"source", req.Source,
		"sourceRef", req.SourceRef,
		"flights", len(result.Flights),
		"passengers", len(result.Passengers),
		"suspicious", resp.Suspicious,
		"duration", elapsed)

	if resp.Suspicious {
		s.metrics.SuspiciousCount.Inc()
		s.sendAlert(ctx, req, result, resp.Reasons)
	}

	resp.RecordID = s.saveRecord(ctx, req, text, resp, elapsed)

	return resp, nil
}

// DetectSuspicious lists what looks wrong with a parse result. An empty
// list means the result looks clean.
func DetectSuspicious(result pnr.Result) []string {
	if len(result.Flights) == 0 {
		return []string{"No flights found"}
	}

	var reasons []string
	seen := make(map[string]bool)
	add := func(reason string) {
		if !seen[reason] {
			seen[reason] = true
			reasons = append(reasons, reason)
		}
	}

	for _, f := range result.Flights {
		if pnr.IsUnknownAirline(f.Airline) {
			add(fmt.Sprintf("Unknown airline %s", f.Airline.Code))
		}
		if pnr.IsPlaceholderAirport(f.Departure.AirportRecord) {
			add(fmt.Sprintf("Unrecognized airport %s", f.Departure.Code))
		}
		if pnr.IsPlaceholderAirport(f.Arrival.AirportRecord) {
			add(fmt.Sprintf("Unrecognized airport %s", f.Arrival.Code))
		}
		if !f.DepartureInstant.Valid || !f.ArrivalInstant.Valid {
			add(fmt.Sprintf("Unresolved times on segment %d", f.SegmentNumber))
		}
	}
	return reasons
}

func (s *ConverterService) sendAlert(ctx context.Context, req ConvertRequest, result pnr.Result, reasons []string) {
	if s.alertRepo == nil {
		return
	}

	snippet, _ := json.Marshal(result)
	alert := &entity.Alert{
		Type:      entity.SuspiciousConversion,
		Title:     "PNR Conversion Issue Detected",
		Input:     truncate(req.Text, alertInputLen),
		Problem:   strings.Join(reasons, "\n"),
		Snippet:   truncate(string(snippet), alertSnippetLen),
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"source":    req.Source,
			"sourceRef": req.SourceRef,
		},
	}

	if err := s.alertRepo.Send(ctx, alert); err != nil {
		s.logger.Error("Failed to send alert", "source", req.Source, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("send_alert").Inc()
		return
	}
	s.metrics.AlertsSent.Inc()
}

func (s *ConverterService) saveRecord(ctx context.Context, req ConvertRequest, text string, resp *ConvertResponse, elapsed time.Duration) string {
	if s.conversionRepo == nil {
		return ""
	}

	routes := make([]string, 0, len(resp.Result.Flights))
	for _, f := range resp.Result.Flights {
		routes = append(routes, f.Departure.Code+"-"+f.Arrival.Code)
	}

	result := resp.Result
	record := &entity.ConversionRecord{
		Source:            req.Source,
		SourceRef:         req.SourceRef,
		InputText:         text,
		InputBytes:        len(req.Text),
		FlightCount:       len(result.Flights),
		PassengerCount:    len(result.Passengers),
		Routes:            routes,
		Suspicious:        resp.Suspicious,
		SuspiciousReasons: resp.Reasons,
		MultiCity:         result.MultiCity,
		Result:            &result,
		DurationMs:        float64(elapsed.Microseconds()) / 1000,
	}

	if err := s.conversionRepo.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save conversion record", "source", req.Source, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("save_conversion").Inc()
		return ""
	}
	return record.ID
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
