package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/pnr"
)

// jsonOverhead leaves room for escaping and the options object around the
// PNR text when capping the request body
const jsonOverhead = 16 * 1024

// ConvertRequest is the /api/convert request body
type ConvertRequest struct {
	PNRText string          `json:"pnrText"`
	Options *ConvertOptions `json:"options"`
}

// ConvertOptions are the display options a client may override
type ConvertOptions struct {
	SegmentTimeFormat string `json:"segmentTimeFormat"`
	TransitTimeFormat string `json:"transitTimeFormat"`
}

// ConvertResponse is the success body
type ConvertResponse struct {
	Success   bool        `json:"success"`
	Result    *pnr.Result `json:"result"`
	Attempted bool        `json:"pnrProcessingAttempted"`
}

// ErrorResponse is the failure body. Result always carries an empty flight
// list so clients can render it unconditionally.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Result  emptyResult `json:"result"`
}

type emptyResult struct {
	Flights []pnr.FlightSegment `json:"flights"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxInputBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxInputBytes)*2+jsonOverhead)
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	var opts pnr.Options
	if req.Options != nil {
		opts.SegmentTimeFormat = pnr.TimeFormat(strings.ToLower(req.Options.SegmentTimeFormat))
		opts.TransitTimeFormat = pnr.TimeFormat(strings.ToLower(req.Options.TransitTimeFormat))
	}

	resp, err := s.converter.Convert(r.Context(), usecase.ConvertRequest{
		Text:      req.PNRText,
		Options:   opts,
		Source:    entity.SourceAPI,
		SourceRef: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInputTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.logger.Error("Error during PNR conversion", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Success:   true,
		Result:    &resp.Result,
		Attempted: resp.Attempted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:  message,
		Result: emptyResult{Flights: []pnr.FlightSegment{}},
	})
}
