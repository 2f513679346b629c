package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ConversionListResponse is the /api/conversions body
type ConversionListResponse struct {
	Success     bool                       `json:"success"`
	Conversions []*entity.ConversionRecord `json:"conversions"`
}

// ConversionResponse is the /api/conversions/{id} body
type ConversionResponse struct {
	Success    bool                     `json:"success"`
	Conversion *entity.ConversionRecord `json:"conversion"`
}

func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultListLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}
	suspiciousOnly, _ := strconv.ParseBool(q.Get("suspicious"))

	records, err := s.conversions.FindRecent(r.Context(), suspiciousOnly, limit)
	if err != nil {
		s.logger.Error("Failed to list conversions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list conversions")
		return
	}
	if records == nil {
		records = []*entity.ConversionRecord{}
	}

	writeJSON(w, http.StatusOK, ConversionListResponse{Success: true, Conversions: records})
}

func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.conversions.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversion not found")
			return
		}
		s.logger.Error("Failed to load conversion", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load conversion")
		return
	}

	writeJSON(w, http.StatusOK, ConversionResponse{Success: true, Conversion: record})
}
