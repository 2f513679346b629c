// Package httpapi exposes the converter over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/logger"
)

// Config holds the HTTP API settings
type Config struct {
	MaxInputBytes     int
	CORSOrigins       []string // empty allows any origin
	RateLimitRequests int      // per client per window, 0 disables limiting
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// Server routes API requests to the converter
type Server struct {
	converter   usecase.Converter
	conversions repository.ConversionRepository
	gatherer    prometheus.Gatherer
	cfg         Config
	limiter     *clientLimiter
	logger      logger.Logger
}

// NewServer creates a new API server
func NewServer(converter usecase.Converter, gatherer prometheus.Gatherer, cfg Config, logger logger.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		converter: converter,
		gatherer:  gatherer,
		cfg:       cfg,
		logger:    logger,
	}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		s.limiter = newClientLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	return s
}

// WithConversions enables the read-only conversion log endpoints
func (s *Server) WithConversions(conversions repository.ConversionRepository) *Server {
	s.conversions = conversions
	return s
}

// Router returns the configured chi router
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(corsMiddleware(s.cfg.CORSOrigins))

	r.Get("/health", handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}
		r.Post("/convert", s.handleConvert)
		if s.conversions != nil {
			r.Get("/conversions", s.handleListConversions)
			r.Get("/conversions/{id}", s.handleGetConversion)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Healthy"))
}
