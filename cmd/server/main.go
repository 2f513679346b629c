package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/internal/infrastructure/config"
	"pnr-itinerary-service/internal/infrastructure/httpapi"
	"pnr-itinerary-service/internal/infrastructure/oauth"
	"pnr-itinerary-service/internal/infrastructure/persistence"
	"pnr-itinerary-service/internal/infrastructure/router"
	"pnr-itinerary-service/internal/interface/gmail"
	repo "pnr-itinerary-service/internal/interface/repository"
	"pnr-itinerary-service/internal/usecase"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
	"pnr-itinerary-service/pkg/pnr"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	metricsNamespace = "pnr_itinerary"
	shutdownTimeout  = 10 * time.Second
	pendingInterval  = 30 * time.Second
)

type referenceRepos struct {
	airports repository.AirportRepository
	airlines repository.AirlineRepository
	aircraft repository.AircraftTypeRepository
	db       *gorm.DB
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting PNR Itinerary Service", "version", cfg.AppVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics(metricsNamespace)

	refs, err := openReferenceRepos(cfg)
	if err != nil {
		log.Fatal("Failed to open reference data", "source", cfg.ReferenceSource, "error", err)
	}
	if refs.db != nil {
		defer persistence.ClosePostgresDB(refs.db)
	}

	tables, err := usecase.NewReferenceLoader(refs.airports, refs.airlines, refs.aircraft, m, log).Load(ctx)
	if err != nil {
		log.Fatal("Failed to load reference data", "error", err)
	}
	parser := pnr.NewParser(tables).WithLogger(log.With("component", "parser"))

	var (
		mongoClient    *mongo.Client
		conversionRepo repository.ConversionRepository
		emailRepo      repository.EmailRepository
		alertRepo      repository.AlertRepository
	)

	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client

		if conversionRepo, err = repo.NewMongoConversionRepository(ctx, db); err != nil {
			log.Fatal("Failed to set up conversion log", "error", err)
		}
		if emailRepo, err = repo.NewMongoEmailRepository(ctx, db); err != nil {
			log.Fatal("Failed to set up email store", "error", err)
		}
	} else {
		log.Warn("MONGODB_DSN not set, conversions are not recorded")
	}

	if cfg.AlertsEnabled() {
		alertRepo = repo.NewChatAlertRepository(cfg.AlertWebhookURL, cfg.AlertToken, cfg.AlertChatID, log)
	} else {
		log.Warn("Alert credentials missing, suspicious conversions are only logged")
	}

	converter := usecase.NewConverterService(parser, conversionRepo, alertRepo, m, usecase.ConverterDefaults{
		MaxInputBytes:     cfg.MaxInputBytes,
		SegmentTimeFormat: pnr.TimeFormat(cfg.SegmentTimeFormat),
		TransitTimeFormat: pnr.TimeFormat(cfg.TransitTimeFormat),
	}, log)

	api := httpapi.NewServer(converter, prometheus.DefaultGatherer, httpapi.Config{
		MaxInputBytes:     cfg.MaxInputBytes,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RequestTimeout:    cfg.WriteTimeout,
	}, log)
	if conversionRepo != nil {
		api.WithConversions(conversionRepo)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.GmailEnabled() && emailRepo != nil {
		subjectRouter := router.NewSubjectRouter(log)
		subjectRouter.Register(usecase.NewItineraryEmailHandler(converter, emailRepo, usecase.DefaultItineraryPatterns, log))
		orchestrator := usecase.NewEmailOrchestrator(emailRepo, subjectRouter, m, log)

		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRedirectURL, cfg.GmailRefreshToken, log)
		gmailService, err := gmail.NewGmailService(gctx, gmailOAuth.GetTokenSource(gctx), emailRepo, orchestrator, log, cfg.GmailPollInterval)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}

		g.Go(func() error {
			gmailService.StartPolling(gctx)
			return nil
		})

		// retry emails left pending by earlier failures
		g.Go(func() error {
			ticker := time.NewTicker(pendingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					log.Info("Email processor stopped")
					return nil
				case <-ticker.C:
					if err := orchestrator.ProcessPendingEmails(gctx); err != nil {
						log.Error("Error processing emails", "error", err)
					}
				}
			}
		})
	} else {
		log.Info("Mailbox intake disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error", "error", err)
	}

	if mongoClient != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("PNR Itinerary Service stopped")
}

func openReferenceRepos(cfg *config.Config) (referenceRepos, error) {
	if cfg.ReferenceSource == config.ReferenceSourcePostgres {
		db, err := persistence.NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			return referenceRepos{}, err
		}
		return referenceRepos{
			airports: repo.NewGormAirportRepository(db),
			airlines: repo.NewGormAirlineRepository(db),
			aircraft: repo.NewGormAircraftTypeRepository(db),
			db:       db,
		}, nil
	}

	files := repo.NewFileReferenceRepository(cfg.ReferenceDataDir)
	return referenceRepos{
		airports: files.Airports(),
		airlines: files.Airlines(),
		aircraft: files.AircraftTypes(),
	}, nil
}
