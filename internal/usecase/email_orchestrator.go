package usecase

import (
	"context"
	"fmt"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
	"pnr-itinerary-service/pkg/metrics"
)

const (
	pendingBatchSize = 100
	staleProcessing  = 10 * time.Minute
)

// EmailOrchestrator manages email processing with multiple handlers
type EmailOrchestrator struct {
	emailRepo repository.EmailRepository
	router    SubjectRouter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewEmailOrchestrator creates a new email orchestrator
func NewEmailOrchestrator(
	emailRepo repository.EmailRepository,
	router SubjectRouter,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *EmailOrchestrator {
	return &EmailOrchestrator{
		emailRepo: emailRepo,
		router:    router,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessEmail processes a single email immediately after fetching
func (o *EmailOrchestrator) ProcessEmail(ctx context.Context, email *entity.Email) error {
	handler := o.router.GetHandler(email.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for email",
			"subject", email.Subject,
			"emailID", email.EmailID)

		// Not an error, the mailbox also receives unrelated mail
		o.metrics.EmailsProcessed.WithLabelValues(entity.StatusSkipped).Inc()
		return o.emailRepo.MarkAsProcessedByEmailID(
			ctx,
			email.EmailID,
			entity.StatusSkipped,
			"none",
			"No matching handler found",
			map[string]interface{}{
				"subject": email.Subject,
				"reason":  "no_matching_template",
			},
		)
	}

	handlerName := handler.Name()
	o.logger.Info("Processing email with handler",
		"emailID", email.EmailID,
		"handler", handlerName,
		"subject", email.Subject)

	if err := o.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	extracted, err := handler.Process(ctx, email)
	if err != nil {
		o.logger.Error("Handler failed to process email",
			"emailID", email.EmailID,
			"handler", handlerName,
			"error", err)

		// Marked failed without returning the error so the batch continues
		o.metrics.EmailsProcessed.WithLabelValues(entity.StatusFailed).Inc()
		o.metrics.ErrorsCount.WithLabelValues("process_email").Inc()
		if markErr := o.emailRepo.MarkAsProcessedByEmailID(
			ctx,
			email.EmailID,
			entity.StatusFailed,
			handlerName,
			err.Error(),
			nil,
		); markErr != nil {
			o.logger.Error("Failed to mark email as failed", "emailID", email.EmailID, "error", markErr)
		}
		return nil
	}

	if err := o.emailRepo.MarkAsProcessedByEmailID(
		ctx,
		email.EmailID,
		entity.StatusCompleted,
		handlerName,
		"",
		extracted,
	); err != nil {
		return fmt.Errorf("failed to mark email as completed: %w", err)
	}

	o.metrics.EmailsProcessed.WithLabelValues(entity.StatusCompleted).Inc()
	o.logger.Info("Email processed successfully",
		"emailID", email.EmailID,
		"handler", handlerName)

	return nil
}

// ProcessPendingEmails processes any emails that were missed or failed
func (o *EmailOrchestrator) ProcessPendingEmails(ctx context.Context) error {
	reset, err := o.emailRepo.ResetProcessingEmails(ctx, staleProcessing)
	if err != nil {
		o.logger.Error("Failed to reset stale emails", "error", err)
	} else if reset > 0 {
		o.logger.Info("Reset stale processing emails", "count", reset)
	}

	emails, err := o.emailRepo.FindUnprocessed(ctx, pendingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find unprocessed emails: %w", err)
	}

	if len(emails) == 0 {
		return nil
	}

	o.logger.Info("Processing pending emails", "count", len(emails))

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.ProcessEmail(ctx, email); err != nil {
			o.logger.Error("Failed to process pending email",
				"emailID", email.EmailID,
				"error", err)
		}
	}

	return nil
}
