package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultQuery restricts the mailbox listing to likely PNR mails
const DefaultQuery = "subject:(PNR OR ITINERARY)"

const initialLookback = -30 // days

// EmailProcessor handles stored emails; EmailOrchestrator satisfies it
type EmailProcessor interface {
	ProcessEmail(ctx context.Context, email *entity.Email) error
	ProcessPendingEmails(ctx context.Context) error
}

// GmailService polls a mailbox and hands new PNR emails to the processor
type GmailService struct {
	gmailService *gmail.Service
	emailRepo    repository.EmailRepository
	processor    EmailProcessor
	logger       logger.Logger
	pollInterval time.Duration
	query        string
}

// NewGmailService creates a new Gmail service
func NewGmailService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	emailRepo repository.EmailRepository,
	processor EmailProcessor,
	logger logger.Logger,
	pollInterval time.Duration,
) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	return &GmailService{
		gmailService: service,
		emailRepo:    emailRepo,
		processor:    processor,
		logger:       logger,
		pollInterval: pollInterval,
		query:        DefaultQuery,
	}, nil
}

// StartPolling polls Gmail until ctx is cancelled
func (s *GmailService) StartPolling(ctx context.Context) {
	if err := s.processor.ProcessPendingEmails(ctx); err != nil {
		s.logger.Error("Failed to process pending emails on startup", "error", err)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Polling Gmail for new emails")
			if err := s.FetchAndProcessEmails(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// FetchAndProcessEmails stores messages received since the last stored
// email and processes each new one right away
func (s *GmailService) FetchAndProcessEmails(ctx context.Context) error {
	lastEmail, err := s.emailRepo.GetLastEmail(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to get last email", "error", err)
	}

	fetchFrom := time.Now().AddDate(0, 0, initialLookback)
	if lastEmail != nil {
		fetchFrom = lastEmail.ReceivedAt
	}

	resp, err := s.gmailService.Users.Messages.List("me").
		Q(BuildQuery(s.query, fetchFrom)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		s.logger.Debug("No new messages found")
		return nil
	}

	emailIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		emailIDs[i] = msg.Id
	}

	existingEmails, err := s.emailRepo.FindByEmailIDs(ctx, emailIDs)
	if err != nil {
		s.logger.Error("Failed to check existing emails", "error", err)
		existingEmails = make(map[string]*entity.Email)
	}

	newCount := 0
	processedCount := 0

	for _, msg := range resp.Messages {
		if _, exists := existingEmails[msg.Id]; exists {
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "msgId", msg.Id, "error", err)
			continue
		}

		email, err := MessageToEmail(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "msgId", msg.Id, "error", err)
			continue
		}

		if err := s.emailRepo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to save email", "emailID", email.EmailID, "error", err)
			continue
		}
		newCount++

		if err := s.processor.ProcessEmail(ctx, email); err != nil {
			s.logger.Error("Failed to process email", "emailID", email.EmailID, "error", err)
		} else {
			processedCount++
		}
	}

	s.logger.Info("Email fetch and process completed",
		"totalMessages", len(resp.Messages),
		"newEmails", newCount,
		"processedEmails", processedCount)

	return nil
}

// BuildQuery appends the date bound to the mailbox search
func BuildQuery(base string, after time.Time) string {
	q := fmt.Sprintf("after:%s", after.Format("2006/01/02"))
	if base == "" {
		return q
	}
	return base + " " + q
}

// MessageToEmail converts a Gmail message to the stored email entity.
// Nested multipart bodies are walked depth first; the first text/plain and
// text/html parts win.
func MessageToEmail(msg *gmail.Message) (*entity.Email, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	email := &entity.Email{
		EmailID:       msg.Id,
		Labels:        msg.LabelIds,
		ProcessStatus: entity.StatusPending,
		ReceivedAt:    time.UnixMilli(msg.InternalDate),
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			email.From = header.Value
		case "to":
			email.To = header.Value
		case "subject":
			email.Subject = header.Value
		}
	}

	if err := collectParts(email, msg.Payload); err != nil {
		return nil, err
	}
	return email, nil
}

func collectParts(email *entity.Email, part *gmail.MessagePart) error {
	if part.Filename != "" && part.Body != nil {
		data, err := decodeBody(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
		}
		email.Attachments = append(email.Attachments, entity.Attachment{
			Filename:    part.Filename,
			ContentType: part.MimeType,
			Data:        data,
		})
		return nil
	}

	if part.Body != nil && part.Body.Data != "" {
		data, err := decodeBody(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode %s body: %w", part.MimeType, err)
		}
		switch {
		case strings.HasPrefix(part.MimeType, "text/html"):
			if email.HTMLBody == "" {
				email.HTMLBody = string(data)
			}
		default:
			if email.Body == "" {
				email.Body = string(data)
			}
		}
	}

	for _, child := range part.Parts {
		if err := collectParts(email, child); err != nil {
			return err
		}
	}
	return nil
}

// decodeBody accepts base64url with or without padding
func decodeBody(data string) ([]byte, error) {
	if strings.HasSuffix(data, "=") {
		return base64.URLEncoding.DecodeString(data)
	}
	return base64.RawURLEncoding.DecodeString(data)
}
