package usecase

import (
	"context"

	"pnr-itinerary-service/internal/domain/entity"
)

// TemplateHandler defines the interface for email template handlers
type TemplateHandler interface {
	// Name identifies the handler in logs and stored email records
	Name() string

	// CanHandle determines if this handler can process the given email subject
	CanHandle(subject string) bool

	// Process processes the email and returns the data extracted from it
	Process(ctx context.Context, email *entity.Email) (map[string]interface{}, error)
}

// SubjectRouter routes emails to the appropriate handler based on subject
type SubjectRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler TemplateHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) TemplateHandler
}
