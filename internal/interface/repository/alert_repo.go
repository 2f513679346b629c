package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
	"pnr-itinerary-service/pkg/logger"
)

// DefaultAlertBaseURL is the bot API host used when none is configured
const DefaultAlertBaseURL = "https://api.telegram.org"

// ChatAlertRepository posts alerts to a chat bot API
type ChatAlertRepository struct {
	logger  logger.Logger
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewChatAlertRepository creates a new alert repository
func NewChatAlertRepository(baseURL, token, chatID string, logger logger.Logger) repository.AlertRepository {
	if baseURL == "" {
		baseURL = DefaultAlertBaseURL
	}

	return &ChatAlertRepository{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FormatAlert renders the Markdown message body for an alert
func FormatAlert(alert *entity.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *%s*\n\n", alert.Title)
	fmt.Fprintf(&b, "*PNR Input:*\n`%s`\n\n", alert.Input)
	fmt.Fprintf(&b, "*Detected Problem:*\n%s\n", alert.Problem)
	if alert.Snippet != "" {
		fmt.Fprintf(&b, "\n*Snippet:*\n`%s...`\n", alert.Snippet)
	}
	return b.String()
}

// Send delivers an alert to the configured chat
func (r *ChatAlertRepository) Send(ctx context.Context, alert *entity.Alert) error {
	msg := entity.SendChatMessage{
		ChatID:    r.chatID,
		Text:      FormatAlert(alert),
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", r.baseURL, r.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	var response entity.SendChatMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("alert API returned status %d with unreadable body: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !response.OK {
		return fmt.Errorf("alert API returned status %d: %s", resp.StatusCode, response.Description)
	}

	r.logger.Info("Alert sent",
		"type", alert.Type,
		"messageId", response.Result.MessageID)

	return nil
}
