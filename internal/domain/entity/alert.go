// internal/domain/entity/alert.go
package entity

import (
	"time"
)

// AlertType defines the type of the alert
type AlertType string

const (
	SuspiciousConversion AlertType = "suspicious_conversion"
	EmailFailure         AlertType = "email_failure"
)

// Alert is an operator notification about a conversion worth a look
type Alert struct {
	Type      AlertType              `json:"type"`
	Title     string                 `json:"title"`
	Input     string                 `json:"input"`
	Problem   string                 `json:"problem"`
	Snippet   string                 `json:"snippet"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SendChatMessage is the bot API request body
type SendChatMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendChatMessageResponse is the bot API response envelope
type SendChatMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}
