package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"

	"pnr-itinerary-service/internal/domain/entity"
)

func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestMessageToEmail(t *testing.T) {
	msg := &gmail.Message{
		Id:           "18c1",
		LabelIds:     []string{"INBOX"},
		InternalDate: 1786000000000,
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "agent@example.com"},
				{Name: "To", Value: "pnr@example.com"},
				{Name: "Subject", Value: "PNR ABC123"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("1 WB 464 Y 15AUG KGLDAR HK1 1005 1245")}},
						{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("<p>1 WB 464</p>"))}},
					},
				},
				{MimeType: "application/pdf", Filename: "eticket.pdf", Body: &gmail.MessagePartBody{Data: encode("%PDF")}},
			},
		},
	}

	email, err := MessageToEmail(msg)
	if err != nil {
		t.Fatalf("MessageToEmail() error = %v", err)
	}

	if email.EmailID != "18c1" || email.Subject != "PNR ABC123" || email.From != "agent@example.com" {
		t.Errorf("headers = %+v", email)
	}
	if email.Body != "1 WB 464 Y 15AUG KGLDAR HK1 1005 1245" {
		t.Errorf("Body = %q", email.Body)
	}
	if email.HTMLBody != "<p>1 WB 464</p>" {
		t.Errorf("HTMLBody = %q", email.HTMLBody)
	}
	if len(email.Attachments) != 1 || string(email.Attachments[0].Data) != "%PDF" {
		t.Errorf("Attachments = %+v", email.Attachments)
	}
	if email.ProcessStatus != entity.StatusPending {
		t.Errorf("ProcessStatus = %q, want PENDING", email.ProcessStatus)
	}
	if !email.ReceivedAt.Equal(time.UnixMilli(1786000000000)) {
		t.Errorf("ReceivedAt = %v", email.ReceivedAt)
	}
}

func TestMessageToEmailRejectsBadBody(t *testing.T) {
	msg := &gmail.Message{Id: "x", Payload: &gmail.MessagePart{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: "!!!"}}}
	if _, err := MessageToEmail(msg); err == nil {
		t.Fatal("expected a decode error")
	}
	if _, err := MessageToEmail(&gmail.Message{Id: "y"}); err == nil {
		t.Fatal("expected an error for a message without payload")
	}
}

func TestBuildQuery(t *testing.T) {
	after := time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	if got := BuildQuery(DefaultQuery, after); got != "subject:(PNR OR ITINERARY) after:2026/03/07" {
		t.Errorf("BuildQuery() = %q", got)
	}
	if got := BuildQuery("", after); got != "after:2026/03/07" {
		t.Errorf("BuildQuery(\"\") = %q", got)
	}
}
