package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/pkg/logger"
)

func TestChatAlertRepositorySend(t *testing.T) {
	var got entity.SendChatMessage
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "result": {"message_id": 42}}`))
	}))
	defer srv.Close()

	repo := NewChatAlertRepository(srv.URL+"/", "TOKEN123", "-100200", logger.NewNopLogger())
	err := repo.Send(context.Background(), &entity.Alert{
		Type:    entity.SuspiciousConversion,
		Title:   "PNR Conversion Issue Detected",
		Input:   "HELLO",
		Problem: "No flights found",
		Snippet: `{"flights":[]}`,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/botTOKEN123/sendMessage" {
		t.Errorf("path = %q, want /botTOKEN123/sendMessage", gotPath)
	}
	if got.ChatID != "-100200" || got.ParseMode != "Markdown" {
		t.Errorf("message = %+v", got)
	}
	for _, want := range []string{"PNR Conversion Issue Detected", "`HELLO`", "No flights found", `{"flights":[]}`} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("text %q does not contain %q", got.Text, want)
		}
	}
}

func TestChatAlertRepositoryRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	repo := NewChatAlertRepository(srv.URL, "T", "C", logger.NewNopLogger())
	err := repo.Send(context.Background(), &entity.Alert{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Send() error = %v, want chat not found", err)
	}
}
