// Package main runs the one-off OAuth consent flow for the intake mailbox
// and prints the refresh token to put in GMAIL_REFRESH_TOKEN.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pnr-itinerary-service/internal/infrastructure/config"
	"pnr-itinerary-service/internal/infrastructure/oauth"
	"pnr-itinerary-service/pkg/logger"
)

const (
	callbackAddr = "localhost:8090"
	callbackPath = "/oauth2callback"
)

func main() {
	log := logger.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET are required")
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "http://"+callbackAddr+callbackPath, "", log)

	state, err := randomState()
	if err != nil {
		log.Fatal("Failed to generate state", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to exchange code: %v", err), http.StatusInternalServerError)
			return
		}

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		done <- token.RefreshToken
	})

	server := &http.Server{Addr: callbackAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Callback server error", "error", err)
		}
	}()

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	select {
	case token := <-done:
		fmt.Printf("\nRefresh Token: %s\n\n", token)
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "Interrupted")
	}

	server.Shutdown(context.Background())
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
