// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package health serves liveness and status endpoints for the bot process.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Source reports live process figures.
type Source interface {
	ActiveConversations() int
}

// Status is the /status payload.
type Status struct {
	Status              string   `json:"status"`
	Version             string   `json:"version"`
	Uptime              string   `json:"uptime"`
	ActiveConversations int      `json:"active_conversations"`
	OfficeRuntime       string   `json:"office_runtime"`
	Conversions         []string `json:"conversions"`
}

// Info is static process information included in /status.
type Info struct {
	Version       string
	OfficeRuntime string
	Conversions   []string
}

// Handler returns a router serving GET /healthz and GET /status.
func Handler(src Source, info Info) http.Handler {
	started := time.Now()
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, Status{
			Status:              "healthy",
			Version:             info.Version,
			Uptime:              time.Since(started).Round(time.Second).String(),
			ActiveConversations: src.ActiveConversations(),
			OfficeRuntime:       info.OfficeRuntime,
			Conversions:         info.Conversions,
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding status")
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("health server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
