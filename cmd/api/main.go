package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/adapters/auth/supabase"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/withdrawal"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
	"github.com/106shubh/JeevanDhara-sub000/internal/ports/auth"
	"github.com/106shubh/JeevanDhara-sub000/internal/router"
)

// @title JeevanDhara compliance API
// @version 1.0
// @description Backend de compliance de retiro (withdrawal) y alertas para el dashboard de campo.
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin SUPABASE_URL/SUPABASE_ANON_KEY queda en modo dev
	// (header X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		client := supabase.NewClient(supabase.Config{
			BaseURL: url,
			APIKey:  os.Getenv("SUPABASE_ANON_KEY"),
		})
		verifier = supabase.NewVerifier(client)
	}

	app := router.New(router.Options{
		AuthVerifier: verifier,
		Thresholds:   thresholdsFromEnv(),
		Logger:       log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.Checker.Run(ctx, durationEnv("COMPLIANCE_INTERVAL", time.Hour))

	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func thresholdsFromEnv() withdrawal.Thresholds {
	th := withdrawal.DefaultThresholds()
	if v := intEnv("WITHDRAWAL_URGENT_DAYS"); v > 0 {
		th.Urgent = v
	}
	if v := intEnv("WITHDRAWAL_WARNING_DAYS"); v > 0 {
		th.Warning = v
	}
	return th
}

func intEnv(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
