package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/notexe/remind/internal/api"
	"github.com/notexe/remind/internal/backend"
	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/suggest"
)

func main() {
	configPath := flag.String("config", config.GetDefaultBackendConfigPath(), "Path to backend configuration file")
	flag.Parse()

	_ = godotenv.Load() // REMIND_OPENAI_API_KEY, REMIND_PADDLE_WEBHOOK_SECRET etc.

	cfg, err := config.LoadBackend(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := gate.OpenStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("[backend] Failed to open database: %v", err)
	}
	defer store.Close()

	g := gate.New(store, gate.Options{
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	})

	provider, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		log.Fatalf("[backend] Failed to create AI provider: %v", err)
	}
	defer provider.Close()

	suggester := suggest.New(provider, suggest.Options{
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     time.Duration(cfg.AI.Timeout) * time.Second,
	})

	maintenance, err := backend.StartMaintenance(g, time.Duration(cfg.Maintenance.IntervalMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("[backend] Failed to start maintenance: %v", err)
	}
	defer maintenance.Shutdown()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           backend.NewServer(g, suggester, backend.LogMailer{}, cfg.Paddle).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("[backend] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[backend] Shutdown error: %v", err)
		}
	}()

	log.Printf("[backend] Listening on %s (provider: %s, model: %s)", cfg.Addr(), provider.Name(), cfg.AI.Model)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[backend] Server error: %v", err)
	}
}
