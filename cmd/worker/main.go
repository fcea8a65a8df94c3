// Package main provides the entrypoint for the ChargeRoute background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/directions/googlemaps"
	"github.com/chargeroute/chargeroute/internal/provider/resilience"
	"github.com/chargeroute/chargeroute/internal/stations"
	"github.com/chargeroute/chargeroute/internal/stations/googleplaces"
	"github.com/chargeroute/chargeroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "chargeroute-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ChargeRoute worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := resilience.NewRegistry()

	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - prewarm runs against degraded providers")
	}

	directionsService := directions.NewService(directions.ServiceConfig{
		Provider: googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey:   mapsAPIKey,
			Registry: registry,
			Logger:   log,
		}),
		Logger: log,
	})

	stationsService := stations.NewService(stations.ServiceConfig{
		Provider: googleplaces.NewClient(googleplaces.ClientConfig{
			APIKey:   mapsAPIKey,
			Registry: registry,
			Logger:   log,
		}),
		Logger: log,
	})

	prewarmJob := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:            worker.DefaultPrewarmConfig(),
		Logger:            log,
		DirectionsService: directionsService,
		StationsService:   stationsService,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub-triggered jobs; fall back to a local ticker when no
	// subscription is configured (local development).
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")

	if subscription != "" && projectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			PrewarmJob:       prewarmJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
		log.Info().Str("subscription", subscription).Msg("worker consuming pubsub jobs")
	} else {
		log.Warn().Msg("PUBSUB_SUBSCRIPTION not configured - running periodic prewarm instead")

		go func() {
			ticker := time.NewTicker(30 * time.Minute)
			defer ticker.Stop()

			// Warm once on startup
			prewarmJob.Run(ctx)

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					prewarmJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
