// Package main provides the entrypoint for the ChargeRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/api"
	"github.com/chargeroute/chargeroute/internal/api/middleware"
	"github.com/chargeroute/chargeroute/internal/auth"
	"github.com/chargeroute/chargeroute/internal/database"
	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/directions/googlemaps"
	"github.com/chargeroute/chargeroute/internal/planner"
	"github.com/chargeroute/chargeroute/internal/provider/resilience"
	"github.com/chargeroute/chargeroute/internal/stations"
	"github.com/chargeroute/chargeroute/internal/stations/googleplaces"
	"github.com/chargeroute/chargeroute/internal/telemetry"
	"github.com/chargeroute/chargeroute/internal/trips"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "chargeroute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ChargeRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    authUserRepo,
		RefreshRepo: authRefreshRepo,
	})
	log.Info().Msg("auth service initialized")

	// Provider health registry, shared by the resilient clients and the
	// ops status endpoint
	registry := resilience.NewRegistry()

	// Google Maps API key drives both the directions and the station
	// discovery providers
	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - road routing degrades to straight-line estimates")
	}

	directionsClient := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:   mapsAPIKey,
		Registry: registry,
		Logger:   log,
	})
	directionsService := directions.NewService(directions.ServiceConfig{
		Provider: directionsClient,
		Logger:   log,
	})
	log.Info().Msg("directions service initialized")

	placesClient := googleplaces.NewClient(googleplaces.ClientConfig{
		APIKey:   mapsAPIKey,
		Registry: registry,
		Logger:   log,
	})
	stationsService := stations.NewService(stations.ServiceConfig{
		Provider: placesClient,
		Logger:   log,
	})
	log.Info().Msg("stations service initialized")

	plannerService := planner.NewService(planner.ServiceConfig{
		Directions: directionsService,
		Stations:   stationsService,
		Logger:     log,
	})
	log.Info().Msg("planner service initialized")

	// Initialize trips repository and service
	tripsRepo := trips.NewPostgresRepository(pool)
	tripsService := trips.NewService(tripsRepo, log)
	log.Info().Msg("trips service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		AuthService:    authService,
		PlannerService: plannerService,
		TripsService:   tripsService,
		Registry:       registry,
		DB:             pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
