package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/adapters/cache"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/adapters/database"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/adapters/events"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/adapters/providers/postal"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/api/handlers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/api/routes"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/application/services"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/providers"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/observability"
	"github.com/zatekoja/Referralnetworkdesign/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	providerRepo := database.NewProviderAdapter(pgClient)
	leadRepo := database.NewLeadAdapter(pgClient)
	assignmentRepo := database.NewAssignmentAdapter(pgClient)

	var lookupProvider providers.PostalLookupProvider
	if cfg.PostalLookup.BaseURL == "mock" {
		lookupProvider = postal.NewMockPostalProvider()
		log.Info().Msg("using mock postal lookup provider")
	} else {
		lookupProvider = postal.NewViaCEPProvider(cfg.PostalLookup.BaseURL, cfg.PostalLookup.Timeout())
	}

	resolver := services.NewLocationResolverService(lookupProvider, cacheProvider, services.ResolverConfig{
		TTL:           cfg.Engine.LocationCacheTTL,
		SweepInterval: cfg.Engine.CacheSweepInterval,
		DefaultState:  cfg.PostalLookup.DefaultState,
		Concurrency:   cfg.Engine.ResolveConcurrency,
	}, metrics)
	resolver.StartSweep()
	defer resolver.Stop()

	assignmentService := services.NewAssignmentService(
		providerRepo,
		leadRepo,
		assignmentRepo,
		resolver,
		services.DefaultMatchers(providerRepo),
		eventBus,
		metrics,
		cfg.PostalLookup.DefaultState,
	)
	capacityMonitor := services.NewCapacityMonitorService(providerRepo, assignmentRepo, cfg.Engine.CapacityWarningThreshold)
	rebalancingService := services.NewRebalancingService(providerRepo, leadRepo, assignmentRepo, assignmentService, metrics)

	router := routes.NewRouter(
		handlers.NewAssignmentHandler(assignmentService),
		handlers.NewOpsHandler(rebalancingService, capacityMonitor, resolver),
		handlers.NewLocationHandler(resolver),
		metrics,
	)
	router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
