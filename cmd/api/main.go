package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartlocations_backend/internal/cache"
	"smartlocations_backend/internal/config"
	apphttp "smartlocations_backend/internal/http"
	"smartlocations_backend/internal/http/router"
	"smartlocations_backend/internal/narrative"
	"smartlocations_backend/internal/nominatim"
	"smartlocations_backend/internal/overpass"
	"smartlocations_backend/internal/prefs"
	"smartlocations_backend/internal/search"
	"smartlocations_backend/platform/logger"
	"smartlocations_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Optional Redis: shared result cache and preference store. Without it
	// the process falls back to an in-process cache and built-in preference
	// defaults.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			panic("invalid REDIS_URL: " + err.Error())
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		log.Info("redis connected", "addr", opts.Addr)
	}

	var store cache.Store
	if redisClient != nil {
		store = cache.NewRedis(redisClient, log)
	} else {
		store = cache.NewMemory(log)
	}
	go cache.RunSweeper(ctx, store, cfg.CacheSweepInterval, log)

	overpassClient := overpass.NewClient(cfg.OverpassEndpoints, cfg.ClientUserAgent, log)
	geocoderClient := nominatim.NewClient(cfg.NominatimURL, cfg.ClientUserAgent, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Optional AI narrative service; its routes answer 503 when disabled.
	var narrativeSvc *narrative.Service
	if cfg.GeminiAPIKey != "" {
		narrativeSvc, err = narrative.NewService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Error("failed to initialize narrative service", "error", err)
			panic("failed to initialize narrative service: " + err.Error())
		}
		log.Info("narrative service initialized", "model", cfg.GeminiModel)
	} else {
		log.Info("narrative service disabled, GEMINI_API_KEY not set")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	searchModule := search.NewModule(overpassClient, geocoderClient, store, cfg.CacheTTL, val, log)
	narrativeModule := narrative.NewModule(narrativeSvc)
	prefsModule, err := prefs.NewModule(redisClient, val, log)
	if err != nil {
		log.Error("failed to initialize preferences module", "error", err)
		panic("failed to initialize preferences module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Modules: []apphttp.Module{
			searchModule,
			narrativeModule,
			prefsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
