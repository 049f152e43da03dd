package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yatube/yatube-backend/internal/auth"
	"github.com/yatube/yatube-backend/internal/config"
	"github.com/yatube/yatube-backend/internal/log"
	"github.com/yatube/yatube-backend/internal/metrics"
	"github.com/yatube/yatube-backend/internal/storage"
	_ "github.com/yatube/yatube-backend/internal/storage/memory"   // register in-memory backend
	_ "github.com/yatube/yatube-backend/internal/storage/postgres" // register postgres backend
	"github.com/yatube/yatube-backend/internal/store"
	"github.com/yatube/yatube-backend/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting Yatube server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("yatube")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Open the storage backend
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to open storage", "error", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		logger.Fatalw("Storage ping failed", "error", err)
	}
	logger.Infow("Storage initialized", "in_memory", cfg.Database.UseInMemory)

	// Setup cache; an unreachable Redis degrades to in-memory
	cache, err := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.Fatalw("Cache ping failed", "error", err)
	}
	logger.Infow("Cache connection established")

	// Sessions live in the cache store
	sessions := auth.NewSessionManager(cache, cfg.Sessions.TTL)

	// Create handler and middleware
	handler, err := web.NewHandler(db, cache, sessions, cfg, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to create handler", "error", err)
	}

	middleware := web.NewMiddleware(logger, metricsObj, sessions, db.Users(), cfg.Sessions.CookieName)

	// Create router with middleware and routes
	router := handler.Routes(middleware, cfg.Security.CORSAllowedOrigins, cfg.Security.RateLimitRPM)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
