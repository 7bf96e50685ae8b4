package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dishdash/internal/catalog"
	"dishdash/internal/config"
	"dishdash/internal/dialogue"
	"dishdash/internal/handler"
	"dishdash/internal/notify"
	"dishdash/internal/order"
	"dishdash/internal/payment"
	"dishdash/internal/rag"
	"dishdash/internal/router"
	"dishdash/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting dishdash API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Flat pricing is the reference policy; the catalogue upgrades it to
	// per-dish prices when enabled and reachable.
	var pricing order.PricePolicy = order.FlatPolicy{UnitPrice: cfg.Pricing.UnitPrice}
	var menuRepo catalog.Repository

	if cfg.Catalog.Enabled {
		pool, err := catalog.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise dish catalogue, falling back to flat pricing")
		} else {
			defer pool.Close()
			menuRepo = catalog.NewRepository(pool, logger)
			pricing = catalog.NewPricer(menuRepo, cfg.Pricing.UnitPrice, logger)
			logger.Info().Msg("dish catalogue enabled")
		}
	} else {
		logger.Info().Msg("dish catalogue disabled, using flat pricing")
	}

	// External collaborators
	gateway := payment.NewClient(cfg.Payment, logger)
	notifier := notify.NewClient(cfg.Messaging, logger)
	completion := rag.NewCompletionClient(cfg.LLM, logger)
	generator := rag.NewSummaryGenerator(completion, logger)

	retriever := rag.NewCachedRetriever(
		rag.NewRetriever(cfg.Retrieval, completion, logger),
		time.Duration(cfg.Retrieval.CacheTTLSecs)*time.Second,
		logger,
	)

	// Core components
	sessions := session.NewStore(logger)
	manager := order.NewManager(gateway, notifier, generator, pricing, logger)
	controller := dialogue.NewController(sessions, manager, retriever, logger)

	// HTTP surface
	chatHandler := handler.NewChatHandler(controller, logger)
	menuHandler := handler.NewMenuHandler(menuRepo, logger)
	mux := router.New(chatHandler, menuHandler, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Let in-flight operator alerts finish before the process exits.
		manager.Flush()

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
