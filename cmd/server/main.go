package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/api"
	"github.com/andresuchdata/supplyflow/internal/app"
	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/scheduler"
	"github.com/andresuchdata/supplyflow/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(logger.LevelForMode(cfg.Server.Mode))
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close backends")
		}
	}()

	// Periodic reorder check
	var wg sync.WaitGroup
	if cfg.Scheduler.ReorderCheckEnabled {
		reorderScheduler := scheduler.New("reorder-check", cfg.Scheduler.ReorderCheckInterval, application.Service.Monitor())
		wg.Add(1)
		go func() {
			defer wg.Done()
			reorderScheduler.Run(ctx)
		}()
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{Replenishment: application.Service}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.App.StoreDriver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error().Err(err).Msg("Failed to start server")
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()

	logger.Log.Info().Msg("Server exiting")
}
