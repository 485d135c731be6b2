package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/stepguide/backend/internal/api"
	"github.com/stepguide/backend/internal/config"
	"github.com/stepguide/backend/internal/logging"
	"github.com/stepguide/backend/internal/mcp"
	"github.com/stepguide/backend/internal/services"
	"github.com/stepguide/backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workflow HTTP and MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	// Load configuration
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Initialize logging
	logger := logging.NewLogger(cfg.Log.Level)
	logger.Info("starting stepguide",
		"port", cfg.Server.Port,
		"store_dir", cfg.Store.Dir,
		"generation_enabled", cfg.OpenAI.APIKey != "",
	)

	// Initialize the workflow store
	fileStore, err := store.NewFileStore(cfg.Store.Dir, logger)
	if err != nil {
		return fmt.Errorf("initialize workflow store: %w", err)
	}

	// Initialize the generation service. A missing credential disables the
	// generation endpoint only; stored workflows keep working.
	var generator services.Generator
	if cfg.OpenAI.APIKey != "" {
		g, err := services.NewOpenAIGenerator(services.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("initialize generator: %w", err)
		}
		generator = g
	} else {
		logger.Warn("no generation credential configured; POST /api/generate-workflow is disabled")
	}
	generation := services.NewGenerationService(generator, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins(),
	}))
	e.Use(otelecho.Middleware("stepguide"))

	// Mount REST API handlers
	apiServer := api.NewServer(fileStore, generation, logger)
	apiServer.Register(e)

	// Mount MCP protocol handlers on the same store
	mcpServer := mcp.NewServer(fileStore)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	// Create HTTP server. The write timeout leaves room for a slow
	// generation round-trip.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed, forcing close", "error", err)
			if err := server.Close(); err != nil {
				return fmt.Errorf("server close: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
	}

	return nil
}
