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

	"supplier-portal/internal/handler"
	"supplier-portal/internal/middleware"
	"supplier-portal/internal/service"
	"supplier-portal/internal/store"
	"supplier-portal/pkg/cache"
	"supplier-portal/pkg/database"
	"supplier-portal/pkg/genai"
	"supplier-portal/pkg/jwtutil"
	"supplier-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()
	log.Info("Starting supplier portal...", zap.String("environment", cfg.Server.Env))
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Store.Seed {
		seeded, err := st.Seed(ctx, store.DemoData())
		if err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		log.Info("Registry seed checked", zap.Bool("seeded", seeded))
	}

	reportCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		// The cache is optional; lookups still work without it
		log.Warn("Redis unavailable, continuing without report cache", zap.Error(err))
		reportCache, _ = cache.NewRedisCache(cfg.Redis.Disabled())
	}
	defer reportCache.Close()

	var generator service.TextGenerator
	if cfg.Reputation.APIKey != "" {
		client, err := genai.NewClient(ctx, cfg.Reputation, log.Named("genai"))
		if err != nil {
			return err
		}
		generator = client
		log.Info("External reputation generator configured", zap.String("model", cfg.Reputation.Model))
	} else {
		log.Warn("REPUTATION_API_KEY not set, external lookups and risk analysis are disabled")
	}

	jwt := jwtutil.NewJWTUtil(&cfg.JWT)
	auth, err := service.NewAuthService(cfg.Manager, jwt, log.Named("auth"))
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}

	suppliers := service.NewSupplierService(st, log.Named("suppliers"))
	evaluations := service.NewEvaluationService(st, log.Named("evaluations"))
	issues := service.NewIssueService(st, log.Named("issues"))
	penalties := service.NewPenaltyService(st, log.Named("penalties"))
	complaints := service.NewComplaintService(st, log.Named("complaints"))
	desk := service.NewReputationDesk(st, generator, reportCache, cfg.Reputation, log.Named("reputation"))
	analyzer := service.NewRiskAnalyzer(st, generator, reportCache, cfg.Reputation, log.Named("analysis"))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)
	e.Use(logger.Middleware())

	handler.RegisterRoutes(e, handler.Handlers{
		Auth:       handler.NewAuthHandler(auth),
		Evaluation: handler.NewEvaluationHandler(evaluations, issues),
		Supplier:   handler.NewSupplierHandler(suppliers, issues),
		Reputation: handler.NewReputationHandler(desk),
		Management: handler.NewManagementHandler(suppliers, penalties, issues, complaints, analyzer),
	}, jwt)

	// Start server
	port := cfg.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited properly")
	return nil
}

// openStore returns the configured registry backend
func openStore(ctx context.Context) (store.Store, error) {
	log := logger.GetLogger()

	if cfg.Store.Driver != "postgres" {
		log.Info("Using in-memory store")
		return store.NewMemoryStore(), nil
	}

	if _, err := database.InitDB(&cfg.DB); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.MigrateModels(store.Models()...); err != nil {
		return nil, err
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	return store.NewGormStore(database.GetDB().WithContext(ctx)), nil
}
