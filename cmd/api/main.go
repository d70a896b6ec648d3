package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/lead-tracker/internal/auth"
	"github.com/octobees/lead-tracker/internal/config"
	"github.com/octobees/lead-tracker/internal/database"
	"github.com/octobees/lead-tracker/internal/handler"
	middlewarepkg "github.com/octobees/lead-tracker/internal/middleware"
	"github.com/octobees/lead-tracker/internal/repository"
	"github.com/octobees/lead-tracker/internal/router"
	"github.com/octobees/lead-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	leadsRepo, cleanup, err := buildLeadsRepository(cfg)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer cleanup()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	leadsService := service.NewLeadsService(leadsRepo)
	authService := service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, jwtManager)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Leads:       handler.NewLeadsHandler(leadsService),
		AdminImport: handler.NewAdminImportHandler(leadsService),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(middlewarepkg.Metrics())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: cfg.CORSAllowOrigins}))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func buildLeadsRepository(cfg *config.Config) (repository.LeadsRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewPGXLeadsRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	default:
		return repository.NewJSONLeadsRepository(cfg.DataFile), func() {}, nil
	}
}
