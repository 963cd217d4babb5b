package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sebringj/localstack/internal/api"
	"github.com/sebringj/localstack/internal/api/handlers"
	"github.com/sebringj/localstack/internal/auth"
	"github.com/sebringj/localstack/internal/config"
	"github.com/sebringj/localstack/internal/logger"
	"github.com/sebringj/localstack/internal/models"
	"github.com/sebringj/localstack/internal/monitoring"
	"github.com/sebringj/localstack/internal/services"
	"github.com/sebringj/localstack/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up the store engine
	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store engine")
	}
	defer store.Close()

	// Set up services
	userService := services.NewUserService(store)
	todoService := services.NewTodoService(store)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Provision any configured accounts. User creation is otherwise out of
	// band; there is no registration endpoint.
	if err := seedUsers(userService, cfg.SeedUsers); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed users")
	}

	// Set up and start scheduled store maintenance
	maintenance, err := monitoring.NewMaintenance(store, cfg.GCSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.GCSchedule).Msg("Invalid GC schedule")
	}
	maintenance.Start()

	// Set up router
	router := api.NewRouter(
		tokens,
		handlers.NewAuthHandler(userService, tokens),
		handlers.NewTodoHandler(todoService),
		handlers.NewHealthHandler(store),
	)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	maintenance.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// openStore builds the configured store engine.
func openStore(cfg *config.Config) (storage.Engine, error) {
	switch cfg.StoreEngine {
	case "badger":
		return storage.NewBadgerEngine(cfg.DataPath, log.Logger)
	case "memory":
		return storage.NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("unknown store engine %q", cfg.StoreEngine)
	}
}

// seedUsers provisions accounts from a "user:pass,user:pass" list.
// Already-existing accounts are left untouched.
func seedUsers(userService services.UserServiceProvider, seeds string) error {
	if seeds == "" {
		return nil
	}
	for _, entry := range strings.Split(seeds, ",") {
		username, password, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			return fmt.Errorf("malformed seed entry %q, want user:pass", entry)
		}
		_, err := userService.CreateUser(context.Background(), username, password)
		if errors.Is(err, models.ErrUserExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %q: %w", username, err)
		}
		log.Info().Str("username", username).Msg("Seeded user")
	}
	return nil
}
