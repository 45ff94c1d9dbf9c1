package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/smartbus/fleet-admin/internal/auth"
	"github.com/smartbus/fleet-admin/internal/config"
	"github.com/smartbus/fleet-admin/internal/handlers"
	"github.com/smartbus/fleet-admin/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		// No requests can be served without the store.
		log.Fatalf("Failed to open %s store: %v", cfg.Backend, err)
	}
	defer st.Close(ctx)
	log.WithField("backend", cfg.Backend).Info("Store ready")

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	if err := ensureDefaultAdmin(ctx, st, authService, cfg); err != nil {
		log.Fatalf("Failed to seed default admin: %v", err)
	}

	router := handlers.NewRouter(st, authService, handlers.RouterOptions{
		RateLimitPerWindow: cfg.RateLimitPerWindow,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
	log.Fatal(srv.ListenAndServe())
}

// openStore selects the Fleet Repository backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendPostgres:
		return store.OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendMongo:
		return store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// ensureDefaultAdmin seeds the configured admin account if it does not
// already exist.
func ensureDefaultAdmin(ctx context.Context, st store.Store, authService *auth.Service, cfg *config.Config) error {
	_, err := st.AdminByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := authService.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if _, err := st.CreateAdmin(ctx, cfg.AdminUsername, hash); err != nil {
		return err
	}
	log.WithField("username", cfg.AdminUsername).Info("Default admin user created")
	return nil
}
