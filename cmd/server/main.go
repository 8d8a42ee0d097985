// Command storefront starts the store's HTTP API server.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mlozanov/storefront/internal/limiter"
	"github.com/mlozanov/storefront/internal/migrate"
	"github.com/mlozanov/storefront/internal/repository/postgres"
	httpserver "github.com/mlozanov/storefront/internal/server/http"
	"github.com/mlozanov/storefront/internal/service"
	"github.com/mlozanov/storefront/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// envOr prefers the flag value, falling back to the environment.
func envOr(flagValue, envName string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envName)
}

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	// Flags
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (or DATABASE_DSN)")
	jwtKey := flag.String("jwt-key", "", "HS256 signing key (or JWT_KEY; random when empty)")
	accessTTL := flag.Duration("access-ttl", token.DefaultTTL, "access token TTL")
	bcryptCost := flag.Int("bcrypt-cost", 0, "bcrypt cost (0 = default)")
	loginWindow := flag.Duration("login-window", 15*time.Minute, "failed-login counting window")
	loginMaxFails := flag.Int("login-max-fails", 5, "failed logins tolerated per window")
	loginBlock := flag.Duration("login-block", 15*time.Minute, "lockout duration after too many failures")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	connStr := envOr(*dsn, "DATABASE_DSN")
	if connStr == "" {
		logger.Fatal("missing database DSN (--dsn or DATABASE_DSN)")
	}

	// A generated key means issued tokens do not survive a restart; set
	// --jwt-key or JWT_KEY to keep sessions across restarts.
	key := []byte(envOr(*jwtKey, "JWT_KEY"))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			logger.Fatal("generate signing key", zap.Error(err))
		}
		logger.Warn("no signing key configured, generated an ephemeral one")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, connStr); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	productRepo := postgres.NewProductRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	lim := limiter.NewPG(pool, *loginWindow, *loginMaxFails, *loginBlock)

	// Services
	codec := token.NewCodec(key, *accessTTL, logger)
	authSvc := service.NewAuthService(userRepo, codec, *bcryptCost, lim, logger)
	catalogSvc := service.NewCatalogService(productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo)

	app := httpserver.NewServer(authSvc, catalogSvc, cartSvc, orderSvc, codec, userRepo, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
