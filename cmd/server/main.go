package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/suisplit/internal/auth"
	"github.com/mmynk/suisplit/internal/config"
	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/ledger/sui"
	"github.com/mmynk/suisplit/internal/middleware"
	"github.com/mmynk/suisplit/internal/nickname"
	"github.com/mmynk/suisplit/internal/proxy"
	"github.com/mmynk/suisplit/internal/service"
	"github.com/mmynk/suisplit/internal/storage/sqlite"
	"github.com/mmynk/suisplit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	suiClient := sui.New(sui.Config{
		URL:       cfg.SuiRPCURL,
		PackageID: cfg.SuiPackageID,
		Module:    cfg.SuiModule,
		Timeout:   cfg.FetchTimeout,
	}, logger)

	var backend ledger.Backend = store
	if cfg.Ledger == config.LedgerSui {
		backend = suiClient
	}
	logger.Info("Ledger backend selected", "backend", backend.Name())

	var nicknames nickname.Store = store.Nicknames()
	if cfg.RedisAddr != "" {
		rdb, err := nickname.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		nicknames = nickname.NewRedisStore(rdb, nickname.DefaultRedisKey)
		logger.Info("Nickname store selected", "store", "redis", "addr", cfg.RedisAddr)
	}

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled() {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	} else {
		logger.Warn("JWT_SECRET not set; authenticated procedures will be rejected")
	}

	svc, err := service.NewBalanceService(service.Deps{
		Backend:      backend,
		Store:        store,
		Settler:      store,
		Nicknames:    nicknames,
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	router := chi.NewRouter()

	// Register Connect services
	path, handler := service.NewBalanceServiceHandler(svc, connect.WithInterceptors(
		middleware.LoggingInterceptor(logger),
		middleware.RequireAuth(jwtManager, service.AuthenticatedProcedures...),
	))
	router.Handle(path+"*", handler)

	proxy.NewHandler(logger, suiClient, backend, cfg.ProxyRateLimit).MountRoutes(router)

	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggingMiddleware(logger, corsMiddleware(router)), &http2.Server{})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h2cHandler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
