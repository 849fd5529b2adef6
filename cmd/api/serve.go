package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bookmarkhub/internal/auth"
	"github.com/geocoder89/bookmarkhub/internal/cache"
	"github.com/geocoder89/bookmarkhub/internal/config"
	"github.com/geocoder89/bookmarkhub/internal/db"
	httpx "github.com/geocoder89/bookmarkhub/internal/http"
	"github.com/geocoder89/bookmarkhub/internal/http/handlers"
	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/geocoder89/bookmarkhub/internal/repo/memory"
	"github.com/geocoder89/bookmarkhub/internal/repo/postgres"
	"github.com/geocoder89/bookmarkhub/internal/service/account"
	"github.com/geocoder89/bookmarkhub/internal/service/bookmarks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const serviceName = "bookmarkhub-api"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

// backend is whichever store STORAGE_DRIVER selected.
type backend struct {
	users     account.UserStore
	bookmarks bookmarks.Repository
	ping      handlers.Pinger
	close     func()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: serviceName,
			Env:         cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store, err := openBackend(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer store.close()

	checks := map[string]handlers.Pinger{"store": store.ping}

	var listCache cache.Store
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, log)
		defer rc.Close()

		listCache = rc
		checks["cache"] = rc.Ping
	} else if cfg.StorageDriver == config.StorageDriverMemory {
		// A process-local cache is only coherent when the data is process-local too.
		listCache = cache.New(cfg.CacheTTL)
	} else {
		log.Info("list cache disabled: REDIS_ADDR not set")
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	router := httpx.NewRouter(httpx.Deps{
		Log:                log,
		Env:                cfg.Env,
		Accounts:           account.NewService(store.users, tokens, log),
		Bookmarks:          bookmarks.NewService(store.bookmarks, log, bookmarks.WithCache(listCache), bookmarks.WithMetrics(prom)),
		Tokens:             tokens,
		Users:              store.users,
		Checks:             checks,
		Prom:               prom,
		Gatherer:           reg,
		ServiceName:        serviceName,
		TracingEnabled:     cfg.OTelEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (backend, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")

		s := memory.NewStore()
		return backend{users: s.Users, bookmarks: s.Bookmarks, ping: s.Ping, close: func() {}}, nil
	}

	if cfg.AutoMigrate {
		if err := db.MigrateUp(cfg.DBURL, nil); err != nil {
			return backend{}, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return backend{}, err
	}

	s := postgres.NewStore(pool, prom)
	return backend{users: s.Users, bookmarks: s.Bookmarks, ping: s.Ping, close: pool.Close}, nil
}
