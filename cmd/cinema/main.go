package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/adapter/api"
	rediscache "github.com/srgjo27/cinema_client/internal/adapter/cache/redis"
	"github.com/srgjo27/cinema_client/internal/adapter/handler"
	"github.com/srgjo27/cinema_client/internal/adapter/repository/postgres"
	"github.com/srgjo27/cinema_client/internal/core/ports"
	"github.com/srgjo27/cinema_client/internal/core/services"
	"github.com/srgjo27/cinema_client/internal/platform/config"
	"github.com/srgjo27/cinema_client/internal/platform/database"
	"github.com/srgjo27/cinema_client/internal/platform/httpclient"
	"github.com/srgjo27/cinema_client/internal/platform/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.WithField("env", cfg.Env).Info("starting cinema client")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	films, err := newClient("films", cfg.Films(), log)
	if err != nil {
		log.Fatalf("films backend: %v", err)
	}
	sessions, err := newClient("sessions", cfg.Sessions(), log)
	if err != nil {
		log.Fatalf("sessions backend: %v", err)
	}
	accounts, err := newClient("accounts", cfg.Accounts(), log)
	if err != nil {
		log.Fatalf("accounts backend: %v", err)
	}

	opts := []services.StoreOption{services.WithLogger(log)}

	snapshots, closeSnapshots, err := openSnapshotStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("snapshot store: %v", err)
	}
	defer closeSnapshots()
	if snapshots != nil {
		opts = append(opts, services.WithSnapshotStore(snapshots))
	}

	store := services.NewStore(
		api.NewFilmsAPI(films),
		api.NewSessionsAPI(sessions),
		api.NewAccountsAPI(accounts),
		opts...,
	)

	if err := store.RestoreSnapshot(ctx); err != nil {
		log.WithError(err).Warn("failed to restore catalog snapshot")
	}
	store.Bootstrap(ctx)

	go store.RunBackgroundRefresh(ctx, cfg.RefreshInterval)

	guard := services.NewGuard(store,
		services.WithBootstrapEvery(cfg.GuardBootstrapPeriod),
		services.WithGuardLogger(log),
	)
	cinemaHandler := handler.NewCinemaHandler(store, guard, log)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      cinemaHandler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server startup failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	store.Wait()
	log.Info("server exiting")
}

func newClient(service string, backend config.Backend, log *logrus.Logger) (*httpclient.Client, error) {
	envelope, err := httpclient.ParseEnvelope(backend.Envelope)
	if err != nil {
		return nil, err
	}
	return httpclient.New(service, backend.URL, envelope, httpclient.WithLogger(log)), nil
}

func openSnapshotStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (ports.SnapshotStore, func(), error) {
	switch cfg.SnapshotBackend {
	case "redis":
		log.WithField("addr", cfg.Redis.Addr()).Info("connecting to redis")

		client := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr(),
			DB:   cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, func() {}, err
		}

		log.Info("redis connected")
		return rediscache.NewSnapshotCache(client, cfg.SnapshotTTL), func() { client.Close() }, nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, func() {}, err
		}

		repo := postgres.NewSnapshotRepository(db, cfg.SnapshotTTL)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		go pruneSnapshots(ctx, repo, log)

		return repo, func() { db.Close() }, nil
	}

	return nil, func() {}, nil
}

// pruneSnapshots drops expired rows once an hour.
func pruneSnapshots(ctx context.Context, repo *postgres.SnapshotRepository, log *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PruneSnapshots(ctx)
			if err != nil {
				log.WithError(err).Warn("failed to prune snapshots")
				continue
			}
			if n > 0 {
				log.WithField("rows", n).Info("pruned expired snapshots")
			}
		}
	}
}
