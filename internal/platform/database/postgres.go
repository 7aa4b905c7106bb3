package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/cinema_client/internal/platform/config"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
)

func DSN(cfg config.Postgres) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
}

// NewPostgresDB opens the pool and waits for the server, retrying while it
// starts up. The postgres driver must be registered by the caller.
func NewPostgresDB(ctx context.Context, cfg config.Postgres, log *logrus.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	entry := log.WithFields(logrus.Fields{"host": cfg.Host, "db": cfg.DBName})

	for i := 1; i <= maxRetries; i++ {
		entry.WithField("attempt", i).Info("connecting to database")

		db, err = sql.Open("postgres", DSN(cfg))
		if err == nil {
			err = db.PingContext(ctx)
		}

		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(10)
			db.SetConnMaxLifetime(5 * time.Minute)

			entry.Info("database connected")
			return db, nil
		}

		if db != nil {
			db.Close()
		}

		entry.WithError(err).Warn("database not ready yet")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
}
