package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

const retryInterval = 3 * time.Second

// Connect opens a pgx-backed pool and pings it until the database answers
// or maxRetries attempts have failed.
func Connect(ctx context.Context, dbURL string, maxRetries int, logger *logrus.Logger) (*sql.DB, error) {
	if dbURL == "" {
		return nil, errors.New("database url is not set")
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	// sql.Open only prepares the pool.
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	var pingErr error
	for i := 1; i <= maxRetries; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			return db, nil
		}

		logger.WithError(pingErr).WithFields(logrus.Fields{
			"attempt":     i,
			"max_retries": maxRetries,
		}).Warn("Database not ready, retrying")

		if i == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	db.Close()
	return nil, fmt.Errorf("connect to database after %d attempts: %w", maxRetries, pingErr)
}
