// Package db opens the configured document store backend.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"Inkwell/internal/config"
	"Inkwell/internal/core/docstore"
	"Inkwell/internal/db/migrations"
	"Inkwell/internal/db/mongo"
	"Inkwell/internal/db/postgres"
)

// OpenSQL connects to Postgres and verifies the connection
func OpenSQL(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// OpenStore returns the store selected by cfg.StoreDriver. Postgres migrations and Mongo
// indexes are applied before returning.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return docstore.NewMemoryStore(docstore.WithLogger(logger)), nil

	case config.DriverPostgres:
		conn, err := OpenSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		logger.Info("connected to postgres document store")
		return postgres.NewDocumentStore(conn, logger), nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, client, cfg.MongoDatabase); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("connected to mongo document store", "database", cfg.MongoDatabase)
		return mongo.NewDocumentStore(client, cfg.MongoDatabase, logger), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
