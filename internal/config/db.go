package config

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	// NUMERIC columns scan into shopspring decimals on every pooled connection
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	maxRetries := 5
	retryInterval := 5 * time.Second

	var pool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		log.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries).
			Dur("retry_in", retryInterval).
			Msg("failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL CHECK (role IN ('owner', 'admin')),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messes (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		area TEXT NOT NULL,
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0), -- monthly price
		delivery BOOLEAN NOT NULL DEFAULT FALSE,
		menu TEXT[] NOT NULL DEFAULT '{}',
		image_url TEXT, -- public path of the uploaded image
		owner_id INTEGER NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messes_owner_id ON messes(owner_id);
	CREATE INDEX IF NOT EXISTS idx_messes_area ON messes(LOWER(area));

    CREATE OR REPLACE FUNCTION update_updated_at_column()
    RETURNS TRIGGER AS $$
    BEGIN
       NEW.updated_at = NOW();
       RETURN NEW;
    END;
    $$ language 'plpgsql';

    DO $$
    BEGIN
        IF NOT EXISTS (
            SELECT 1
            FROM pg_trigger
            WHERE tgname = 'set_messes_updated_at' AND tgrelid = 'messes'::regclass
        ) THEN
            CREATE TRIGGER set_messes_updated_at
            BEFORE UPDATE ON messes
            FOR EACH ROW
            EXECUTE FUNCTION update_updated_at_column();
        END IF;
    END
    $$;
	`

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	log.Info().Msg("AutoMigrate applied successfully")
	return nil
}
