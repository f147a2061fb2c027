package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const postgresDriver = "postgres"

// PGXPoolConfig creates a pgxpool.Config from the postgres section.
func PGXPoolConfig(pc PostgresConfig) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(pc.DSN)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("parsing postgres dsn: %w", err))
	}

	dbConfig.MaxConns = pc.MaxConns
	dbConfig.MinConns = pc.MinConns
	dbConfig.MaxConnLifetime = pc.MaxConnLifetime
	dbConfig.MaxConnIdleTime = pc.MaxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = pc.ConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool creates a pgxpool.Pool and verifies the connection.
func OpenPGXPool(ctx context.Context, pc PostgresConfig) (*pgxpool.Pool, error) {
	dbConfig, err := PGXPoolConfig(pc)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, nil
}

// OpenSQLDB creates a *sql.DB using the lib/pq driver and verifies the connection.
func OpenSQLDB(ctx context.Context, pc PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open(postgresDriver, pc.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	configurePool(db, pc)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return db, nil
}

// OpenSQLX creates a *sqlx.DB using the lib/pq driver and verifies the connection.
func OpenSQLX(ctx context.Context, pc PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriver, pc.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	configurePool(db.DB, pc)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return db, nil
}

func configurePool(db *sql.DB, pc PostgresConfig) {
	db.SetMaxOpenConns(int(pc.MaxConns))
	db.SetMaxIdleConns(int(pc.MinConns))
	db.SetConnMaxLifetime(pc.MaxConnLifetime)
	db.SetConnMaxIdleTime(pc.MaxConnIdleTime)
}
