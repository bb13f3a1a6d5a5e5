package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OpenPostgres creates a pgx pool and makes sure the run history table exists.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("db.postgres.connecting")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.postgres.parse_config_failed", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "po-matcher"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.postgres.connect_failed", "error", err)
		return nil, err
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}

	logger.Info("db.postgres.connected")
	return pool, nil
}

// OpenSQLite opens (or creates) a SQLite database and ensures the run history
// table exists. Pass ":memory:" for an in-memory database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparison_runs (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			po_source TEXT NOT NULL,
			invoice_source TEXT NOT NULL,
			po_type TEXT NOT NULL,
			invoice_type TEXT NOT NULL,
			status TEXT NOT NULL,
			error_code TEXT,
			error_message TEXT,
			overall_flag INTEGER,
			reasoner TEXT NOT NULL,
			report TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_runs_started_at ON comparison_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_runs_status ON comparison_runs(status)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS comparison_runs (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		po_source TEXT NOT NULL,
		invoice_source TEXT NOT NULL,
		po_type TEXT NOT NULL,
		invoice_type TEXT NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT,
		error_message TEXT,
		overall_flag BOOLEAN,
		reasoner TEXT NOT NULL,
		report JSONB,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comparison_runs_started_at ON comparison_runs(started_at)`,
}

// Close closes the database connections gracefully. Either handle may be nil.
func Close(pool *pgxpool.Pool, db *sql.DB, logger *slog.Logger) {
	logger.Info("db.closing")
	if pool != nil {
		pool.Close()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("db.close_failed", "error", err)
		}
	}
	logger.Info("db.closed")
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("db.ping")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("db.ping_failed", "error", err)
		return err
	}
	logger.Debug("db.ping_ok")
	return nil
}
