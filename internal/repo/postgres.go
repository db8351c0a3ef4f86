package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/miradorstack/mirador-fmeda/internal/cache"
	"github.com/miradorstack/mirador-fmeda/internal/config"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// PostgresRepo reads projects, the failure-mode catalog and calculation history from
// Postgres. Variants and mission profiles are cached through the provider.
type PostgresRepo struct {
	db        *sql.DB
	cache     cache.Provider
	recordTTL time.Duration
	logger    *slog.Logger
}

// NewPostgresRepo wraps an open pool.
func NewPostgresRepo(db *sql.DB, cacheProvider cache.Provider, recordTTL time.Duration, logger *slog.Logger) *PostgresRepo {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	if recordTTL < 0 {
		recordTTL = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepo{db: db, cache: cacheProvider, recordTTL: recordTTL, logger: logger}
}

// Open creates a Postgres pool from cfg and pings it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Ping reports whether the database is reachable.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepo) cached(ctx context.Context, key string, dst any) bool {
	if err := cache.GetJSON(ctx, r.cache, key, dst); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Debug("record cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	return true
}

func (r *PostgresRepo) remember(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, r.cache, key, v, r.recordTTL); err != nil {
		r.logger.Debug("record cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func queryError(op string, err error) error {
	return utils.NewAppError(op, "query failed", err)
}

func notFoundOr(op, kind string, id uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NotFound(op, kind, id)
	}
	return queryError(op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func uuidPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}
