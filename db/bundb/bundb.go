package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	rosterdb "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/ttbw-roster/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const pingTimeout = 10 * time.Second

// Open connects to Postgres and registers the roster models.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*bun.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("bundb.Open: no postgres DSN configured (set postgres.dsn or DATABASE_URL)")
	}

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("bundb.Open: %w", err)
	}

	db := bunDB(sqldb)
	db.RegisterModel(
		(*rosterdb.Player)(nil),
		(*rosterdb.PlayerHistory)(nil),
		(*rosterdb.FuzzyMatch)(nil),
	)
	if logger != nil {
		logger.DebugContext(ctx, "Database connection ready", slog.Int("max_open_conns", sqldb.Stats().MaxOpenConnections))
	}
	return db, nil
}

// bunDB returns a new bun.DB for given sql.DB connection pool.
func bunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
