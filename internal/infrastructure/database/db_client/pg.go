package db_client

import (
	"context"
	"fmt"
	"strconv"

	decimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mufasadev/ramp-reconciler/internal/config"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
	"github.com/mufasadev/ramp-reconciler/pkg/postgresql"
)

const applicationName = "ramp-reconciler"

type PGClient struct {
	cfg config.PostgreSQL
}

func NewPGClient(cfg config.PostgreSQL) *PGClient {
	return &PGClient{cfg: cfg}
}

// Connect opens the pool. Amount columns scan into decimal.Decimal and every session
// runs with the configured statement timeout.
func (c *PGClient) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := c.poolConfig()
	if err != nil {
		return nil, err
	}

	db, err := postgresql.NewClient(ctx, poolConfig, c.cfg.Attempts())
	if err != nil {
		return nil, fmt.Errorf("postgresql.NewClient: %w", err)
	}

	logger := log.GetLogger()
	logger.Info().
		Str("host", c.cfg.Host).
		Str("database", c.cfg.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("connected to postgres")

	return db, nil
}

func (c *PGClient) poolConfig() (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(c.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	poolConfig.MaxConns = c.cfg.PoolSize()
	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	params["statement_timeout"] = strconv.FormatInt(c.cfg.QueryTimeout().Milliseconds(), 10)

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		decimal.Register(conn.TypeMap())
		return nil
	}

	return poolConfig, nil
}
