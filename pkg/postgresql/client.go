package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mufasadev/ramp-reconciler/pkg/util/repeat"
)

const ClientTimeout = 5 * time.Second

// Client is the subset of pgxpool.Pool the repositories use. pgxmock pools satisfy it too.
type Client interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pinger is implemented by pools that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(ctx context.Context, cfg *pgxpool.Config, maxConnAttempts int) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := repeat.Repeat(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, ClientTimeout)
		defer cancel()

		p, err := pgxpool.NewWithConfig(attemptCtx, cfg)
		if err != nil {
			return err
		}

		if err = p.Ping(attemptCtx); err != nil {
			p.Close()
			return err
		}

		pool = p
		return nil
	}, maxConnAttempts, ClientTimeout)

	if err != nil {
		return nil, err
	}

	return pool, nil
}
