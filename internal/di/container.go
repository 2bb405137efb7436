package di

import (
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mufasadev/ramp-reconciler/internal/config"
	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/api/handlers"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/database/repositories"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/exchange/bitget"
	notifiers "github.com/mufasadev/ramp-reconciler/internal/infrastructure/notifier"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/interactor"
	"github.com/mufasadev/ramp-reconciler/internal/usecases/matcher"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

type Container struct {
	WebhookHandler *handlers.WebhookHandler
	DepositHandler *handlers.DepositHandler
	HealthHandler  *handlers.HealthHandler

	closers []io.Closer
}

// NewContainer creates a new Container instance.
func NewContainer(cfg *config.Config, db *pgxpool.Pool) (*Container, error) {
	c := &Container{}

	transactionRepository := repositories.NewTransactionRepositoryImpl(db)
	ledgerInteractor := interactor.NewLedgerInteractor(transactionRepository)

	n, err := c.notifier(cfg.Notifier)
	if err != nil {
		c.Close()
		return nil, err
	}
	webhookInteractor := interactor.NewWebhookInteractor(cfg.Paystack.SecretKey, ledgerInteractor, n)

	exchangeClient := bitget.NewClient(bitget.Config{
		APIKey:         cfg.Bitget.APIKey,
		SecretKey:      cfg.Bitget.SecretKey,
		Passphrase:     cfg.Bitget.Passphrase,
		BaseURL:        cfg.Bitget.BaseURL,
		Timeout:        cfg.Bitget.RequestTimeout(),
		MaxConcurrency: cfg.Bitget.Concurrency(),
	})
	depositInteractor := interactor.NewDepositInteractor(
		exchangeClient,
		matcher.New(cfg.Matching.SizeTolerance()),
		dtos.NewValidator(),
		cfg.Matching.Lookback(),
	)

	c.WebhookHandler = handlers.NewWebhookHandler(webhookInteractor)
	c.DepositHandler = handlers.NewDepositHandler(depositInteractor)
	c.HealthHandler = handlers.NewHealthHandler(db)

	return c, nil
}

// notifier builds the fan-out over every configured adapter. The log adapter is always present.
func (c *Container) notifier(cfg config.Notifier) (notifier.Notifier, error) {
	logger := log.GetLogger()
	adapters := []notifier.Notifier{notifiers.NewLogNotifier()}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kn := notifiers.NewKafkaNotifier(notifiers.NewKafkaWriter(brokers, cfg.KafkaTopic))
		c.closers = append(c.closers, kn)
		adapters = append(adapters, kn)
		logger.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaTopic).Msg("kafka notifications enabled")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		c.closers = append(c.closers, client)
		adapters = append(adapters, notifiers.NewRedisNotifier(client, cfg.RedisAdminChannel))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis notifications enabled")
	}

	if cfg.NatsURL != "" {
		conn, err := notifiers.NewNatsConn(cfg.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("nats connect: %w", err)
		}
		c.closers = append(c.closers, closerFunc(func() error {
			return conn.Drain()
		}))
		adapters = append(adapters, notifiers.NewNatsNotifier(conn, cfg.NatsSubject))
		logger.Info().Str("subject", cfg.NatsSubject).Msg("nats notifications enabled")
	}

	return notifiers.NewFanout(adapters...), nil
}

// Close releases broker connections in reverse order of creation.
func (c *Container) Close() {
	logger := log.GetLogger()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close notifier")
		}
	}
	c.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
