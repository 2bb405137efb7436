package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mufasadev/ramp-reconciler/internal/errors"
)

var cfg *Config
var once sync.Once

// Config is the configuration for the application
type Config struct {
	Server
	PostgreSQL
	Paystack
	Bitget
	Matching
	Notifier
	Log
}

// Server is the configuration for the server
type Server struct {
	Port            string `env:"PORT" envDefault:"8080"`
	ShutdownTimeout string `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns the address for the server
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", "0.0.0.0", s.Port)
}

func (s Server) GracePeriod() time.Duration {
	return durationOr(s.ShutdownTimeout, 10*time.Second)
}

// PostgreSQL is the configuration for the database
type PostgreSQL struct {
	Driver           string `env:"DB_DRIVER" envDefault:"postgres"`
	Host             string `env:"DB_HOST" envDefault:"localhost"`
	Port             string `env:"DB_PORT" envDefault:"5432"`
	Database         string `env:"DB_DATABASE" envDefault:"ramp_reconciler"`
	Username         string `env:"DB_USERNAME" envDefault:"ramp_reconciler"`
	Password         string `env:"DB_PASSWORD" envDefault:"ramp_reconciler"`
	SSLMode          string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConnAttempts  string `env:"DB_MAX_CONN_ATTEMPTS" envDefault:"5"`
	MaxConns         string `env:"DB_MAX_CONNS" envDefault:"10"`
	StatementTimeout string `env:"DB_STATEMENT_TIMEOUT" envDefault:"5s"`
}

// Attempts is the number of connect attempts before giving up.
func (c PostgreSQL) Attempts() int {
	n, err := strconv.Atoi(c.MaxConnAttempts)
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

func (c PostgreSQL) PoolSize() int32 {
	n, err := strconv.ParseInt(c.MaxConns, 10, 32)
	if err != nil || n <= 0 {
		return 10
	}
	return int32(n)
}

func (c PostgreSQL) QueryTimeout() time.Duration {
	return durationOr(c.StatementTimeout, 5*time.Second)
}

// DSN returns the DSN for the database
func (c PostgreSQL) DSN() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=%s",
		c.Driver,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// Paystack holds the payment provider webhook secret.
type Paystack struct {
	SecretKey string `env:"PAYSTACK_SECRET_KEY"`
}

// Bitget holds exchange credentials and client tuning.
type Bitget struct {
	APIKey         string `env:"BITGET_API_KEY"`
	SecretKey      string `env:"BITGET_SECRET_KEY"`
	Passphrase     string `env:"BITGET_PASSPHRASE"`
	BaseURL        string `env:"BITGET_BASE_URL" envDefault:"https://api.bitget.com"`
	Timeout        string `env:"BITGET_TIMEOUT" envDefault:"15s"`
	MaxConcurrency string `env:"BITGET_MAX_CONCURRENCY" envDefault:"8"`
}

func (b Bitget) RequestTimeout() time.Duration {
	return durationOr(b.Timeout, 15*time.Second)
}

func (b Bitget) Concurrency() int64 {
	n, err := strconv.ParseInt(b.MaxConcurrency, 10, 64)
	if err != nil || n <= 0 {
		return 8
	}
	return n
}

// Matching controls deposit confirmation.
type Matching struct {
	Tolerance       string `env:"MATCH_TOLERANCE" envDefault:"0.01"`
	DepositLookback string `env:"DEPOSIT_LOOKBACK" envDefault:"24h"`
}

func (m Matching) SizeTolerance() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(m.Tolerance))
	if err != nil || !d.IsPositive() {
		return decimal.RequireFromString("0.01")
	}
	return d
}

func (m Matching) Lookback() time.Duration {
	return durationOr(m.DepositLookback, 24*time.Hour)
}

// Notifier configures the notification adapters. Empty values disable an adapter.
type Notifier struct {
	KafkaBrokers      string `env:"KAFKA_BROKERS"`
	KafkaTopic        string `env:"KAFKA_TOPIC" envDefault:"transaction-status"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisAdminChannel string `env:"REDIS_ADMIN_CHANNEL" envDefault:"admin:transactions"`
	NatsURL           string `env:"NATS_URL"`
	NatsSubject       string `env:"NATS_SUBJECT" envDefault:"transactions.status"`
}

func (n Notifier) Brokers() []string {
	if strings.TrimSpace(n.KafkaBrokers) == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(n.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

// Validate reports missing secrets. A service without them cannot authenticate
// anything, so callers treat the error as fatal.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"PAYSTACK_SECRET_KEY", c.Paystack.SecretKey},
		{"BITGET_API_KEY", c.Bitget.APIKey},
		{"BITGET_SECRET_KEY", c.Bitget.SecretKey},
		{"BITGET_PASSPHRASE", c.Bitget.Passphrase},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return errors.NewConfigurationError("missing " + strings.Join(missing, ", "))
	}

	// size matching is strict less-than, so zero would never confirm anything
	tolerance, err := decimal.NewFromString(strings.TrimSpace(c.Matching.Tolerance))
	if err != nil {
		return errors.NewConfigurationError("MATCH_TOLERANCE is not a decimal")
	}
	if !tolerance.IsPositive() {
		return errors.NewConfigurationError("MATCH_TOLERANCE must be greater than zero")
	}

	return nil
}

// Load loads the configuration from environment variables. A .env file in the working
// directory is read first; variables already set in the environment win.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = load()
	})

	return cfg
}

func load() *Config {
	c := &Config{}
	cfgType := reflect.TypeOf(*c)
	cfgValue := reflect.ValueOf(c).Elem()

	for i := 0; i < cfgType.NumField(); i++ {
		field := cfgType.Field(i)
		fieldValue := cfgValue.Field(i)
		for j := 0; j < field.Type.NumField(); j++ {
			subField := field.Type.Field(j)
			envVar := subField.Tag.Get("env")
			envDefault := subField.Tag.Get("envDefault")
			value := getEnv(envVar, envDefault)

			fieldValue.Field(j).SetString(value)
		}
	}

	return c
}

// getEnv retrieves the value of the environment variable named by the key or returns the defaultValue if not set
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
	}
	return value
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
