package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/config"
	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

type Service struct {
	config *config.Config
	logger *zerolog.Logger
}

// NewService creates a new instance of the service
func NewService(cfg *config.Config) *Service {
	l := log.GetLogger()
	return &Service{config: cfg, logger: &l}
}

// Run starts the server and blocks until ctx is cancelled or a termination signal
// arrives, then drains in-flight requests.
func (s *Service) Run(ctx context.Context, handler http.Handler) error {
	server := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	s.logger.Info().Str("addr", s.config.Server.Addr()).Msg("Server is listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			s.logger.Error().Err(err).Msg(errors.ErrorFailedToRunTheServer)
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info().Msg("Server is shutting down due to context cancellation...")
	case <-quit:
		s.logger.Info().Msg("Server is shutting down...")
	}

	return s.shutdown(server)
}

// shutdown gracefully shuts down the server without interrupting any active connections.
func (s *Service) shutdown(server *http.Server) error {
	ctxShutdown, cancel := context.WithTimeout(context.Background(), s.config.Server.GracePeriod())
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		s.logger.Error().Err(err).Msg(errors.ErrorFailedToShutdownTheServer)
		return err
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}
