package main

import (
	"context"

	"github.com/mufasadev/ramp-reconciler/internal/app"
	"github.com/mufasadev/ramp-reconciler/internal/config"
	"github.com/mufasadev/ramp-reconciler/internal/di"
	"github.com/mufasadev/ramp-reconciler/internal/errors"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/api/routers"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/database/db_client"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

const (
	appName = "ramp-reconciler"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	opts := []log.LoggerOption{log.WithFormat(cfg.Log.Format), log.WithLevel(cfg.Log.Level)}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFileLogger(cfg.Log.File))
	}
	log.Init(appName, opts...)
	logger := log.GetLogger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorInvalidConfiguration)
	}

	pgClient := db_client.NewPGClient(cfg.PostgreSQL)
	db, err := pgClient.Connect(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorFailedToConnectToTheDatabase)
	}
	defer db.Close()

	container, err := di.NewContainer(cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg(errors.ErrorInvalidConfiguration)
	}
	defer container.Close()

	router := routers.NewRouter(container)
	service := app.NewService(cfg)
	if err := service.Run(ctx, router); err != nil {
		logger.Error().Err(err).Msg(errors.ErrorFailedToRunTheServer)
	}
}
