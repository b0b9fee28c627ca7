package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/config"
	"github.com/xelth-com/xrfdesk/internal/database"
	"github.com/xelth-com/xrfdesk/internal/logging"
	"github.com/xelth-com/xrfdesk/internal/repository"
	"github.com/xelth-com/xrfdesk/internal/services/assay"
	"github.com/xelth-com/xrfdesk/internal/services/printer"
	"github.com/xelth-com/xrfdesk/internal/services/share"
)

// app is everything a command needs, built from configuration
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *database.DB
	svc *assay.Service
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadFrom(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	letterhead, err := config.LoadLetterhead(cfg.LetterheadPath)
	if err != nil {
		return nil, err
	}
	logo, err := config.LoadLogo(cfg.Print.LogoPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	var sink share.Sink = share.Unsupported{}
	if cfg.Export.Dir != "" {
		sink = share.NewFileSink(cfg.Export.Dir)
	}

	svc := assay.NewService(
		repository.NewGormStore(db.DB, cfg.Store.MaxImageBytes),
		printer.NewRenderer(),
		printer.NewMeasurer(),
		sink,
		log,
		assay.Config{
			Letterhead:   letterhead,
			Logo:         logo,
			Verification: cfg.Print.Verification,
			Tags:         printer.DefaultTagConfig,
		},
	)
	return &app{cfg: cfg, log: log, db: db, svc: svc}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("Closing store", zap.Error(err))
	}
	_ = a.log.Sync()
}
