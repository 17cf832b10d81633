// Package app wires configuration, storage and the external adapters into a
// ready PracticeService. It is shared by the server and the batch tools.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"tarjama/internal/api"
	"tarjama/internal/config"
	"tarjama/internal/database"
	"tarjama/internal/feedback"
	"tarjama/internal/service"
	"tarjama/internal/speech"
	"tarjama/internal/store"
	"tarjama/internal/tokenize"
	"tarjama/internal/translate"
)

// NewLogger builds the process logger: RFC 3339 text output by default, JSON
// when format is "json". An unknown level falls back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	DB         *sql.DB
	Store      *store.PostgresStore
	Translator translate.Translator
	Speech     *speech.Synthesizer
	Service    *service.PracticeService
}

// New connects to the database, applies migrations and constructs every
// adapter once. Feedback and speech are only built when configured.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	a := &App{Config: cfg, Logger: logger, DB: db, Store: store.NewPostgresStore(db)}

	if err := database.MigrateUp(ctx, db, logger); err != nil {
		a.Close()
		return nil, err
	}

	splitter, err := tokenize.New()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Translator, err = translate.New(cfg.Translate, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := service.Deps{
		Store:      a.Store,
		Splitter:   splitter,
		Translator: a.Translator,
		Logger:     logger,
	}

	if cfg.Feedback.Enabled() {
		advisor, err := feedback.New(cfg.Feedback, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Advisor = advisor
		logger.WithField("model", cfg.Feedback.Model).Info("AI feedback enabled")
	}

	if cfg.Speech.Enabled {
		a.Speech, err = speech.New(ctx, cfg.Speech, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Speech = a.Speech
		logger.WithField("voice", cfg.Speech.Voice).Info("Speech synthesis enabled")
	}

	a.Service = service.NewPracticeService(deps, service.Config{
		FeedbackThreshold: cfg.Feedback.Threshold,
		MediaDir:          cfg.MediaDir,
	})

	logger.WithFields(logrus.Fields{
		"engine": cfg.Translate.Engine,
		"model":  cfg.Translate.Model,
	}).Info("Translation model ready")

	return a, nil
}

// Checkers are the readiness probes for the running service.
func (a *App) Checkers() []api.Checker {
	return []api.Checker{
		{Name: "database", Check: a.Store.Ping},
		{Name: "translator", Check: func(ctx context.Context) error {
			if hc, ok := a.Translator.(translate.HealthChecker); ok {
				return hc.CheckHealth(ctx)
			}
			return nil
		}},
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Speech != nil {
		if err := a.Speech.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close speech client: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
