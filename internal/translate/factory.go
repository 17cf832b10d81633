package translate

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tarjama/internal/config"
)

const defaultTimeout = 60 * time.Second

// New creates the Translator selected by cfg.Engine, instrumented with
// Prometheus metrics.
func New(cfg config.TranslateConfig, logger *logrus.Logger) (Translator, error) {
	if logger == nil {
		logger = logrus.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger.WithFields(logrus.Fields{
		"engine":  cfg.Engine,
		"url":     cfg.URL,
		"model":   cfg.Model,
		"timeout": timeout.String(),
	}).Info("Creating translator instance")

	var t Translator
	switch cfg.Engine {
	case config.EngineHuggingFace:
		t = NewHuggingFaceClient(cfg.URL, cfg.Model, cfg.Token, timeout, logger)
	case config.EngineLibreTranslate:
		t = NewLibreTranslateClient(cfg.URL, cfg.Source, cfg.Target, timeout, logger)
	default:
		logger.WithField("engine", cfg.Engine).Error("Unknown translation engine")
		return nil, fmt.Errorf("unknown translation engine: %s", cfg.Engine)
	}

	return Instrument(cfg.Engine, t), nil
}
