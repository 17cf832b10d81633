// Package service orchestrates tokenization, machine translation, scoring and
// feedback on top of the store.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"tarjama/internal/feedback"
	"tarjama/internal/store"
	"tarjama/internal/translate"
)

const (
	defaultFeedbackThreshold = 0.8
	recentSessionsLimit      = 10
	searchLimit              = 20
	previewLength            = 50
)

// Splitter breaks a script into sentences.
type Splitter interface {
	Split(text string) []string
}

// Advisor produces feedback on a translation attempt. It never fails.
type Advisor interface {
	Feedback(ctx context.Context, reference, candidate string) feedback.Result
}

// Synthesizer renders English text to MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Deps are the collaborators of PracticeService. Advisor and Speech are
// optional; leave them nil to disable feedback or audio synthesis.
type Deps struct {
	Store      store.DataStore
	Splitter   Splitter
	Translator translate.Translator
	Advisor    Advisor
	Speech     Synthesizer
	Logger     *logrus.Logger
}

type Config struct {
	// FeedbackThreshold is the similarity below which feedback is requested.
	FeedbackThreshold float64
	// MediaDir holds pre-rendered sentence audio named {id}.mp3.
	MediaDir string
}

type PracticeService struct {
	store      store.DataStore
	splitter   Splitter
	translator translate.Translator
	advisor    Advisor
	speech     Synthesizer
	logger     *logrus.Logger
	cfg        Config
}

func NewPracticeService(d Deps, cfg Config) *PracticeService {
	if cfg.FeedbackThreshold <= 0 {
		cfg.FeedbackThreshold = defaultFeedbackThreshold
	}
	logger := d.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &PracticeService{
		store:      d.Store,
		splitter:   d.Splitter,
		translator: d.Translator,
		advisor:    d.Advisor,
		speech:     d.Speech,
		logger:     logger,
		cfg:        cfg,
	}
}

