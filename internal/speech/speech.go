// Package speech renders English reference translations to MP3 audio with
// Google Cloud Text-to-Speech. Credentials are resolved by the client
// library (GOOGLE_APPLICATION_CREDENTIALS).
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"tarjama/internal/config"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("speech: empty text")

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

type Synthesizer struct {
	synthesize synthesizeFunc
	close      func() error
	voice      string
	language   string
	timeout    time.Duration
	logger     *logrus.Logger
}

func New(ctx context.Context, cfg config.SpeechConfig, logger *logrus.Logger) (*Synthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech: create client: %w", err)
	}

	s := newSynthesizer(func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return client.SynthesizeSpeech(ctx, req)
	}, cfg, logger)
	s.close = client.Close
	return s, nil
}

func newSynthesizer(fn synthesizeFunc, cfg config.SpeechConfig, logger *logrus.Logger) *Synthesizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Synthesizer{
		synthesize: fn,
		close:      func() error { return nil },
		voice:      cfg.Voice,
		language:   cfg.Language,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Synthesize returns MP3 audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	start := time.Now()
	resp, err := s.synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"voice":       s.voice,
		"text_length": len(text),
		"audio_bytes": len(resp.AudioContent),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Speech synthesized")

	return resp.AudioContent, nil
}

func (s *Synthesizer) Close() error {
	return s.close()
}

// AudioPath is where pre-rendered audio for a sentence is stored.
func AudioPath(mediaDir string, sentenceID int64) string {
	return filepath.Join(mediaDir, strconv.FormatInt(sentenceID, 10)+".mp3")
}

// SaveAudio synthesizes text and writes it to AudioPath.
func (s *Synthesizer) SaveAudio(ctx context.Context, mediaDir string, sentenceID int64, text string) (string, error) {
	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	path := AudioPath(mediaDir, sentenceID)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("speech: write %s: %w", path, err)
	}
	return path, nil
}
