package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"tarjama/internal/speech"
)

// SentenceAudio returns MP3 audio of the sentence's reference translation.
// A pre-rendered file in the media directory wins over live synthesis.
func (s *PracticeService) SentenceAudio(ctx context.Context, sentenceID int64) ([]byte, error) {
	sentence, err := s.store.GetSentence(ctx, sentenceID)
	if err != nil {
		return nil, sentenceErr(err, sentenceID)
	}
	if !sentence.HasModelTranslation() {
		se := NewServiceError(nil, http.StatusNotFound, "Sentence has no reference translation")
		se.Env["sentence_id"] = strconv.FormatInt(sentenceID, 10)
		return nil, se
	}

	if s.cfg.MediaDir != "" {
		audio, err := os.ReadFile(speech.AudioPath(s.cfg.MediaDir, sentenceID))
		if err == nil {
			return audio, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WithError(err).WithField("sentence_id", sentenceID).Warn("Failed to read pre-rendered audio")
		}
	}

	if s.speech == nil {
		return nil, NewServiceError(nil, http.StatusServiceUnavailable, "Speech synthesis is disabled")
	}

	audio, err := s.speech.Synthesize(ctx, *sentence.ModelTranslation)
	if err != nil {
		return nil, fmt.Errorf("synthesize sentence %d: %w", sentenceID, err)
	}
	return audio, nil
}

func (s *PracticeService) discardAudio(sentenceID int64) {
	if s.cfg.MediaDir == "" {
		return
	}
	err := os.Remove(speech.AudioPath(s.cfg.MediaDir, sentenceID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.WithError(err).WithField("sentence_id", sentenceID).Warn("Failed to remove stale audio")
	}
}
