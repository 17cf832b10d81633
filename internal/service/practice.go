package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"tarjama/internal/scoring"
	"tarjama/internal/store"
)

type TranslationAttempt struct {
	SentenceID      int64
	UserTranslation string
}

type TranslationResult struct {
	OriginalText     string
	ModelTranslation *string
	UserTranslation  string
	SimilarityScore  float64
	// AIFeedback is nil when feedback was not requested.
	AIFeedback *string
	PracticeID int64
}

// SubmitTranslation scores an attempt against the sentence's reference
// translation (or the original text when there is none), asks for feedback
// on poor attempts and records a practice session.
func (s *PracticeService) SubmitTranslation(ctx context.Context, r TranslationAttempt) (TranslationResult, error) {
	if r.SentenceID <= 0 {
		return TranslationResult{}, NewServiceError(nil, http.StatusBadRequest, "sentence_id is required")
	}

	sentence, err := s.store.GetSentence(ctx, r.SentenceID)
	if err != nil {
		return TranslationResult{}, sentenceErr(err, r.SentenceID)
	}

	score := scoring.Similarity(sentence.Reference(), r.UserTranslation)

	var aiFeedback *string
	if s.advisor != nil && sentence.HasModelTranslation() && score < s.cfg.FeedbackThreshold {
		res := s.advisor.Feedback(ctx, *sentence.ModelTranslation, r.UserTranslation)
		aiFeedback = &res.Text
	}

	session, err := s.store.CreateSession(ctx, store.CreateSessionRequest{
		SentenceID:       sentence.ID,
		UserTranslation:  r.UserTranslation,
		TranslationScore: score,
	})
	if err != nil {
		return TranslationResult{}, fmt.Errorf("record practice session: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"sentence_id": sentence.ID,
		"practice_id": session.ID,
		"score":       score,
		"feedback":    aiFeedback != nil,
	}).Debug("Translation attempt scored")

	return TranslationResult{
		OriginalText:     sentence.OriginalText,
		ModelTranslation: sentence.ModelTranslation,
		UserTranslation:  r.UserTranslation,
		SimilarityScore:  score,
		AIFeedback:       aiFeedback,
		PracticeID:       session.ID,
	}, nil
}

type PronunciationAttempt struct {
	PracticeID        int64
	PronunciationText string
}

type PronunciationResult struct {
	Overlap           scoring.Overlap
	NearMisses        []scoring.NearMiss
	UserTranslation   string
	PronunciationText string
}

// SubmitPronunciation compares recognized speech with the translation the
// user typed in the same practice session and stores the result.
func (s *PracticeService) SubmitPronunciation(ctx context.Context, r PronunciationAttempt) (PronunciationResult, error) {
	actual := strings.TrimSpace(r.PronunciationText)
	if r.PracticeID <= 0 || actual == "" {
		return PronunciationResult{}, NewServiceError(nil, http.StatusBadRequest, "practice_id and pronunciation_text are required")
	}

	session, err := s.store.GetSession(ctx, r.PracticeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := NewServiceError(err, http.StatusNotFound, "Practice session not found")
			se.Env["practice_id"] = strconv.FormatInt(r.PracticeID, 10)
			return PronunciationResult{}, se
		}
		return PronunciationResult{}, fmt.Errorf("get practice session: %w", err)
	}

	expected := strings.TrimSpace(session.UserTranslation)
	overlap := scoring.WordOverlap(expected, actual)

	err = s.store.UpdatePronunciation(ctx, store.UpdatePronunciationRequest{
		SessionID:          session.ID,
		PronunciationText:  actual,
		PronunciationScore: overlap.Score,
	})
	if err != nil {
		return PronunciationResult{}, fmt.Errorf("record pronunciation: %w", err)
	}

	return PronunciationResult{
		Overlap:           overlap,
		NearMisses:        scoring.NearMisses(overlap),
		UserTranslation:   expected,
		PronunciationText: actual,
	}, nil
}
