package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tarjama/internal/models"
)

type Progress struct {
	TotalScripts          int64
	TotalSentences        int64
	TotalPracticeSessions int64
	AvgTranslationScore   float64
	AvgPronunciationScore float64
	RecentSessions        []models.RecentSession
}

// Progress summarizes all practice so far. Averages are rounded to two
// decimals and the recent session texts are shortened for display.
func (s *PracticeService) Progress(ctx context.Context) (Progress, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress stats: %w", err)
	}

	recent, err := s.store.RecentSessions(ctx, recentSessionsLimit)
	if err != nil {
		return Progress{}, fmt.Errorf("progress sessions: %w", err)
	}
	for i := range recent {
		recent[i].SentenceText = preview(recent[i].SentenceText)
		recent[i].UserTranslation = preview(recent[i].UserTranslation)
	}

	return Progress{
		TotalScripts:          st.TotalScripts,
		TotalSentences:        st.TotalSentences,
		TotalPracticeSessions: st.TotalPracticeSessions,
		AvgTranslationScore:   round2(st.AvgTranslationScore),
		AvgPronunciationScore: round2(st.AvgPronunciationScore),
		RecentSessions:        recent,
	}, nil
}

// Search finds sentences containing q, case-sensitively. An empty query
// matches nothing.
func (s *PracticeService) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return []models.SearchResult{}, nil
	}

	results, err := s.store.SearchSentences(ctx, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search sentences: %w", err)
	}
	return results, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// preview cuts text to previewLength code points and marks the cut.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
