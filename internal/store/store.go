package store

import (
	"context"
	"errors"

	"tarjama/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
)

// DataStore is the persistence boundary for scripts, sentences and
// practice sessions.
type DataStore interface {
	CreateScript(ctx context.Context, title string) (models.Script, error)
	GetScript(ctx context.Context, id int64) (models.Script, error)
	ListScripts(ctx context.Context) ([]models.ScriptSummary, error)
	UpdateScriptTitle(ctx context.Context, id int64, title string) error
	DeleteScript(ctx context.Context, id int64) error

	InsertSentences(ctx context.Context, scriptID int64, sentences []models.NewSentence) error
	DeleteSentences(ctx context.Context, scriptID int64) (int64, error)
	ListSentences(ctx context.Context, r ListSentencesRequest) ([]models.Sentence, error)
	GetSentence(ctx context.Context, id int64) (models.Sentence, error)
	SetModelTranslation(ctx context.Context, id int64, text string) error
	SearchSentences(ctx context.Context, query string, limit int) ([]models.SearchResult, error)

	CreateSession(ctx context.Context, r CreateSessionRequest) (models.PracticeSession, error)
	GetSession(ctx context.Context, id int64) (models.PracticeSession, error)
	UpdatePronunciation(ctx context.Context, r UpdatePronunciationRequest) error
	Stats(ctx context.Context) (models.Stats, error)
	RecentSessions(ctx context.Context, limit int) ([]models.RecentSession, error)

	Ping(ctx context.Context) error
	WithinTx(ctx context.Context, fn func(tx DataStore) error) error
}

type ListSentencesRequest struct {
	ScriptID int64
	Random   bool
}

type CreateSessionRequest struct {
	SentenceID       int64
	UserTranslation  string
	TranslationScore float64
}

type UpdatePronunciationRequest struct {
	SessionID          int64
	PronunciationText  string
	PronunciationScore float64
}
