package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"tarjama/internal/models"
	"tarjama/internal/store"
	"tarjama/internal/translate"
)

type CreateScriptRequest struct {
	Title   string
	Content string
}

type CreateScriptResult struct {
	ScriptID       int64
	SentencesCount int
}

// CreateScript splits content into sentences, translates them in one batch
// and stores the script with its sentences in a single transaction. Nothing
// is written when translation fails.
func (s *PracticeService) CreateScript(ctx context.Context, r CreateScriptRequest) (CreateScriptResult, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" || strings.TrimSpace(r.Content) == "" {
		return CreateScriptResult{}, NewServiceError(nil, http.StatusBadRequest, "Title and content are required")
	}

	batch, err := s.prepareSentences(ctx, r.Content)
	if err != nil {
		return CreateScriptResult{}, err
	}

	var scriptID int64
	err = s.store.WithinTx(ctx, func(tx store.DataStore) error {
		sc, err := tx.CreateScript(ctx, title)
		if err != nil {
			return err
		}
		scriptID = sc.ID

		return tx.InsertSentences(ctx, sc.ID, batch)
	})
	if err != nil {
		return CreateScriptResult{}, fmt.Errorf("create script: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"script_id": scriptID,
		"sentences": len(batch),
	}).Info("Script created")

	return CreateScriptResult{ScriptID: scriptID, SentencesCount: len(batch)}, nil
}

func (s *PracticeService) ListScripts(ctx context.Context) ([]models.ScriptSummary, error) {
	scripts, err := s.store.ListScripts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return scripts, nil
}

// GetScript returns the script with its sentence texts joined by newlines in
// order_index order.
func (s *PracticeService) GetScript(ctx context.Context, id int64) (models.ScriptDetail, error) {
	sc, err := s.store.GetScript(ctx, id)
	if err != nil {
		return models.ScriptDetail{}, scriptErr(err, id)
	}

	sentences, err := s.store.ListSentences(ctx, store.ListSentencesRequest{ScriptID: id})
	if err != nil {
		return models.ScriptDetail{}, fmt.Errorf("list sentences: %w", err)
	}

	texts := make([]string, len(sentences))
	for i, se := range sentences {
		texts[i] = se.OriginalText
	}

	return models.ScriptDetail{
		ID:      sc.ID,
		Title:   sc.Title,
		Content: strings.Join(texts, "\n"),
	}, nil
}

// UpdateScriptRequest leaves a field untouched when it is nil.
type UpdateScriptRequest struct {
	Title   *string
	Content *string
}

// UpdateScript renames the script and, when content is given, replaces every
// sentence with the newly tokenized and translated ones. Practice sessions of
// the old sentences are removed with them.
func (s *PracticeService) UpdateScript(ctx context.Context, id int64, r UpdateScriptRequest) error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return NewServiceError(nil, http.StatusBadRequest, "Title must not be empty")
	}

	var batch []models.NewSentence
	if r.Content != nil {
		if _, err := s.store.GetScript(ctx, id); err != nil {
			return scriptErr(err, id)
		}

		var err error
		if batch, err = s.prepareSentences(ctx, *r.Content); err != nil {
			return err
		}
	}

	var removed int64
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		if _, err := tx.GetScript(ctx, id); err != nil {
			return err
		}

		if r.Title != nil {
			if err := tx.UpdateScriptTitle(ctx, id, strings.TrimSpace(*r.Title)); err != nil {
				return err
			}
		}

		if r.Content == nil {
			return nil
		}

		var err error
		if removed, err = tx.DeleteSentences(ctx, id); err != nil {
			return err
		}
		return tx.InsertSentences(ctx, id, batch)
	})
	if err != nil {
		return scriptErr(err, id)
	}

	if r.Content != nil {
		s.logger.WithFields(logrus.Fields{
			"script_id": id,
			"removed":   removed,
			"added":     len(batch),
		}).Info("Script content replaced")
	}
	return nil
}

// DeleteScript removes the script together with its sentences and their
// practice sessions.
func (s *PracticeService) DeleteScript(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		return tx.DeleteScript(ctx, id)
	})
	if err != nil {
		return scriptErr(err, id)
	}

	s.logger.WithField("script_id", id).Info("Script deleted")
	return nil
}

const (
	ModeSequential = "sequential"
	ModeRandom     = "random"
)

// ListSentences returns the script's sentences in order_index order, or
// shuffled when mode is random. Any other mode is treated as sequential.
func (s *PracticeService) ListSentences(ctx context.Context, scriptID int64, mode string) ([]models.Sentence, error) {
	if _, err := s.store.GetScript(ctx, scriptID); err != nil {
		return nil, scriptErr(err, scriptID)
	}

	sentences, err := s.store.ListSentences(ctx, store.ListSentencesRequest{
		ScriptID: scriptID,
		Random:   mode == ModeRandom,
	})
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	return sentences, nil
}

// SetModelTranslation overrides a sentence's reference translation. Any
// pre-rendered audio for the old reference is discarded.
func (s *PracticeService) SetModelTranslation(ctx context.Context, sentenceID int64, text string) (string, error) {
	if err := s.store.SetModelTranslation(ctx, sentenceID, text); err != nil {
		return "", sentenceErr(err, sentenceID)
	}

	s.discardAudio(sentenceID)
	return text, nil
}

func (s *PracticeService) prepareSentences(ctx context.Context, content string) ([]models.NewSentence, error) {
	texts := s.splitter.Split(content)

	translations, err := s.translator.TranslateBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("translate sentences: %w", err)
	}
	if len(translations) != len(texts) {
		return nil, fmt.Errorf("translate sentences: %w: sent %d, got %d", translate.ErrLengthMismatch, len(texts), len(translations))
	}

	batch := make([]models.NewSentence, len(texts))
	for i, text := range texts {
		mt := translations[i]
		batch[i] = models.NewSentence{
			OriginalText:     text,
			OrderIndex:       i,
			Difficulty:       models.DefaultDifficulty,
			ModelTranslation: &mt,
		}
	}
	return batch, nil
}

func scriptErr(err error, id int64) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, store.ErrNotFound) {
		se := NewServiceError(err, http.StatusNotFound, "Script not found")
		se.Env["script_id"] = strconv.FormatInt(id, 10)
		return se
	}
	return fmt.Errorf("script %d: %w", id, err)
}

func sentenceErr(err error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		se := NewServiceError(err, http.StatusNotFound, "Sentence not found")
		se.Env["sentence_id"] = strconv.FormatInt(id, 10)
		return se
	}
	return fmt.Errorf("sentence %d: %w", id, err)
}
