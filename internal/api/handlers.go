package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"tarjama/internal/models"
	"tarjama/internal/scoring"
	"tarjama/internal/service"
)

// PracticeService is the application surface the handlers drive.
type PracticeService interface {
	CreateScript(ctx context.Context, r service.CreateScriptRequest) (service.CreateScriptResult, error)
	ListScripts(ctx context.Context) ([]models.ScriptSummary, error)
	GetScript(ctx context.Context, id int64) (models.ScriptDetail, error)
	UpdateScript(ctx context.Context, id int64, r service.UpdateScriptRequest) error
	DeleteScript(ctx context.Context, id int64) error
	ListSentences(ctx context.Context, scriptID int64, mode string) ([]models.Sentence, error)
	SetModelTranslation(ctx context.Context, sentenceID int64, text string) (string, error)
	SentenceAudio(ctx context.Context, sentenceID int64) ([]byte, error)
	SubmitTranslation(ctx context.Context, r service.TranslationAttempt) (service.TranslationResult, error)
	SubmitPronunciation(ctx context.Context, r service.PronunciationAttempt) (service.PronunciationResult, error)
	Progress(ctx context.Context) (service.Progress, error)
	Search(ctx context.Context, q string) ([]models.SearchResult, error)
}

type ApiHandler struct {
	Svc    PracticeService
	Logger *logrus.Logger
}

func NewApiHandler(svc PracticeService, logger *logrus.Logger) *ApiHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ApiHandler{Svc: svc, Logger: logger}
}

type createScriptResponse struct {
	Message                string `json:"message"`
	ScriptID               int64  `json:"script_id"`
	SentencesCount         int    `json:"sentences_count"`
	AutoTranslation        bool   `json:"auto_translation"`
	AutoTranslationMessage string `json:"auto_translation_message"`
}

func (h *ApiHandler) CreateScript(w http.ResponseWriter, r *http.Request) {
	var req createScriptRequest
	if !bind(w, r, &req, "Title and content are required") {
		return
	}

	res, err := h.Svc.CreateScript(r.Context(), service.CreateScriptRequest{Title: req.Title, Content: req.Content})
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, createScriptResponse{
		Message:                "Script created successfully",
		ScriptID:               res.ScriptID,
		SentencesCount:         res.SentencesCount,
		AutoTranslation:        true,
		AutoTranslationMessage: "All sentences were automatically translated.",
	})
}

func (h *ApiHandler) ListScripts(w http.ResponseWriter, r *http.Request) {
	scripts, err := h.Svc.ListScripts(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, scripts)
}

func (h *ApiHandler) GetScript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "script_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid script ID")
		return
	}

	script, err := h.Svc.GetScript(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, script)
}

func (h *ApiHandler) UpdateScript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "script_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid script ID")
		return
	}

	var req updateScriptRequest
	if !bind(w, r, &req, invalidPayload) {
		return
	}

	err = h.Svc.UpdateScript(r.Context(), id, service.UpdateScriptRequest{Title: req.Title, Content: req.Content})
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteScript reports every failure as {success:false, error}.
func (h *ApiHandler) DeleteScript(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "script_id")
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid script ID"})
		return
	}

	if err := h.Svc.DeleteScript(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if se, ok := asServiceError(err); ok {
			status = se.StatusCode
		} else {
			h.Logger.WithError(err).WithField("script_id", id).Error("Failed to delete script")
		}
		respondWithJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ApiHandler) ListSentences(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "script_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid script ID")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = service.ModeSequential
	}

	sentences, err := h.Svc.ListSentences(r.Context(), id, mode)
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sentences)
}

func (h *ApiHandler) SetModelTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sentence_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sentence ID")
		return
	}

	var req modelTranslationRequest
	if !bind(w, r, &req, "model_translation is required") {
		return
	}

	text, err := h.Svc.SetModelTranslation(r.Context(), id, *req.ModelTranslation)
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "model_translation": text})
}

func (h *ApiHandler) SentenceAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sentence_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sentence ID")
		return
	}

	audio, err := h.Svc.SentenceAudio(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

type translateResponse struct {
	OriginalText     string  `json:"original_text"`
	ModelTranslation *string `json:"model_translation"`
	UserTranslation  string  `json:"user_translation"`
	SimilarityScore  float64 `json:"similarity_score"`
	AIFeedback       *string `json:"ai_feedback"`
	PracticeID       int64   `json:"practice_id"`
}

func (h *ApiHandler) PracticeTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !bind(w, r, &req, "sentence_id and user_translation are required") {
		return
	}

	res, err := h.Svc.SubmitTranslation(r.Context(), service.TranslationAttempt{
		SentenceID:      req.SentenceID,
		UserTranslation: *req.UserTranslation,
	})
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, translateResponse{
		OriginalText:     res.OriginalText,
		ModelTranslation: res.ModelTranslation,
		UserTranslation:  res.UserTranslation,
		SimilarityScore:  res.SimilarityScore,
		AIFeedback:       res.AIFeedback,
		PracticeID:       res.PracticeID,
	})
}

type pronunciationResponse struct {
	ExpectedWords      []string           `json:"expected_words"`
	ActualWords        []string           `json:"actual_words"`
	Matched            []string           `json:"matched"`
	Missed             []string           `json:"missed"`
	Extra              []string           `json:"extra"`
	NearMisses         []scoring.NearMiss `json:"near_misses"`
	PronunciationScore float64            `json:"pronunciation_score"`
	UserTranslation    string             `json:"user_translation"`
	PronunciationText  string             `json:"pronunciation_text"`
}

func (h *ApiHandler) PracticePronunciation(w http.ResponseWriter, r *http.Request) {
	var req pronunciationRequest
	if !bind(w, r, &req, "practice_id and pronunciation_text are required") {
		return
	}

	res, err := h.Svc.SubmitPronunciation(r.Context(), service.PronunciationAttempt{
		PracticeID:        req.PracticeID,
		PronunciationText: req.PronunciationText,
	})
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pronunciationResponse{
		ExpectedWords:      res.Overlap.Expected,
		ActualWords:        res.Overlap.Actual,
		Matched:            res.Overlap.Matched,
		Missed:             res.Overlap.Missed,
		Extra:              res.Overlap.Extra,
		NearMisses:         res.NearMisses,
		PronunciationScore: res.Overlap.Score,
		UserTranslation:    res.UserTranslation,
		PronunciationText:  res.PronunciationText,
	})
}

type recentSessionResponse struct {
	ID                 int64    `json:"id"`
	SentenceText       string   `json:"sentence_text"`
	UserTranslation    string   `json:"user_translation"`
	TranslationScore   float64  `json:"translation_score"`
	PronunciationScore *float64 `json:"pronunciation_score"`
	PracticeDate       string   `json:"practice_date"`
}

type progressResponse struct {
	TotalScripts          int64                   `json:"total_scripts"`
	TotalSentences        int64                   `json:"total_sentences"`
	TotalPracticeSessions int64                   `json:"total_practice_sessions"`
	AvgTranslationScore   float64                 `json:"avg_translation_score"`
	AvgPronunciationScore float64                 `json:"avg_pronunciation_score"`
	RecentSessions        []recentSessionResponse `json:"recent_sessions"`
}

func (h *ApiHandler) Progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Progress(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	recent := make([]recentSessionResponse, len(p.RecentSessions))
	for i, s := range p.RecentSessions {
		recent[i] = recentSessionResponse{
			ID:                 s.ID,
			SentenceText:       s.SentenceText,
			UserTranslation:    s.UserTranslation,
			TranslationScore:   s.TranslationScore,
			PronunciationScore: s.PronunciationScore,
			PracticeDate:       s.PracticeDate.Format(time.RFC3339),
		}
	}

	respondWithJSON(w, http.StatusOK, progressResponse{
		TotalScripts:          p.TotalScripts,
		TotalSentences:        p.TotalSentences,
		TotalPracticeSessions: p.TotalPracticeSessions,
		AvgTranslationScore:   p.AvgTranslationScore,
		AvgPronunciationScore: p.AvgPronunciationScore,
		RecentSessions:        recent,
	})
}

func (h *ApiHandler) SearchSentences(w http.ResponseWriter, r *http.Request) {
	results, err := h.Svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithServiceError(w, r, h.Logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, results)
}
