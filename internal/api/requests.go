package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var validate = validator.New()

const invalidPayload = "Invalid request payload"

type createScriptRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type updateScriptRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type modelTranslationRequest struct {
	ModelTranslation *string `json:"model_translation" validate:"required"`
}

type translateRequest struct {
	SentenceID      int64   `json:"sentence_id" validate:"required,gt=0"`
	UserTranslation *string `json:"user_translation" validate:"required"`
}

type pronunciationRequest struct {
	PracticeID        int64  `json:"practice_id" validate:"required,gt=0"`
	PronunciationText string `json:"pronunciation_text" validate:"required"`
}

// bind decodes and validates a request body. Validation failures are reported
// with msg so clients see one stable message per endpoint.
func bind(w http.ResponseWriter, r *http.Request, dst any, msg string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, invalidPayload)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
