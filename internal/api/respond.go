package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"tarjama/internal/service"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError renders a *service.ServiceError with its own status
// and message. Anything else is logged and reported as a bare 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	if se, ok := asServiceError(err); ok {
		respondWithError(w, se.StatusCode, se.Msg)
		return
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method":     r.Method,
		"url":        r.URL.String(),
		"request_id": RequestID(r.Context()),
	}).Error("Request failed")
	respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}

func asServiceError(err error) (*service.ServiceError, bool) {
	var se *service.ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
