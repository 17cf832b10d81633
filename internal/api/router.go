package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	// JWTSecret enables bearer-token auth on /api when set.
	JWTSecret []byte
	// StaticDir is served at / when set.
	StaticDir string
	Logger    *logrus.Logger
}

func NewRouter(h *ApiHandler, health *HealthHandler, opts RouterOptions) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = h.Logger
	}

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, LoggingMiddleware(logger), RecoverMiddleware(logger))

	r.HandleFunc("/healthz", health.Healthz).Methods("GET")
	r.HandleFunc("/readyz", health.Readyz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s := r.PathPrefix("/api").Subrouter()
	if len(opts.JWTSecret) > 0 {
		s.Use(AuthMiddleware(opts.JWTSecret))
	}

	s.HandleFunc("/scripts", h.CreateScript).Methods("POST")
	s.HandleFunc("/scripts", h.ListScripts).Methods("GET")
	s.HandleFunc("/scripts/{script_id:[0-9]+}", h.GetScript).Methods("GET")
	s.HandleFunc("/scripts/{script_id:[0-9]+}", h.UpdateScript).Methods("PUT")
	s.HandleFunc("/scripts/{script_id:[0-9]+}", h.DeleteScript).Methods("DELETE")
	s.HandleFunc("/scripts/{script_id:[0-9]+}/sentences", h.ListSentences).Methods("GET")
	s.HandleFunc("/sentence/{sentence_id:[0-9]+}/model_translation", h.SetModelTranslation).Methods("POST")
	s.HandleFunc("/sentence/{sentence_id:[0-9]+}/audio", h.SentenceAudio).Methods("GET")
	s.HandleFunc("/sentences/search", h.SearchSentences).Methods("GET")
	s.HandleFunc("/practice/translate", h.PracticeTranslate).Methods("POST")
	s.HandleFunc("/practice/pronunciation", h.PracticePronunciation).Methods("POST")
	s.HandleFunc("/progress", h.Progress).Methods("GET")

	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir))).Methods("GET")
	}

	return r
}
