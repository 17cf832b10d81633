package translate

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tarjama_translation_requests_total",
			Help: "Total number of batch translation requests",
		},
		[]string{"engine", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tarjama_translation_request_duration_seconds",
			Help:    "Duration of batch translation requests in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"engine", "status"},
	)

	translationBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tarjama_translation_batch_size",
			Help:    "Number of sentences sent per translation request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		},
		[]string{"engine"},
	)
)

type instrumented struct {
	engine string
	next   Translator
}

// Instrument wraps t so every batch records request, duration and size
// metrics under the given engine label. Empty batches are not recorded.
func Instrument(engine string, t Translator) Translator {
	return &instrumented{engine: engine, next: t}
}

func (i *instrumented) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	start := time.Now()
	out, err := i.next.TranslateBatch(ctx, texts)

	status := "success"
	if err != nil {
		status = "error"
	}
	translationRequestsTotal.WithLabelValues(i.engine, status).Inc()
	translationRequestDuration.WithLabelValues(i.engine, status).Observe(time.Since(start).Seconds())
	translationBatchSize.WithLabelValues(i.engine).Observe(float64(len(texts)))

	return out, err
}

// CheckHealth forwards to the wrapped backend when it supports health checks.
func (i *instrumented) CheckHealth(ctx context.Context) error {
	if hc, ok := i.next.(HealthChecker); ok {
		return hc.CheckHealth(ctx)
	}
	return nil
}
