// Package translate wraps the machine translation model behind a batch
// interface. Backends are remote inference endpoints; the model itself is
// never loaded in process.
package translate

import (
	"context"
	"errors"
)

// ErrLengthMismatch is returned when a backend answers with a different
// number of translations than it was given texts.
var ErrLengthMismatch = errors.New("translation count does not match input count")

// Translator translates source-language sentences to the target language.
type Translator interface {
	// TranslateBatch returns one translation per input text, in input order.
	// An empty input yields an empty output without contacting the backend.
	// The whole batch fails if the backend call fails.
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

// HealthChecker is implemented by backends that can report readiness.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}
