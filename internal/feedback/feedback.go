// Package feedback asks a language model for a short critique of a
// translation attempt. It is best-effort: failures degrade to a fixed
// placeholder and never surface as errors.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"tarjama/internal/config"
)

// Unavailable is returned in place of feedback when the service fails.
const Unavailable = "AI feedback unavailable"

const (
	systemPrompt = "You are an English teacher. Provide brief, helpful feedback on translation errors."
	maxTokens    = 100
)

var feedbackRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tarjama_feedback_requests_total",
		Help: "Total number of feedback requests by outcome",
	},
	[]string{"outcome"},
)

// Result is either a critique from the model or the degraded placeholder.
type Result struct {
	Text     string
	Degraded bool
}

func Success(text string) Result {
	return Result{Text: text}
}

func Degraded() Result {
	return Result{Text: Unavailable, Degraded: true}
}

type Client struct {
	client  oai.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

// New returns a feedback client, or an error when no API key is configured.
func New(cfg config.FeedbackConfig, logger *logrus.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("feedback: api key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("feedback: model must not be empty")
	}
	if logger == nil {
		logger = logrus.New()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return &Client{
		client:  oai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Feedback requests a critique of candidate against reference.
func (c *Client) Feedback(ctx context.Context, reference, candidate string) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.complete(ctx, reference, candidate)
	if err != nil {
		c.logger.WithError(err).WithField("model", c.model).Warn("Feedback unavailable")
		feedbackRequestsTotal.WithLabelValues("degraded").Inc()
		return Degraded()
	}

	feedbackRequestsTotal.WithLabelValues("success").Inc()
	return Success(text)
}

func (c *Client) complete(ctx context.Context, reference, candidate string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(fmt.Sprintf("Model: %s\nStudent translation: %s\nProvide brief feedback on any errors.", reference, candidate)),
		},
		MaxTokens: param.NewOpt(int64(maxTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty feedback in response")
	}
	return text, nil
}
