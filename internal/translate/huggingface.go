package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultHuggingFaceURL   = "https://api-inference.huggingface.co"
	DefaultHuggingFaceModel = "Helsinki-NLP/opus-mt-ar-en"
)

// HuggingFaceClient runs a pretrained sequence-to-sequence model
// (Helsinki-NLP/opus-mt-ar-en by default) through the Hugging Face Inference
// API or any server exposing the same /models/{model} contract, such as a
// self-hosted text-generation-inference container.
type HuggingFaceClient struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewHuggingFaceClient(baseURL, model, token string, timeout time.Duration, logger *logrus.Logger) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &HuggingFaceClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type hfRequest struct {
	Inputs  []string  `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfTranslation struct {
	TranslationText string `json:"translation_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// TranslateBatch sends all texts in a single inference call.
func (c *HuggingFaceClient) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"model":      c.model,
		"batch_size": len(texts),
	}).Debug("Translating batch with Hugging Face model")

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(hfRequest{
		Inputs:  texts,
		Options: hfOptions{WaitForModel: true},
	}); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Error("Translation request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out []hfTranslation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, len(texts), len(out))
	}

	translations := make([]string, len(out))
	for i, t := range out {
		translations[i] = t.TranslationText
	}

	c.logger.WithFields(logrus.Fields{
		"batch_size":  len(texts),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Translation completed successfully")

	return translations, nil
}
