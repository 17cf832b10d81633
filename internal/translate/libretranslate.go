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

const DefaultLibreTranslateURL = "http://localhost:5000"

// LibreTranslateClient translates through a self-hosted LibreTranslate
// server, which accepts an array of texts in one /translate call.
type LibreTranslateClient struct {
	baseURL    string
	source     string
	target     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewLibreTranslateClient(baseURL, source, target string, timeout time.Duration, logger *logrus.Logger) *LibreTranslateClient {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if source == "" {
		source = "ar"
	}
	if target == "" {
		target = "en"
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &LibreTranslateClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		source:     source,
		target:     target,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type libreRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type libreResponse struct {
	TranslatedText []string `json:"translatedText"`
}

func (c *LibreTranslateClient) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"source_lang": c.source,
		"target_lang": c.target,
		"batch_size":  len(texts),
	}).Debug("Translating batch with LibreTranslate")

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(libreRequest{
		Q:      texts,
		Source: c.source,
		Target: c.target,
		Format: "text",
	}); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Error("Translation request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var ltResp libreResponse
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(ltResp.TranslatedText) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, len(texts), len(ltResp.TranslatedText))
	}

	c.logger.WithFields(logrus.Fields{
		"batch_size":  len(texts),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Translation completed successfully")

	return ltResp.TranslatedText, nil
}

// CheckHealth uses the /languages endpoint as a readiness probe.
func (c *LibreTranslateClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
