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

	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// maxErrorBody caps how much of a failed response is quoted in errors
const maxErrorBody = 512

// LibreTranslateClient talks to a LibreTranslate-compatible HTTP API
type LibreTranslateClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
}

var _ interfaces.TranslationBackend = (*LibreTranslateClient)(nil)

// NewLibreTranslateClient creates a client; timeout applies per request
func NewLibreTranslateClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *LibreTranslateClient {
	return &LibreTranslateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detectResult struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Detect returns the most confident detection. Confidence is scaled to 0..1.
func (c *LibreTranslateClient) Detect(ctx context.Context, text string) (types.Detection, error) {
	var results []detectResult
	if err := c.post(ctx, "/detect", detectRequest{Q: text, APIKey: c.apiKey}, &results); err != nil {
		return types.Detection{}, err
	}
	if len(results) == 0 {
		return types.Detection{}, fmt.Errorf("detect returned no candidates")
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	confidence := best.Confidence
	if confidence > 1 {
		confidence /= 100
	}
	return types.Detection{Language: best.Language, Confidence: confidence}, nil
}

// Translate translates plain text
func (c *LibreTranslateClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	}
	var resp translateResponse
	if err := c.post(ctx, "/translate", req, &resp); err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

func (c *LibreTranslateClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeNetwork, fmt.Sprintf("translation backend %s unreachable", path))
	}
	defer resp.Body.Close()
	c.logger.Debug("POST %s -> %d in %s", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return fmt.Errorf("translation backend %s returned %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
