package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"ir-query-processor/config"
	"ir-query-processor/errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LLMClient talks to a Gemini-compatible generateContent endpoint. It is
// optional: when no API key is configured the pipeline skips polishing and
// serves templated responses directly. Requests are budgeted per minute so
// one busy dashboard cannot exhaust the shared quota.
type LLMClient struct {
	config     *config.LLMConfig
	httpClient *http.Client
	budget     *requestBudget
}

// NewLLMClient creates an LLM service client from configuration.
func NewLLMClient(cfg *config.LLMConfig) *LLMClient {
	return &LLMClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		budget: newRequestBudget(cfg.RequestsPerMin),
	}
}

// Enabled reports whether an API key is configured.
func (c *LLMClient) Enabled() bool {
	return c.config.APIKey != ""
}

// GenerateResponse sends the prompt and returns the model's text. The
// per-minute budget is checked before any network call so a drained budget
// fails fast and the caller can fall back to the templated response.
func (c *LLMClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", errors.NewExternalServiceError(
			errors.ErrCodeLLMServiceFailed,
			"LLM service is not configured",
			nil,
		)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewValidationError(
			errors.ErrCodeInvalidInput,
			"Prompt cannot be empty",
			nil,
		)
	}
	if !c.budget.allow(time.Now()) {
		return "", errors.NewRateLimitError(
			errors.ErrCodeLLMRateLimited,
			"LLM request budget exhausted for this minute",
			nil,
		)
	}

	request := GenerateContentRequest{
		Contents: []GenerateContent{
			{Parts: []GeneratePart{{Text: prompt}}},
		},
	}

	var response GenerateContentResponse
	if err := c.executeWithRetry(ctx, request, &response); err != nil {
		return "", errors.WrapError(err, errors.ErrTypeExternal,
			errors.ErrCodeLLMServiceFailed, "Failed to generate response")
	}

	text := response.Text()
	if text == "" {
		return "", errors.NewExternalServiceError(
			errors.ErrCodeLLMServiceFailed,
			"LLM API returned no candidates",
			nil,
		)
	}
	return text, nil
}

// GenerateContentRequest is the generateContent request body.
type GenerateContentRequest struct {
	Contents []GenerateContent `json:"contents"`
}

// GenerateContent is one content block of a request or candidate.
type GenerateContent struct {
	Parts []GeneratePart `json:"parts"`
}

// GeneratePart is one text part of a content block.
type GeneratePart struct {
	Text string `json:"text"`
}

// GenerateContentResponse is the generateContent response body.
type GenerateContentResponse struct {
	Candidates []struct {
		Content GenerateContent `json:"content"`
	} `json:"candidates"`
}

// Text joins the first candidate's parts, trimmed.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// executeWithRetry executes the HTTP request with retry logic.
func (c *LLMClient) executeWithRetry(ctx context.Context, request GenerateContentRequest, response *GenerateContentResponse) error {
	retryer := errors.NewRetryer(errors.ExternalServiceRetryConfig())

	operation := func() error {
		return c.makeHTTPRequest(ctx, request, response)
	}

	return retryer.Execute(ctx, operation)
}

// makeHTTPRequest makes the actual HTTP request to the LLM API.
func (c *LLMClient) makeHTTPRequest(ctx context.Context, request GenerateContentRequest, response *GenerateContentResponse) error {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return errors.NewInternalError(
			errors.ErrCodeSerializationError,
			"Failed to marshal LLM request",
			err,
		)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.config.Endpoint, "/"), c.config.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return errors.NewInternalError(
			errors.ErrCodeProcessingError,
			"Failed to create HTTP request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewNetworkError(
			errors.ErrCodeNetworkConnection,
			"LLM API request failed",
			err,
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(
			errors.ErrCodeNetworkConnection,
			"Failed to read LLM API response",
			err,
		)
	}

	if resp.StatusCode >= 400 {
		return c.handleHTTPError(resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, response); err != nil {
		return errors.NewInternalError(
			errors.ErrCodeSerializationError,
			"Failed to unmarshal LLM API response",
			err,
		)
	}

	return nil
}

// handleHTTPError converts HTTP errors to appropriate AppErrors.
func (c *LLMClient) handleHTTPError(statusCode int, body string) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return errors.NewAuthError(
			errors.ErrCodeInvalidCredentials,
			"LLM API authentication failed",
			fmt.Errorf("HTTP %d: %s", statusCode, body),
		)
	case statusCode == 429:
		return errors.NewRateLimitError(
			errors.ErrCodeLLMRateLimited,
			"LLM API rate limit exceeded",
			fmt.Errorf("HTTP %d: %s", statusCode, body),
		)
	case statusCode >= 500:
		return errors.NewExternalServiceError(
			errors.ErrCodeLLMServiceFailed,
			"LLM API server error",
			fmt.Errorf("HTTP %d: %s", statusCode, body),
		)
	default:
		return errors.NewValidationError(
			errors.ErrCodeInvalidInput,
			"LLM API client error",
			fmt.Errorf("HTTP %d: %s", statusCode, body),
		)
	}
}

// requestBudget is a fixed-window request counter. The window resets a
// minute after its first request rather than on a wall-clock boundary.
type requestBudget struct {
	mu          sync.Mutex
	limit       int
	windowStart time.Time
	count       int
}

func newRequestBudget(limit int) *requestBudget {
	return &requestBudget{limit: limit}
}

func (b *requestBudget) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit <= 0 {
		return true
	}
	if now.Sub(b.windowStart) >= time.Minute {
		b.windowStart = now
		b.count = 0
	}
	if b.count >= b.limit {
		return false
	}
	b.count++
	return true
}
