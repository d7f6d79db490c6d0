package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ir-query-processor/config"
	"ir-query-processor/models"
)

// SupabaseReportStore reads incident reports through the Supabase PostgREST
// API. The extraction service that writes reports lives upstream; this
// client is read-only.
type SupabaseReportStore struct {
	baseURL    string
	apiKey     string
	table      string
	fetchLimit int
	httpClient *http.Client
}

// NewSupabaseReportStore creates a PostgREST client for the district's
// report table.
func NewSupabaseReportStore(cfg *config.SupabaseConfig, district *config.DistrictConfig) *SupabaseReportStore {
	return &SupabaseReportStore{
		baseURL:    strings.TrimSuffix(cfg.URL, "/") + "/rest/v1",
		apiKey:     cfg.APIKey,
		table:      district.ReportsTable,
		fetchLimit: district.FetchLimit,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SupabaseError represents errors from the Supabase API.
type SupabaseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *SupabaseError) Error() string {
	return fmt.Sprintf("supabase error [%s]: %s", e.Code, e.Message)
}

// RetryConfig defines retry behavior for failed requests.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig provides sensible defaults for retry behavior.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  100 * time.Millisecond,
	MaxDelay:   5 * time.Second,
}

// FetchReports returns the report snapshot the pipeline narrows in memory.
// The coarse filter maps onto PostgREST column operators; everything finer
// happens downstream.
func (c *SupabaseReportStore) FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error) {
	params := map[string]string{
		"select": "*",
		"order":  "uploaded_at.desc",
	}

	limit := c.fetchLimit
	if filter != nil {
		if filter.Limit > 0 && filter.Limit < limit {
			limit = filter.Limit
		}
		if filter.AreaCommittee != "" {
			params["area_committee"] = "eq." + filter.AreaCommittee
		}
		if filter.PoliceStation != "" {
			params["police_station"] = "eq." + filter.PoliceStation
		}
		if filter.SearchTerm != "" {
			params["original_filename"] = "ilike.*" + filter.SearchTerm + "*"
		}
	}
	params["limit"] = strconv.Itoa(limit)

	endpoint := "/" + c.table + buildQueryParams(params)
	var reports []models.Report
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &reports); err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, nil
}

// GetReport retrieves a single report by ID.
func (c *SupabaseReportStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	params := map[string]string{
		"select": "*",
		"id":     "eq." + id,
		"limit":  "1",
	}
	endpoint := "/" + c.table + buildQueryParams(params)

	var reports []models.Report
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &reports); err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("report %s: %w", id, models.ErrNotFound)
	}

	return &reports[0], nil
}

// CountReports returns the total number of reports in the table.
func (c *SupabaseReportStore) CountReports(ctx context.Context) (int, error) {
	params := map[string]string{
		"select": "count",
	}
	endpoint := "/" + c.table + buildQueryParams(params)

	var result []map[string]interface{}
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &result); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	total := 0
	if len(result) > 0 {
		if count, ok := result[0]["count"].(float64); ok {
			total = int(count)
		}
	}
	return total, nil
}

// HealthCheck verifies connection to Supabase.
func (c *SupabaseReportStore) HealthCheck(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := "/" + c.table + "?select=count&limit=1"
	var result []map[string]interface{}

	return c.makeRequest(ctx, "GET", endpoint, nil, &result)
}

// executeWithRetry executes an operation with exponential backoff retry.
func (c *SupabaseReportStore) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= DefaultRetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * DefaultRetryConfig.BaseDelay
			if delay > DefaultRetryConfig.MaxDelay {
				delay = DefaultRetryConfig.MaxDelay
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := operation(); err != nil {
			lastErr = err
			if !isRetryableError(err) {
				return err
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("operation failed after %d retries: %w", DefaultRetryConfig.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry.
func isRetryableError(err error) bool {
	if supabaseErr, ok := err.(*SupabaseError); ok {
		// Don't retry client errors (4xx), but retry server errors (5xx)
		return strings.HasPrefix(supabaseErr.Code, "5")
	}
	return true // Retry network errors and other unknown errors
}

// makeRequest performs an HTTP request to Supabase with authentication.
func (c *SupabaseReportStore) makeRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	return c.executeWithRetry(ctx, func() error {
		return c.doRequest(ctx, method, endpoint, body, result)
	})
}

// doRequest performs the actual HTTP request.
func (c *SupabaseReportStore) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var supabaseErr SupabaseError
		if err := json.Unmarshal(respBody, &supabaseErr); err != nil {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return &supabaseErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// buildQueryParams builds the query string from PostgREST parameters.
func buildQueryParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	values := url.Values{}
	for key, value := range params {
		values.Add(key, value)
	}

	return "?" + values.Encode()
}
