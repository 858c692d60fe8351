// Package assessment syncs risk profiles from an external clinical-assessment
// service. The integration is feature-flagged; when it is disabled or a fetch
// fails, callers fall back to the locally stored profile.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config holds configuration for the assessment API client
type Config struct {
	BaseURL  string `json:"base_url"`
	TokenURL string `json:"token_url"`

	// OAuth client-credentials grant
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`

	Timeout       time.Duration `json:"timeout"`
	RetryAttempts int           `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
	}
}

// Client talks to the assessment service
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     Config

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new assessment API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("assessment base URL and token URL are required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("assessment client credentials are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = DefaultConfig().RetryAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}, nil
}

// FetchRecords retrieves assessment history for a subject, newest first
func (c *Client) FetchRecords(ctx context.Context, subjectRef string) ([]Record, error) {
	reqURL := fmt.Sprintf("%s/subjects/%s/assessments", c.baseURL, url.PathEscape(subjectRef))

	resp, err := c.doRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil // no assessment history is valid
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var apiResp assessmentListResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]Record, 0, len(apiResp.Assessments))
	for i := range apiResp.Assessments {
		records = append(records, mapRecord(&apiResp.Assessments[i]))
	}
	return records, nil
}

// FetchLatest retrieves the most recent assessment for a subject, nil if none
func (c *Client) FetchLatest(ctx context.Context, subjectRef string) (*Record, error) {
	records, err := c.FetchRecords(ctx, subjectRef)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	latest := records[0]
	for _, rec := range records[1:] {
		if rec.CompletedAt.After(latest.CompletedAt) {
			latest = rec
		}
	}
	return &latest, nil
}

// token returns a cached access token, fetching a fresh one when expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early to avoid racing the expiry.
	lifetime := time.Duration(tok.ExpiresIn) * time.Second
	if lifetime > time.Minute {
		lifetime -= time.Minute
	}
	c.tokenExpiry = time.Now().Add(lifetime)
	return c.accessToken, nil
}

// doRequest performs an authenticated request with retry on server errors
func (c *Client) doRequest(ctx context.Context, method, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		accessToken, err := c.token(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// An expired token comes back as 401; drop the cache and retry.
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			c.mu.Lock()
			c.accessToken = ""
			c.mu.Unlock()
			lastErr = fmt.Errorf("authorization rejected")
			continue
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// API response types

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type assessmentListResponse struct {
	Assessments []assessmentResponse `json:"assessments"`
}

type assessmentResponse struct {
	ID              string         `json:"id"`
	SubjectRef      string         `json:"subject_ref"`
	CompletedAt     string         `json:"completed_at"`
	CompositeScore  int            `json:"composite_score"`
	DomainScores    map[string]int `json:"domain_scores"`
	PositiveScreens []string       `json:"positive_screens"`
}

func mapRecord(resp *assessmentResponse) Record {
	rec := Record{
		ExternalID:      resp.ID,
		SubjectRef:      resp.SubjectRef,
		CompositeScore:  resp.CompositeScore,
		DomainScores:    resp.DomainScores,
		PositiveScreens: resp.PositiveScreens,
	}
	if resp.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, resp.CompletedAt); err == nil {
			rec.CompletedAt = t
		}
	}
	return rec
}
