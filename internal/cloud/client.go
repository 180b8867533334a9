package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/suggest"
)

const defaultTimeout = 30 * time.Second

// ErrInvalidLicense is returned when the backend rejects the license token.
var ErrInvalidLicense = errors.New("invalid or expired license token")

// RateLimitedError carries the backend's explanation of which limit was hit.
type RateLimitedError struct {
	Detail string
}

func (e *RateLimitedError) Error() string { return e.Detail }

// Client talks to the remote gate on behalf of one license.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Suggest asks the backend to improve text.
func (c *Client) Suggest(ctx context.Context, text string) (*suggest.Suggestion, error) {
	body, err := json.Marshal(map[string]string{
		"license_token": c.token,
		"reminder_text": text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/suggest-reminder", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out suggest.Suggestion
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.SuggestedText == "" {
		out.SuggestedText = text
	}
	return &out, nil
}

// UsageStats fetches quota and spend for the license.
func (c *Client) UsageStats(ctx context.Context) (*gate.Stats, error) {
	u := c.baseURL + "/api/v1/usage-stats?license_token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out gate.Stats
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrInvalidLicense
	case http.StatusTooManyRequests:
		return &RateLimitedError{Detail: detail(body, "rate limited or quota exceeded")}
	default:
		return fmt.Errorf("backend error: %d - %s", resp.StatusCode, detail(body, strings.TrimSpace(string(body))))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func detail(body []byte, fallback string) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return fallback
}
