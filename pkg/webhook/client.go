// Package webhook delivers finalized interview results to the backend.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// InvitationPath is the backend endpoint receiving interview outcomes.
const InvitationPath = "/api/v1/webhook/interview-invitation"

// DefaultTimeout bounds a single delivery attempt. There are no retries.
const DefaultTimeout = 10 * time.Second

// TranscriptEntry is one question/response pair of the interview.
type TranscriptEntry struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Skill    string `json:"skill"`
}

// Result is the completion payload posted when an interview ends.
type Result struct {
	ApplicantID  int               `json:"applicant_id"`
	InvitationID int               `json:"invitation_interview_id"`
	Status       string            `json:"status"`
	Transcript   []TranscriptEntry `json:"transcript"`
}

// Client posts interview results to the configured base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a webhook client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// PostResult submits the result with a single POST. The response body is
// discarded; a non-2xx status is returned as an error for the caller to log.
func (c *Client) PostResult(ctx context.Context, result Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+InvitationPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver result: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
