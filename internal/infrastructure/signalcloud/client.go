// Package signalcloud implements the HTTP client for the hosted signal
// processing service. The service runs the actual analysis algorithm; this
// side only submits, polls and fetches.
package signalcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"signalflow/internal/domain"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type submitRequest struct {
	FileRef  string             `json:"file_ref"`
	Metadata domain.JobMetadata `json:"metadata"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

func (c *Client) Submit(ctx context.Context, fileRef string, meta domain.JobMetadata) (domain.JobHandle, error) {
	body, err := json.Marshal(submitRequest{FileRef: fileRef, Metadata: meta})
	if err != nil {
		return "", err
	}

	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", bytes.NewReader(body), &resp); err != nil {
		return "", fmt.Errorf("submit failed: %w", err)
	}
	return domain.JobHandle(resp.JobID), nil
}

func (c *Client) Poll(ctx context.Context, handle domain.JobHandle) (domain.JobPoll, error) {
	var poll domain.JobPoll
	path := fmt.Sprintf("/v1/jobs/%s", handle)
	if err := c.do(ctx, http.MethodGet, path, nil, &poll); err != nil {
		return domain.JobPoll{}, fmt.Errorf("poll failed: %w", err)
	}
	return poll, nil
}

func (c *Client) Fetch(ctx context.Context, handle domain.JobHandle) (*domain.SignalMetrics, error) {
	var metrics domain.SignalMetrics
	path := fmt.Sprintf("/v1/jobs/%s/result", handle)
	if err := c.do(ctx, http.MethodGet, path, nil, &metrics); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return &metrics, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("signalcloud returned %d: %s", resp.StatusCode, string(payload))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
