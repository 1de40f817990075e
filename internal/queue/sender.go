package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wolram/jobapp/internal/models"
)

const ingestPath = "/api/v1/extension/ingest"

// HTTPSender delivers batches to the ingest API over HTTP with a bearer
// token. It implements BatchSender.
type HTTPSender struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSender creates a sender for the API at baseURL. Per-attempt
// timeouts come from the caller's context, not the client.
func NewHTTPSender(baseURL, token string) *HTTPSender {
	return &HTTPSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
	}
}

// Send implements BatchSender. A 401 maps to ErrUnauthorized so the queue
// knows not to retry; any other non-2xx status is a transient error.
func (s *HTTPSender) Send(ctx context.Context, batch *models.IngestRequest) (*models.IngestResponse, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ingestPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ingest request failed: HTTP %d", resp.StatusCode)
	}

	var result models.IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
