package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/venturehub/community-chat/domain"
)

// HistoryFetcher is the one-shot history read a session performs on start.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]domain.EnrichedMessage, error)
}

// HistoryClient pulls the full ordered history over HTTP.
type HistoryClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHistoryClient(baseURL string) HistoryClient {
	return HistoryClient{BaseURL: baseURL, HTTP: http.DefaultClient}
}

func (h HistoryClient) FetchHistory(ctx context.Context) ([]domain.EnrichedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/api/chat/messages", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history fetch: unexpected status %d", resp.StatusCode)
	}

	var messages []domain.EnrichedMessage
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("history decode: %w", err)
	}
	return messages, nil
}
