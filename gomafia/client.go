package gomafia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrTournamentFetchFailed = errors.New("failed to fetch tournament from gomafia")

// Fetcher — интерфейс внешнего источника, который потребляет синхронизация.
type Fetcher interface {
	GetTournament(ctx context.Context, externalID int) (*TournamentResponse, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) GetTournament(ctx context.Context, externalID int) (*TournamentResponse, error) {
	url := fmt.Sprintf("%s/api/tournament/%d", c.baseURL, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTournamentFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTournamentFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for tournament %d", ErrTournamentFetchFailed, resp.StatusCode, externalID)
	}

	var payload TournamentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response for tournament %d: %v", ErrTournamentFetchFailed, externalID, err)
	}

	return &payload, nil
}
