package games

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"mr-games/config"
)

// Client handles communication with the games store API.
type Client struct {
	BaseURL    string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new games API client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}

	return &Client{
		BaseURL:   cfg.GamesAPIURL,
		Token:     cfg.AdminToken,
		UserAgent: cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}, nil
}

// makeRequest performs one call against the store endpoint and returns the
// response body of a 2xx answer.
func (c *Client) makeRequest(ctx context.Context, method string, queryParams url.Values, body interface{}, requiresAuth bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if queryParams != nil {
		q := req.URL.Query()
		for key, values := range queryParams {
			q[key] = values
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requiresAuth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}

// StatusError is returned when the store answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api request failed: status %d, body: %s", e.StatusCode, e.Body)
}

// ListGames fetches the whole catalog in server order.
func (c *Client) ListGames(ctx context.Context) ([]Game, error) {
	raw, err := c.makeRequest(ctx, http.MethodGet, nil, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return DecodeGameList(raw)
}

// DecodeGameList accepts both {"games": [...]} and a bare array.
func DecodeGameList(raw []byte) ([]Game, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Game
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode game list: %w", err)
		}
		return list, nil
	}

	var wrapped listResponse
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode game list: %w", err)
	}
	if wrapped.Games == nil {
		return nil, fmt.Errorf("failed to decode game list: missing \"games\" field")
	}
	return wrapped.Games, nil
}

// CreateGame sends a new record to the store and returns the id it assigned,
// or zero when the store did not report one. Only the status code decides
// success; the body is optional.
func (c *Client) CreateGame(ctx context.Context, game NewGame) (int64, error) {
	raw, err := c.makeRequest(ctx, http.MethodPost, nil, game, true)
	if err != nil {
		return 0, fmt.Errorf("failed to create game '%s': %w", game.Title, err)
	}

	var created createResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &created)
	}
	return created.ID, nil
}

// DeleteGame removes a record by id.
func (c *Client) DeleteGame(ctx context.Context, id int64) error {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))

	if _, err := c.makeRequest(ctx, http.MethodDelete, params, nil, true); err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return nil
}
