package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/credentials"
)

const requestTimeout = 30 * time.Second

// Refresher exchanges the stored refresh credential for new tokens. Satisfied
// by *auth.RefreshManager.
type Refresher interface {
	TryRefresh(ctx context.Context) bool
}

// GraphQLClient is the HTTP implementation of Client. It attaches the stored
// access credential as a bearer header and, on a 401, refreshes once and
// retries once. Never more than one retry per logical call: a second 401
// means the new credential is no better and retrying further would loop.
type GraphQLClient struct {
	endpointURL string
	httpClient  *http.Client
	creds       credentials.Repository
	refresher   Refresher
	log         logging.Logger
}

func NewGraphQLClient(endpointURL string, creds credentials.Repository, refresher Refresher, log logging.Logger) *GraphQLClient {
	return &GraphQLClient{
		endpointURL: endpointURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		creds:       creds,
		refresher:   refresher,
		log:         log,
	}
}

func (c *GraphQLClient) Execute(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	token, err := c.creds.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read access credential: %w", err)
	}
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	status, body, err := c.post(ctx, token, query, variables)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.log.Debug(ctx, "remote call unauthorized, attempting token refresh")
		if !c.refresher.TryRefresh(ctx) {
			refreshToken, err := c.creds.Get(ctx, common.RefreshTokenKey)
			if err == nil && refreshToken == "" {
				// Refresh concluded with a forced logout.
				return nil, common.ErrSessionExpired
			}
			return nil, common.ErrReauthRequired
		}

		token, err = c.creds.Get(ctx, common.AccessTokenKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read access credential: %w", err)
		}

		status, body, err = c.post(ctx, token, query, variables)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, common.ErrReauthRequired
		}
	}

	if status < 200 || status > 299 {
		return nil, &CallError{Status: status, Body: string(body)}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(resp.Errors) > 0 && resp.Data == nil {
		return nil, &CallError{Status: status, Body: resp.Errors[0].Message}
	}

	return &resp, nil
}

func (c *GraphQLClient) post(ctx context.Context, token string, query string, variables map[string]any) (int, []byte, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return res.StatusCode, body, nil
}
