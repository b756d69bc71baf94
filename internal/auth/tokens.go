// Package auth owns the credential lifecycle: refreshing the access token
// against the token endpoint, rate limiting and deduplicating those attempts,
// forced logout when the refresh credential is no longer usable, and resolving
// the current user identity from the stored id token.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidRefreshToken marks a refusal by the token endpoint: the refresh
// credential itself was rejected, so retrying with the same one is pointless.
var ErrInvalidRefreshToken = errors.New("refresh token rejected by token endpoint")

// Tokens is one successful exchange result. IDToken may be empty when the
// endpoint does not issue one.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// TokenExchanger trades a refresh token for a fresh token set.
type TokenExchanger interface {
	Exchange(ctx context.Context, refreshToken string) (*Tokens, error)
}

const exchangeTimeout = 15 * time.Second

// HTTPTokenExchanger posts a refresh_token grant to an OAuth-style token
// endpoint.
type HTTPTokenExchanger struct {
	endpointURL string
	httpClient  *http.Client
}

func NewHTTPTokenExchanger(endpointURL string) *HTTPTokenExchanger {
	return &HTTPTokenExchanger{
		endpointURL: endpointURL,
		httpClient:  &http.Client{Timeout: exchangeTimeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

func (e *HTTPTokenExchanger) Exchange(ctx context.Context, refreshToken string) (*Tokens, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpointURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var tr tokenResponse
		if json.Unmarshal(body, &tr) == nil && isInvalidGrant(tr.Error) {
			return nil, ErrInvalidRefreshToken
		}
		if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("token endpoint returned %d: %s", res.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	tokens := &Tokens{
		AccessToken:  tr.AccessToken,
		IDToken:      tr.IDToken,
		RefreshToken: tr.RefreshToken,
	}
	// Endpoints that rotate refresh tokens return a new one; those that do
	// not expect the old one to stay valid.
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

func isInvalidGrant(code string) bool {
	switch strings.ToLower(code) {
	case "invalid_grant", "expired_token", "invalid_token":
		return true
	}
	return false
}
