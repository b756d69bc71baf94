// Package remote implements the remote query client: executing named GraphQL
// queries and mutations against the backend API with the current access
// credential attached, including the refresh-and-retry-once behavior on
// authorization failures.
package remote

import "context"

// Client executes a query or mutation with variables against the remote API.
//
// Error contract:
//   - common.ErrUnauthenticated when no access credential is stored.
//   - common.ErrSessionExpired when a refresh attempt concluded the session is
//     definitively over (the user has been logged out).
//   - common.ErrReauthRequired when a refresh attempt failed non-definitively.
//   - *CallError for any other non-2xx response.
type Client interface {
	Execute(ctx context.Context, query string, variables map[string]any) (*Response, error)
}

// Response is the parsed tree-shaped API response.
type Response struct {
	Data   map[string]any  `json:"data"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// ResponseError is one entry of the response's errors node.
type ResponseError struct {
	Message string `json:"message"`
}
