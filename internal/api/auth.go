package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Authenticate verifies credentials against the backend.
//
// Parameters:
//   - ctx: Context for the request
//   - email: Account identifier
//   - password: Account secret
//
// Returns:
//   - Identity: Server-issued user id and role
//   - error: ErrInvalidCredentials if the backend rejects the login or the
//     success body is missing user_id; wrapped transport errors otherwise
//
// A 4xx status is a rejection, not a transport failure: the caller surfaces
// it to the user rather than retrying.
func (c *Client) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	err := c.makeRequest(ctx, "POST", "/auth/login", req, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return Identity{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, se.Body)
		}
		return Identity{}, fmt.Errorf("authenticate: %w", err)
	}

	// A success status without a user id is treated as a rejection: the
	// backend contract guarantees user_id on genuine success.
	if resp.UserID == "" {
		return Identity{}, fmt.Errorf("%w: response missing user_id", ErrInvalidCredentials)
	}

	c.logger.Debug("authenticated", "user_id", resp.UserID, "role", resp.Role)
	return Identity{UserID: resp.UserID, Role: resp.Role}, nil
}

// FetchParameters retrieves the user's retrieval configuration.
//
// Parameters:
//   - ctx: Context for the request
//   - userID: Server-issued user id from Authenticate
//
// Returns:
//   - Parameters: The stored retrieval configuration
//   - error: If the request fails
func (c *Client) FetchParameters(ctx context.Context, userID string) (Parameters, error) {
	var params Parameters
	path := "/parameters/get?user_id=" + url.QueryEscape(userID)
	if err := c.makeRequest(ctx, "GET", path, nil, &params); err != nil {
		return Parameters{}, fmt.Errorf("fetch parameters: %w", err)
	}
	return params, nil
}

// UpdateParameters replaces the user's retrieval configuration on the backend.
// On success the caller is responsible for pushing the new value into the
// session manager so the local cache stays consistent.
func (c *Client) UpdateParameters(ctx context.Context, userID string, params Parameters) error {
	req := struct {
		UserID     string     `json:"user_id"`
		Parameters Parameters `json:"parameters"`
	}{UserID: userID, Parameters: params}

	if err := c.makeRequest(ctx, "POST", "/parameters/update", req, nil); err != nil {
		return fmt.Errorf("update parameters: %w", err)
	}

	c.logger.Debug("parameters updated", "user_id", userID)
	return nil
}
