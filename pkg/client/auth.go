package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/naveenspark/yorch/pkg/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token. It implements
// auth.Authenticator. Any failure is an *auth.AuthError whose Message is the
// backend's detail when it sent one.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	err := c.send(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &out, false)
	if err != nil {
		ae := &auth.AuthError{Message: auth.DefaultLoginMessage, Err: fmt.Errorf("client.Login: %w", err)}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			ae.StatusCode = httpErr.StatusCode
			if httpErr.Detail != "" {
				ae.Message = httpErr.Detail
			}
		}
		return "", ae
	}
	if out.AccessToken == "" {
		return "", &auth.AuthError{Message: auth.DefaultLoginMessage, StatusCode: http.StatusOK}
	}
	return out.AccessToken, nil
}

// Verify checks that the backend is reachable. It needs no token.
func (c *Client) Verify(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.send(ctx, http.MethodGet, "/auth/verify", nil, &out, false); err != nil {
		return fmt.Errorf("client.Verify: %w", err)
	}
	if out.Status != "ok" {
		return fmt.Errorf("client.Verify: unexpected status %q", out.Status)
	}
	return nil
}
