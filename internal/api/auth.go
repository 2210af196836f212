package api

import (
	"context"
	"net/http"

	"eventdesk/pkg/types"
)

const (
	pathLogin           = "/events/login.php"
	pathSignup          = "/events/signup.php"
	pathResetPassword   = "/events/reset_password.php"
	pathVerifyResetCode = "/events/verify_reset_code.php"
)

// FetchCSRFToken asks the backend for a fresh CSRF token.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	var resp struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := c.get(ctx, pathLogin, nil, &resp); err != nil {
		return "", err
	}
	return resp.CSRFToken, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*types.Session, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var resp struct {
		Envelope
		Token string      `json:"token"`
		User  *types.User `json:"user"`
	}
	if err := c.post(ctx, pathLogin, in, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Token == "" || resp.User == nil {
		return nil, &ServerError{Status: http.StatusOK, Message: resp.reason("Login failed")}
	}

	return &types.Session{Token: resp.Token, User: resp.User}, nil
}

func (c *Client) Signup(ctx context.Context, in *types.SignupInput) error {
	var resp Envelope
	if err := c.post(ctx, pathSignup, in, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return &ServerError{Status: http.StatusOK, Message: resp.reason("Signup failed")}
	}
	return nil
}

// RequestPasswordReset has the backend email a six digit reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	in := struct {
		Email string `json:"email"`
	}{email}

	var resp Envelope
	if err := c.post(ctx, pathResetPassword, in, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return &ServerError{Status: http.StatusOK, Message: resp.reason("Failed to send reset code")}
	}
	return nil
}

func (c *Client) VerifyResetCode(ctx context.Context, in *types.PasswordResetInput) error {
	var resp Envelope
	if err := c.post(ctx, pathVerifyResetCode, in, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return &ServerError{Status: http.StatusOK, Message: resp.reason("Failed to reset password")}
	}
	return nil
}
