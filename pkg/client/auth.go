package client

import (
	"context"

	"github.com/segyhp/library-circulation/internal/domain"
)

const pathSignin = "/api/auth/signin"

// Signin exchanges credentials for a token. The caller stores it in the session.
func (c *Client) Signin(ctx context.Context, username, password string) (*domain.JWTResponse, error) {
	var out domain.JWTResponse
	err := c.post(ctx, pathSignin, public, domain.SigninRequest{Username: username, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, request domain.SignupRequest) (*domain.Member, error) {
	var out domain.Member
	if err := c.post(ctx, "/api/auth/signup", public, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupAdmin bootstraps the first administrator of an empty installation
func (c *Client) SetupAdmin(ctx context.Context, request domain.AdminSetupRequest) error {
	return c.post(ctx, "/api/auth/setup-admin", public, request, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.CurrentUser, error) {
	var out domain.CurrentUser
	if err := c.get(ctx, "/api/auth/me", authenticated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
