package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/models"
	"github.com/pickmart/pickmart-go/internal/transport"
)

type AuthService struct {
	client *Client
}

// credentialsResponse is what login, registration and refresh answer with:
// the token pair plus the user profile to cache alongside it.
type credentialsResponse struct {
	models.TokenPair
	Profile models.Profile `json:"profile"`
}

// Session describes the current local session.
type Session struct {
	Profile *models.Profile

	// Expiry claim of the stored access token, zero when it can't be parsed.
	// Informational only: the server remains the authority.
	AccessExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, username string, password string) (models.Profile, error) {
	type registerRequest struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
	}

	req, err := jsonRequest(http.MethodPost, transport.PathAuthRegister, registerRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return models.Profile{}, err
	}

	var out credentialsResponse
	if err := s.client.doJSON(ctx, req, &out); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return models.Profile{}, fmt.Errorf("%w: %s", apperrors.ErrUserAlreadyExists, username)
		}
		return models.Profile{}, err
	}

	return out.Profile, s.saveCredential(ctx, out)
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.Profile, error) {
	type loginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	req, err := jsonRequest(http.MethodPost, transport.PathAuthLogin, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return models.Profile{}, err
	}

	var out credentialsResponse
	if err := s.client.doJSON(ctx, req, &out); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return models.Profile{}, apperrors.ErrLoginFailed
		}
		return models.Profile{}, err
	}

	return out.Profile, s.saveCredential(ctx, out)
}

// Logout invalidates the session server side and always clears the local
// credential set, even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	req := &transport.Request{Method: http.MethodPost, Path: transport.PathAuthLogout}

	if err := s.client.doJSON(ctx, req, nil); err != nil {
		s.client.logger.Warn("Server-side logout failed, clearing local credentials anyway", "error", err)
	}

	if err := s.client.store.Clear(ctx); err != nil {
		return fmt.Errorf("can't clear credentials: %w", err)
	}
	return nil
}

// Refresh forces a token refresh through the same single-flight coordinator
// ordinary requests use, so a manual refresh and a 401-triggered one can
// never run concurrently.
func (s *AuthService) Refresh(ctx context.Context) error {
	_, err := s.client.transport.Refresh(ctx)
	return err
}

// Session returns the cached profile and access token expiry, or
// apperrors.ErrNoCredential when logged out.
func (s *AuthService) Session(ctx context.Context) (Session, error) {
	cred, err := s.client.store.Load(ctx)
	if err != nil {
		return Session{}, err
	}

	session := Session{Profile: cred.Profile}
	if expiresAt, err := models.AccessTokenExpiresAt(cred.AccessToken); err == nil {
		session.AccessExpiresAt = expiresAt
	}

	return session, nil
}

func (s *AuthService) saveCredential(ctx context.Context, out credentialsResponse) error {
	cred := credentials.Credential{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Profile:      &out.Profile,
	}
	if err := s.client.store.Save(ctx, cred); err != nil {
		return fmt.Errorf("can't persist credentials: %w", err)
	}
	return nil
}
