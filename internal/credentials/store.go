package credentials

import (
	"context"

	"github.com/pickmart/pickmart-go/internal/models"
)

// Credential is the full persisted set: the short-lived access token, the
// rotating refresh token and the cached user profile. The three slots always
// move together: written together on login, registration and refresh success,
// cleared together on logout and refresh failure.
type Credential struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Profile      *models.Profile `json:"profile,omitempty"`
}

func (c Credential) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store persists the current credential set. At most one set is current at
// any time and Save replaces it atomically: no reader ever observes a
// half-updated pair.
//
// Known limitation: refresh single-flight is coordinated per process. Two
// processes sharing one persisted store (file, Redis, Postgres) may refresh
// concurrently, and since refresh tokens rotate, the loser's token is
// invalidated. Hosts that share a store across processes must serialize
// refreshes themselves.
type Store interface {
	// Load returns the current set or apperrors.ErrNoCredential.
	Load(ctx context.Context) (Credential, error)

	// Save replaces the whole set.
	Save(ctx context.Context, cred Credential) error

	// Clear removes all slots. Idempotent.
	Clear(ctx context.Context) error
}
