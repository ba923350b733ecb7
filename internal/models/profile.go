package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the cached user profile returned by the server on login or
// registration. It is persisted next to the token pair and cleared with it.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
