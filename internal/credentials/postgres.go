package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/models"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so tests can run the store
// inside a rolled-back transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps the credential set in a single row keyed by name.
// The upsert replaces all slots in one statement, so readers never observe
// a half-updated pair.
type PostgresStore struct {
	DB DBTX

	// Name keys the row, hosts managing several sessions pick distinct names
	Name string
}

const loadCredential = `-- name: LoadCredential
SELECT access_token, refresh_token, profile
FROM credentials
WHERE name = $1
`

func (s *PostgresStore) Load(ctx context.Context) (Credential, error) {
	rows, _ := s.DB.Query(ctx, loadCredential, s.Name)
	cred, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (Credential, error) {
		var c Credential
		var profile []byte

		if err := row.Scan(&c.AccessToken, &c.RefreshToken, &profile); err != nil {
			return c, err
		}
		if len(profile) > 0 {
			c.Profile = &models.Profile{}
			if err := json.Unmarshal(profile, c.Profile); err != nil {
				return c, fmt.Errorf("can't parse stored profile: %w", err)
			}
		}
		return c, nil
	})

	switch {
	case err == nil:
		return cred, nil
	case errors.Is(err, pgx.ErrNoRows):
		return cred, apperrors.ErrNoCredential
	default:
		return cred, fmt.Errorf("db error: %w", err)
	}
}

const saveCredential = `-- name: SaveCredential
INSERT INTO credentials (name, access_token, refresh_token, profile, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (name) DO UPDATE
SET access_token  = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    profile       = EXCLUDED.profile,
    updated_at    = now()
`

func (s *PostgresStore) Save(ctx context.Context, cred Credential) error {
	var profile []byte
	if cred.Profile != nil {
		var err error
		profile, err = json.Marshal(cred.Profile)
		if err != nil {
			return fmt.Errorf("can't encode profile: %w", err)
		}
	}

	_, err := s.DB.Exec(ctx, saveCredential, s.Name, cred.AccessToken, cred.RefreshToken, profile)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const clearCredential = `-- name: ClearCredential
DELETE FROM credentials
WHERE name = $1
`

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, clearCredential, s.Name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
