package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/models"
)

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldProfile      = "profile"
)

// RedisStore keeps the credential set in a single Redis hash. All three
// slots are written with one HSET and removed with one DEL, so the set
// stays consistent for concurrent readers.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

// NewRedisStore creates a store using the given client. The key names the
// credential set, e.g. "pickmart:credentials:default"; hosts that manage
// sessions for several users pick distinct keys.
func NewRedisStore(rdb redis.Cmdable, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Credential, error) {
	var cred Credential

	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return cred, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return cred, apperrors.ErrNoCredential
	}

	cred.AccessToken = fields[fieldAccessToken]
	cred.RefreshToken = fields[fieldRefreshToken]

	if raw, ok := fields[fieldProfile]; ok && raw != "" {
		var profile models.Profile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			return cred, fmt.Errorf("can't parse stored profile: %w", err)
		}
		cred.Profile = &profile
	}

	return cred, nil
}

func (s *RedisStore) Save(ctx context.Context, cred Credential) error {
	var profile string
	if cred.Profile != nil {
		data, err := json.Marshal(cred.Profile)
		if err != nil {
			return fmt.Errorf("can't encode profile: %w", err)
		}
		profile = string(data)
	}

	err := s.rdb.HSet(ctx, s.key,
		fieldAccessToken, cred.AccessToken,
		fieldRefreshToken, cred.RefreshToken,
		fieldProfile, profile,
	).Err()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
