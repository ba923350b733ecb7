package credentials

import (
	"context"
	"sync"

	"github.com/pickmart/pickmart-go/internal/apperrors"
)

// MemoryStore keeps the credential set in process memory. Suitable for tests
// and short-lived commands where persistence between runs is not wanted.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return Credential{}, apperrors.ErrNoCredential
	}
	return s.cred, nil
}

func (s *MemoryStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	s.cred = cred
	s.set = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.cred = Credential{}
	s.set = false
	s.mu.Unlock()
	return nil
}
