package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pickmart/pickmart-go/internal/apperrors"
)

// FileStore persists the credential set as a JSON file with 0600 permissions.
// Writes go through a temp file in the same directory followed by a rename,
// so a reader sees either the old set or the new one, never a torn write.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (Credential, error) {
	var cred Credential

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cred, apperrors.ErrNoCredential
	case err != nil:
		return cred, fmt.Errorf("can't read credential file: %w", err)
	}

	if err := json.Unmarshal(data, &cred); err != nil {
		return cred, fmt.Errorf("can't parse credential file: %w", err)
	}

	if cred.Empty() {
		return cred, apperrors.ErrNoCredential
	}
	return cred, nil
}

func (s *FileStore) Save(_ context.Context, cred Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("can't encode credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("can't create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("can't create temp credential file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("can't chmod credential file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("can't write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("can't close credential file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("can't replace credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("can't remove credential file: %w", err)
	}
	return nil
}
