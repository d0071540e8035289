// Package storage holds the durable slot for the current bearer token.
//
// The slot stores at most one token. Writes are unconditional overwrites; a
// missing token means there is no session to restore.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/saherflow/flowportal/internal/client/repositories/metadata"
	"github.com/saherflow/flowportal/internal/common"
)

// TokenStore is the durable token slot.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Save overwrites the stored token.
	Save(ctx context.Context, token string) error
	// Clear removes the stored token. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// SQLiteTokenStore keeps the token in the metadata table under
// common.AuthTokenKey.
type SQLiteTokenStore struct {
	repo metadata.Repository
}

func NewSQLiteTokenStore(repo metadata.Repository) *SQLiteTokenStore {
	return &SQLiteTokenStore{repo: repo}
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.repo.Get(ctx, common.AuthTokenKey)
	if errors.Is(err, metadata.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("save token: empty token")
	}
	if err := s.repo.Set(ctx, common.AuthTokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.AuthTokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token for the lifetime of the process only.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, token string) error {
	if token == "" {
		return errors.New("save token: empty token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
