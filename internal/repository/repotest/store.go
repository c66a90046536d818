// Package repotest provides an in-memory user store with the same nonce
// semantics as the Postgres repository, for use in tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/t-azam747/SecureRelief-sub003/internal/models"
	"github.com/t-azam747/SecureRelief-sub003/internal/repository"
)

// Store is safe for concurrent use. ConsumeNonce is a compare-and-clear
// under a single lock.
type Store struct {
	mu    sync.Mutex
	users map[string]models.User
}

func New() *Store {
	return &Store{users: make(map[string]models.User)}
}

// Put inserts or replaces a user without uniqueness checks.
func (m *Store) Put(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// Get returns the stored user, or the zero value.
func (m *Store) Get(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *Store) FindByWallet(_ context.Context, address string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.WalletAddress, address) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *Store) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *Store) Create(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
		if strings.EqualFold(u.WalletAddress, user.WalletAddress) {
			return repository.ErrWalletTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *Store) SetNonce(_ context.Context, id string, nonce *string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	u.Nonce = nonce
	if nonce != nil {
		now := time.Now()
		u.NonceIssuedAt = &now
	} else {
		u.NonceIssuedAt = nil
	}
	m.users[id] = u
	return u, nil
}

func (m *Store) ConsumeNonce(_ context.Context, id string, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Nonce == nil || *u.Nonce != nonce {
		return false, nil
	}
	u.Nonce = nil
	u.NonceIssuedAt = nil
	m.users[id] = u
	return true, nil
}

func (m *Store) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Status = status
	m.users[id] = u
	return nil
}
