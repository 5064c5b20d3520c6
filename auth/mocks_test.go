package auth_test

import (
	"context"
	"sync"

	"github.com/openpress/backend/auth"
)

// stubIdentity implements auth.HashedIdentity for testing.
type stubIdentity struct {
	id    string
	email string
	name  string
	hash  string
}

func (s stubIdentity) ID() string           { return s.id }
func (s stubIdentity) Email() string        { return s.email }
func (s stubIdentity) Name() string         { return s.name }
func (s stubIdentity) PasswordHash() string { return s.hash }

// memoryStore implements auth.IdentityStore for testing. failWith, when
// set, makes every lookup fail with that error.
type memoryStore struct {
	mu       sync.RWMutex
	byEmail  map[string]stubIdentity
	byID     map[string]stubIdentity
	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byEmail: map[string]stubIdentity{},
		byID:    map[string]stubIdentity{},
	}
}

func (m *memoryStore) add(identity stubIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[identity.email] = identity
	m.byID[identity.id] = identity
}

func (m *memoryStore) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if identity, ok := m.byID[id]; ok {
		delete(m.byEmail, identity.email)
		delete(m.byID, id)
	}
}

func (m *memoryStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	identity, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	return identity, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	identity, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrIdentityNotFound
	}
	return identity, nil
}

func storeWithUser(t interface{ Fatalf(string, ...any) }, email, password string) (*memoryStore, stubIdentity) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	identity := stubIdentity{
		id:    "user-123",
		email: email,
		name:  "Test User",
		hash:  hash,
	}

	store := newMemoryStore()
	store.add(identity)

	return store, identity
}
