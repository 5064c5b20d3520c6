package user

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/openpress/backend/auth"
)

// identity adapts a user record to the auth package's identity
// contracts without leaking the model type into the auth core.
type identity struct {
	record *User
}

var _ auth.HashedIdentity = identity{}

func (i identity) ID() string           { return i.record.GetID() }
func (i identity) Email() string        { return i.record.Email }
func (i identity) Name() string         { return i.record.Name }
func (i identity) PasswordHash() string { return i.record.PasswordHash }

// IdentityStore exposes the user repository through the contract the
// credential validator and token strategy consume.
type IdentityStore struct {
	store Store
}

var _ auth.IdentityStore = (*IdentityStore)(nil)

func NewIdentityStore(store Store) *IdentityStore {
	return &IdentityStore{store: store}
}

func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	record, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, mapStoreError(err, email)
	}
	return identity{record: record}, nil
}

func (s *IdentityStore) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	return identity{record: record}, nil
}

func mapStoreError(err error, identifier string) error {
	if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, auth.ErrIdentityNotFound.Category, auth.ErrIdentityNotFound.Message).
			WithTextCode(auth.ErrIdentityNotFound.TextCode).
			WithMetadata(map[string]any{"identifier": identifier})
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "identity lookup failed")
}
