package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// PasswordStrategy resolves an email/password pair to an identity. It
// backs the login endpoint: on success the caller hands the identity to
// the token service.
type PasswordStrategy struct {
	validator *CredentialValidator
}

// NewPasswordStrategy wraps a credential validator.
func NewPasswordStrategy(validator *CredentialValidator) *PasswordStrategy {
	return &PasswordStrategy{validator: validator}
}

// Resolve maps the validator's absent-identity sentinel to the uniform
// unauthenticated rejection.
func (s *PasswordStrategy) Resolve(ctx context.Context, email, password string) (Identity, error) {
	identity := s.validator.Validate(ctx, email, password)
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// TokenStrategy resolves a bearer token to a live identity. The token's
// subject is re-fetched from the store on every call so that a deleted
// or mutated account is reflected immediately; a signature-valid token
// whose subject no longer exists is rejected.
type TokenStrategy struct {
	tokens TokenValidator
	store  IdentityStore
	logger Logger
}

// NewTokenStrategy wires a token validator with the identity store.
func NewTokenStrategy(tokens TokenValidator, store IdentityStore) *TokenStrategy {
	return &TokenStrategy{
		tokens: tokens,
		store:  store,
		logger: defLogger{},
	}
}

func (s *TokenStrategy) WithLogger(logger Logger) *TokenStrategy {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Resolve validates the raw token and re-resolves its subject. Every
// failure mode, malformed, expired, wrong signing shape, or unknown
// subject, surfaces as the same unauthenticated rejection.
func (s *TokenStrategy) Resolve(ctx context.Context, rawToken string) (Identity, error) {
	claims, err := s.tokens.Validate(rawToken)
	if err != nil {
		s.logger.Debug("token validation failed", "error", err)
		return nil, ErrUnauthenticated
	}

	identity, err := s.store.FindByID(ctx, claims.Subject())
	if err != nil {
		if !goerrors.IsNotFound(err) {
			s.logger.Error("identity lookup failed during token resolution", "error", err)
		}
		return nil, ErrUnauthenticated
	}

	if identity == nil {
		return nil, ErrUnauthenticated
	}

	return identity, nil
}
