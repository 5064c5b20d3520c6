package auth

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the auth core depends on. Calls
// pass a message followed by alternating key/value pairs. The hosting
// process usually plugs in a structured logger; defLogger keeps the
// package usable without one.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated principal.
type Identity interface {
	ID() string
	Email() string
	Name() string
}

// HashedIdentity is implemented by store-backed identities that carry
// the password hash needed for credential verification. The hash never
// leaves the validation path.
type HashedIdentity interface {
	Identity
	PasswordHash() string
}

// IdentityStore is the narrow contract the core needs from the user
// persistence layer. Absent records surface as not-found categorized
// errors; the store owns email uniqueness.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (Identity, error)
	FindByID(ctx context.Context, id string) (Identity, error)
}

// TokenValidator validates tokens and extracts claims without tying
// callers to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// TokenService mints and validates access tokens for identities.
type TokenService interface {
	TokenValidator
	Issue(ctx context.Context, identity Identity, rememberMe bool) (string, error)
}

// DefaultLogger returns the fallback logger used when a component is
// built without one.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	d.print("[ERR]", msg, args...)
}

func (d defLogger) Warn(msg string, args ...any) {
	d.print("[WRN]", msg, args...)
}

func (d defLogger) Info(msg string, args ...any) {
	d.print("[INF]", msg, args...)
}

func (d defLogger) Debug(msg string, args ...any) {
	d.print("[DBG]", msg, args...)
}

func (d defLogger) print(level, msg string, args ...any) {
	if len(args) == 0 {
		fmt.Printf("%s AUTH %s\n", level, msg)
		return
	}
	fmt.Printf("%s AUTH %s %v\n", level, msg, args)
}
