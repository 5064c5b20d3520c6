package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeUnauthenticated = "UNAUTHENTICATED"
	textCodeTokenExpired    = "TOKEN_EXPIRED"
	textCodeTokenMalformed  = "TOKEN_MALFORMED"
)

// ErrUnauthenticated is the single rejection surfaced for every failed
// credential or token check. Callers must not be able to tell apart the
// underlying cause.
var ErrUnauthenticated = goerrors.New("unauthenticated", goerrors.CategoryAuth).
	WithTextCode(textCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is returned when an explicit lookup by id or email
// finds no record. During login this collapses into ErrUnauthenticated.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrTokenExpired marks tokens past their exp claim.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers every non-expiry token failure: bad encoding,
// wrong signing method, signature or audience/issuer mismatch.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the stable sentinel for a failed
// password comparison.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched password and hash", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before they reach the hasher.
var ErrNoEmptyString = goerrors.New("password can not be an empty string", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUnauthenticated reports whether err is the uniform rejection signal.
func IsUnauthenticated(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}
