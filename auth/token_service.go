package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// RememberMeDuration is the fixed long-lived expiry applied when a
// login asks for an extended session. It overrides the configured
// default; this is the only place expiry policy branches.
const RememberMeDuration = 30 * 24 * time.Hour

// tokenService mints and validates tokens against one resolved signing
// configuration. It holds no per-request state and is safe for
// concurrent use.
type tokenService struct {
	signing  *SigningConfig
	notifier *Notifier
	logger   Logger
	now      func() time.Time
}

// NewTokenService creates a TokenService bound to the given signing
// configuration.
func NewTokenService(signing *SigningConfig, notifier *Notifier, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &tokenService{
		signing:  signing,
		notifier: normalizeNotifier(notifier),
		logger:   logger,
		now:      time.Now,
	}
}

// Issue mints a signed token whose subject is the identity's stable id.
// No other identity details are embedded; verification re-resolves the
// subject through the store.
func (ts *tokenService) Issue(ctx context.Context, identity Identity, rememberMe bool) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryInternal)
	}

	expiry := ts.signing.DefaultExpiry()
	if rememberMe {
		expiry = RememberMeDuration
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.signing.Issuer(),
			Subject:   identity.ID(),
			Audience:  ts.signing.Audience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(ts.signing.Method(), claims)

	signedString, err := token.SignedString(ts.signing.SignKey())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	ts.notifier.Publish(ctx, UserLoggedInEvent{
		Subject:   identity.ID(),
		Token:     signedString,
		ExpiresAt: claims.ExpiresAt.Time,
	})

	return signedString, nil
}

// Validate parses and validates a token string, returning structured
// claims. Success depends only on signature, expiry, and issuer and
// audience match against the signing configuration; no external lookup.
func (ts *tokenService) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if iss := ts.signing.Issuer(); iss != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(iss))
	}
	if aud := ts.signing.Audience(); len(aud) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(aud...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != ts.signing.Method().Alg() {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signing.VerifyKey(), nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
