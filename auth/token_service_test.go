package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/openpress/backend/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symmetricService(t *testing.T, expiry time.Duration) auth.TokenService {
	t.Helper()

	signing, err := auth.NewSymmetricSigning("test-signing-key", "HS256", "test-issuer", []string{"test-audience"}, expiry)
	require.NoError(t, err)

	return auth.NewTokenService(signing, nil, nil)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	service := symmetricService(t, time.Hour)
	identity := stubIdentity{id: "user-123", email: "user@example.com", name: "Test User"}

	token, err := service.Issue(context.Background(), identity, false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), 5*time.Second)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), 5*time.Second)
}

func TestTokenService_IssueRejectsNilIdentity(t *testing.T) {
	service := symmetricService(t, time.Hour)

	_, err := service.Issue(context.Background(), nil, false)
	assert.Error(t, err)
}

func TestTokenService_RememberMeExtendsExpiry(t *testing.T) {
	service := symmetricService(t, time.Hour)
	identity := stubIdentity{id: "user-123"}

	token, err := service.Issue(context.Background(), identity, true)
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(auth.RememberMeDuration), claims.Expires(), 5*time.Second)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	service := symmetricService(t, -time.Hour)
	identity := stubIdentity{id: "user-123"}

	token, err := service.Issue(context.Background(), identity, false)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	service := symmetricService(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := service.Validate(token)
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	service := symmetricService(t, time.Hour)

	otherSigning, err := auth.NewSymmetricSigning("other-secret", "HS256", "test-issuer", []string{"test-audience"}, time.Hour)
	require.NoError(t, err)
	other := auth.NewTokenService(otherSigning, nil, nil)

	token, err := other.Issue(context.Background(), stubIdentity{id: "user-123"}, false)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenService_RejectsIssuerMismatch(t *testing.T) {
	signing, err := auth.NewSymmetricSigning("test-signing-key", "HS256", "other-issuer", []string{"test-audience"}, time.Hour)
	require.NoError(t, err)
	other := auth.NewTokenService(signing, nil, nil)

	token, err := other.Issue(context.Background(), stubIdentity{id: "user-123"}, false)
	require.NoError(t, err)

	service := symmetricService(t, time.Hour)
	_, err = service.Validate(token)
	assert.Error(t, err)
}

// A token minted under one signing shape must not validate under the
// other, even within the same process lifetime.
func TestTokenService_CrossShapeRejection(t *testing.T) {
	privatePEM, publicPEM := generateEdDSAKeyPair(t)

	asymSigning, err := auth.NewAsymmetricSigning(privatePEM, publicPEM, "EdDSA", "test-issuer", []string{"test-audience"}, time.Hour)
	require.NoError(t, err)

	asymmetric := auth.NewTokenService(asymSigning, nil, nil)
	symmetric := symmetricService(t, time.Hour)

	identity := stubIdentity{id: "user-123"}

	asymToken, err := asymmetric.Issue(context.Background(), identity, false)
	require.NoError(t, err)

	symToken, err := symmetric.Issue(context.Background(), identity, false)
	require.NoError(t, err)

	_, err = symmetric.Validate(asymToken)
	assert.Error(t, err)

	_, err = asymmetric.Validate(symToken)
	assert.Error(t, err)

	// Both still validate their own output.
	_, err = asymmetric.Validate(asymToken)
	assert.NoError(t, err)

	_, err = symmetric.Validate(symToken)
	assert.NoError(t, err)
}

func TestTokenService_PublishesLoggedInEvent(t *testing.T) {
	signing, err := auth.NewSymmetricSigning("test-signing-key", "HS256", "test-issuer", nil, time.Hour)
	require.NoError(t, err)

	notifier := auth.NewNotifier()
	var captured auth.UserLoggedInEvent
	notifier.Subscribe(auth.EventUserLoggedIn, func(ctx context.Context, evt auth.Event) {
		if login, ok := evt.(auth.UserLoggedInEvent); ok {
			captured = login
		}
	})

	service := auth.NewTokenService(signing, notifier, nil)

	token, err := service.Issue(context.Background(), stubIdentity{id: "user-123"}, false)
	require.NoError(t, err)

	assert.Equal(t, "user-123", captured.Subject)
	assert.Equal(t, token, captured.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), captured.ExpiresAt, 5*time.Second)
}
