package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openpress/backend/auth"
	"github.com/openpress/backend/server"
)

// stubIdentity implements auth.HashedIdentity for controller tests.
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

// singleUserStore implements auth.IdentityStore around one account.
type singleUserStore struct {
	identity stubIdentity
}

func (s singleUserStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	if s.identity.email == email {
		return s.identity, nil
	}
	return nil, auth.ErrIdentityNotFound
}

func (s singleUserStore) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	if s.identity.id == id {
		return s.identity, nil
	}
	return nil, auth.ErrIdentityNotFound
}

func newAuthController(t *testing.T, password string) (*server.AuthController, stubIdentity) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	identity := stubIdentity{
		id:    "user-123",
		email: "user@example.com",
		name:  "Test User",
		hash:  hash,
	}

	store := singleUserStore{identity: identity}

	signing, err := auth.NewSymmetricSigning("test-secret", "HS256", "test-issuer", nil, time.Hour)
	require.NoError(t, err)

	tokens := auth.NewTokenService(signing, nil, nil)
	passwords := auth.NewPasswordStrategy(auth.NewCredentialValidator(store))

	return server.NewAuthController(passwords, tokens, nil), identity
}

func bindPayload[T any](ctx *router.MockContext, payload T) {
	ctx.On("Bind", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		target, ok := args.Get(0).(*T)
		if ok {
			*target = payload
		}
	})
}

func captureJSON(ctx *router.MockContext, status *int, body *any) {
	ctx.On("JSON", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*status = args.Int(0)
		*body = args.Get(1)
	})
}

func TestAuthController_Login(t *testing.T) {
	ctrl, _ := newAuthController(t, "correct-password")

	t.Run("valid credentials mint a token", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindPayload(ctx, server.LoginRequest{
			Email:    "user@example.com",
			Password: "correct-password",
		})

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Login(ctx))
		assert.Equal(t, router.StatusCreated, status)

		payload, ok := body.(map[string]string)
		require.True(t, ok)
		assert.NotEmpty(t, payload["access_token"])
	})

	t.Run("wrong password and unknown email are both 401", func(t *testing.T) {
		for _, tc := range []server.LoginRequest{
			{Email: "user@example.com", Password: "wrong-password"},
			{Email: "nobody@example.com", Password: "correct-password"},
		} {
			ctx := router.NewMockContext()
			ctx.On("Context").Return(context.Background())
			bindPayload(ctx, tc)

			var status int
			var body any
			captureJSON(ctx, &status, &body)

			require.NoError(t, ctrl.Login(ctx))
			assert.Equal(t, router.StatusUnauthorized, status)
		}
	})

	t.Run("invalid payload is a 400 with field errors", func(t *testing.T) {
		ctx := router.NewMockContext()
		bindPayload(ctx, server.LoginRequest{Email: "not-an-email"})

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Login(ctx))
		assert.Equal(t, router.StatusBadRequest, status)

		resp, ok := body.(server.ErrorResponse)
		require.True(t, ok)
		assert.Contains(t, resp.FieldErrors, "email")
		assert.Contains(t, resp.FieldErrors, "password")
	})
}

func TestAuthController_RememberMeAffectsExpiry(t *testing.T) {
	ctrl, _ := newAuthController(t, "correct-password")

	issue := func(rememberMe bool) string {
		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		bindPayload(ctx, server.LoginRequest{
			Email:      "user@example.com",
			Password:   "correct-password",
			RememberMe: rememberMe,
		})

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Login(ctx))
		require.Equal(t, router.StatusCreated, status)
		return body.(map[string]string)["access_token"]
	}

	short, err := ctrl.Tokens.Validate(issue(false))
	require.NoError(t, err)

	long, err := ctrl.Tokens.Validate(issue(true))
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(time.Hour), short.Expires(), 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(auth.RememberMeDuration), long.Expires(), 5*time.Second)
}

func TestAuthController_Profile(t *testing.T) {
	ctrl, identity := newAuthController(t, "correct-password")

	t.Run("returns the attached identity", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["identity"] = auth.Identity(identity)

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Profile(ctx))
		assert.Equal(t, router.StatusOK, status)

		payload, ok := body.(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "user-123", payload["id"])
		assert.Equal(t, "Test User", payload["name"])
		assert.Equal(t, "user@example.com", payload["email"])
	})

	t.Run("no identity means 401", func(t *testing.T) {
		ctx := router.NewMockContext()

		var status int
		var body any
		captureJSON(ctx, &status, &body)

		require.NoError(t, ctrl.Profile(ctx))
		assert.Equal(t, router.StatusUnauthorized, status)
	})
}

func TestAuthController_Revalidate(t *testing.T) {
	ctrl, _ := newAuthController(t, "correct-password")

	ctx := router.NewMockContext()

	var status int
	var body any
	captureJSON(ctx, &status, &body)

	require.NoError(t, ctrl.Revalidate(ctx))
	assert.Equal(t, router.StatusOK, status)
	assert.Equal(t, map[string]bool{"can_revalidate": true}, body)
}
