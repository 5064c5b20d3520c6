package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
)

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// AuthController serves login, profile, and token revalidation.
type AuthController struct {
	Logger     auth.Logger
	Passwords  *auth.PasswordStrategy
	Tokens     auth.TokenService
	ContextKey string
}

func NewAuthController(passwords *auth.PasswordStrategy, tokens auth.TokenService, logger auth.Logger) *AuthController {
	if logger == nil {
		logger = auth.DefaultLogger()
	}
	return &AuthController{
		Logger:     logger,
		Passwords:  passwords,
		Tokens:     tokens,
		ContextKey: "identity",
	}
}

// Login exchanges credentials for an access token. Bad credentials and
// unknown accounts are rejected identically.
func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return badRequest(ctx, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return renderError(ctx, err)
	}

	identity, err := a.Passwords.Resolve(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return unauthorized(ctx)
	}

	token, err := a.Tokens.Issue(ctx.Context(), identity, payload.RememberMe)
	if err != nil {
		a.Logger.Error("login token issue", "error", err)
		return renderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]string{
		"access_token": token,
	})
}

// Profile returns the authenticated account's public projection.
func (a *AuthController) Profile(ctx router.Context) error {
	identity, ok := auth.IdentityFromRouterContext(ctx, a.ContextKey)
	if !ok {
		return unauthorized(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"id":    identity.ID(),
		"name":  identity.Name(),
		"email": identity.Email(),
	})
}

// Revalidate reports whether the presented token still resolves to a
// live identity. Reaching this handler means the guard already said
// yes.
func (a *AuthController) Revalidate(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]bool{
		"can_revalidate": true,
	})
}
