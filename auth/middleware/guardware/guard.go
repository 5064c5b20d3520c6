// Package guardware is the access guard: a router middleware evaluated
// for every inbound request. Routes explicitly marked public skip
// verification; everything else must present a bearer token that
// resolves to a live identity, or the request is rejected. The default
// is always to reject: a route that never opted in to public is
// guarded.
package guardware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
	"github.com/openpress/backend/auth"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization

	// ErrMissingOrMalformed covers an absent Authorization header and a
	// present-but-unparseable one alike. The two cases are rejected
	// identically on purpose.
	ErrMissingOrMalformed = errors.New("missing or malformed bearer credential")
)

// IdentityResolver is the verification capability the guard delegates
// to, normally an auth.TokenStrategy.
type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) (auth.Identity, error)
}

type Config struct {
	// Public marks a request as exempt from verification. It receives
	// the route flag as plain data from the routing layer; when it
	// returns true the guard attaches no identity and moves on.
	Public func(router.Context) bool

	// Resolver is required. Construction panics without one so a
	// misconfigured process cannot silently run unguarded.
	Resolver IdentityResolver

	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	// ContextKey is the locals key the resolved identity is stored
	// under. Defaults to "identity".
	ContextKey string

	// TokenLookup configures extraction sources in the form
	// "header:Authorization,cookie:token,query:access_token".
	TokenLookup string
	AuthScheme  string

	// ContextEnricher propagates the identity to the standard Go
	// context after a successful resolution. Optional; the server wires
	// auth.WithIdentity here.
	ContextEnricher func(ctx context.Context, identity auth.Identity) context.Context
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Public != nil && cfg.Public(ctx) {
				return ctx.Next()
			}

			raw, err := extractRawToken(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			identity, err := cfg.Resolver.Resolve(ctx.Context(), raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, identity)

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), identity)
				ctx.SetContext(stdCtx)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Resolver == nil {
		panic("GUARD: middleware configuration: IdentityResolver is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		// Uniform rejection: the response never reveals whether the
		// credential was absent, malformed, expired, or unresolvable.
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.Status(router.StatusUnauthorized).SendString("Unauthorized")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func extractRawToken(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// TokenExtractor pulls a raw credential out of a request, or fails with
// ErrMissingOrMalformed.
type TokenExtractor func(c router.Context) (string, error)

// GetExtractors parses a token lookup expression into extractors, tried
// in order until one yields a credential.
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:token,query:access_token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts the credential from
// the request header, stripping the auth scheme prefix.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		authScheme = strings.TrimSpace(authScheme)
		l := len(authScheme)
		if l == 0 {
			return "", ErrMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts the credential from
// the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the credential from
// the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrMissingOrMalformed
		}
		return token, nil
	}
}
