package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// SigningMode names the two mutually exclusive signing configurations.
type SigningMode string

const (
	// SigningModeSymmetric uses one shared secret to sign and verify.
	SigningModeSymmetric SigningMode = "symmetric"
	// SigningModeAsymmetric signs with a private key and verifies with
	// the matching public key.
	SigningModeAsymmetric SigningMode = "asymmetric"
)

// SigningConfig is the process-wide token signing configuration,
// resolved once at startup and immutable afterwards. Exactly one mode
// is active per process; token services take the resolved config as a
// constructor dependency instead of branching per call.
type SigningConfig struct {
	mode          SigningMode
	method        jwt.SigningMethod
	signKey       any
	verifyKey     any
	issuer        string
	audience      []string
	defaultExpiry time.Duration
}

// NewSymmetricSigning resolves a shared-secret configuration. Only HMAC
// algorithms are valid for this shape.
func NewSymmetricSigning(secret, algorithm, issuer string, audience []string, defaultExpiry time.Duration) (*SigningConfig, error) {
	if secret == "" {
		return nil, goerrors.New("symmetric signing requires a secret", goerrors.CategoryOperation).
			WithTextCode("SIGNING_MISCONFIGURED")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, unknownAlgorithm(algorithm)
	}

	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, goerrors.New("symmetric signing requires an HMAC algorithm", goerrors.CategoryOperation).
			WithTextCode("SIGNING_MISCONFIGURED").
			WithMetadata(map[string]any{"algorithm": algorithm})
	}

	key := []byte(secret)

	return &SigningConfig{
		mode:          SigningModeSymmetric,
		method:        method,
		signKey:       key,
		verifyKey:     key,
		issuer:        issuer,
		audience:      append([]string(nil), audience...),
		defaultExpiry: defaultExpiry,
	}, nil
}

// NewAsymmetricSigning resolves a key-pair configuration from PEM
// encoded material. The algorithm selects the expected key type.
func NewAsymmetricSigning(privatePEM, publicPEM []byte, algorithm, issuer string, audience []string, defaultExpiry time.Duration) (*SigningConfig, error) {
	if len(privatePEM) == 0 || len(publicPEM) == 0 {
		return nil, goerrors.New("asymmetric signing requires both private and public keys", goerrors.CategoryOperation).
			WithTextCode("SIGNING_MISCONFIGURED")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, unknownAlgorithm(algorithm)
	}

	signKey, verifyKey, err := parseKeyPair(privatePEM, publicPEM, algorithm)
	if err != nil {
		return nil, err
	}

	return &SigningConfig{
		mode:          SigningModeAsymmetric,
		method:        method,
		signKey:       signKey,
		verifyKey:     verifyKey,
		issuer:        issuer,
		audience:      append([]string(nil), audience...),
		defaultExpiry: defaultExpiry,
	}, nil
}

// Mode reports which shape is active.
func (c *SigningConfig) Mode() SigningMode { return c.mode }

// Method returns the resolved jwt signing method.
func (c *SigningConfig) Method() jwt.SigningMethod { return c.method }

// SignKey returns the key used to sign tokens.
func (c *SigningConfig) SignKey() any { return c.signKey }

// VerifyKey returns the key used to verify token signatures.
func (c *SigningConfig) VerifyKey() any { return c.verifyKey }

// Issuer returns the iss claim stamped on minted tokens.
func (c *SigningConfig) Issuer() string { return c.issuer }

// Audience returns a copy of the aud claim values.
func (c *SigningConfig) Audience() []string {
	return append([]string(nil), c.audience...)
}

// DefaultExpiry is the token lifetime used when no override applies.
func (c *SigningConfig) DefaultExpiry() time.Duration { return c.defaultExpiry }

func parseKeyPair(privatePEM, publicPEM []byte, algorithm string) (any, any, error) {
	switch {
	case strings.HasPrefix(algorithm, "RS"), strings.HasPrefix(algorithm, "PS"):
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("private", err)
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("public", err)
		}
		return priv, pub, nil
	case strings.HasPrefix(algorithm, "ES"):
		priv, err := jwt.ParseECPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("private", err)
		}
		pub, err := jwt.ParseECPublicKeyFromPEM(publicPEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("public", err)
		}
		return priv, pub, nil
	case algorithm == "EdDSA":
		priv, err := jwt.ParseEdPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("private", err)
		}
		pub, err := jwt.ParseEdPublicKeyFromPEM(publicPEM)
		if err != nil {
			return nil, nil, invalidKeyMaterial("public", err)
		}
		return priv, pub, nil
	default:
		return nil, nil, unknownAlgorithm(algorithm)
	}
}

func unknownAlgorithm(algorithm string) error {
	return goerrors.New("unknown or unsupported signing algorithm", goerrors.CategoryOperation).
		WithTextCode("SIGNING_MISCONFIGURED").
		WithMetadata(map[string]any{"algorithm": algorithm})
}

func invalidKeyMaterial(kind string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid "+kind+" key material").
		WithTextCode("SIGNING_MISCONFIGURED")
}
