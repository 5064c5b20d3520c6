package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// CredentialValidator checks an email/password pair against the
// identity store. It is the only component that sees both the plaintext
// password and the stored hash.
type CredentialValidator struct {
	store    IdentityStore
	notifier *Notifier
	logger   Logger
}

// NewCredentialValidator returns a validator backed by the given store.
func NewCredentialValidator(store IdentityStore) *CredentialValidator {
	return &CredentialValidator{
		store:    store,
		notifier: NewNotifier(),
		logger:   defLogger{},
	}
}

func (v *CredentialValidator) WithLogger(logger Logger) *CredentialValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

func (v *CredentialValidator) WithNotifier(n *Notifier) *CredentialValidator {
	v.notifier = normalizeNotifier(n)
	return v
}

// Notifier exposes the notifier so the hosting process can register
// listeners on the same fan-out the validator publishes to.
func (v *CredentialValidator) Notifier() *Notifier {
	return v.notifier
}

// Validate resolves the credentials to an identity, or nil when they do
// not check out. The nil sentinel is deliberate: lookups that miss,
// store read errors, and hash mismatches are indistinguishable at this
// boundary. The causal error rides only on the failure event.
func (v *CredentialValidator) Validate(ctx context.Context, email, password string) Identity {
	v.notifier.Publish(ctx, BeforeValidationEvent{Email: email, Password: password})

	identity, err := v.verify(ctx, email, password)
	if err != nil {
		// The submitted credentials stay out of the logs; listeners on
		// the failure event get the cause.
		v.logger.Debug("credential validation failed")
		v.notifier.Publish(ctx, ValidationFailureEvent{Err: err})
		return nil
	}

	v.notifier.Publish(ctx, ValidationSuccessEvent{Identity: identity})

	return identity
}

func (v *CredentialValidator) verify(ctx context.Context, email, password string) (Identity, error) {
	identity, err := v.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve identity during validation")
	}

	hashed, ok := identity.(HashedIdentity)
	if !ok {
		return nil, goerrors.New("identity store returned an identity without a password hash", goerrors.CategoryInternal)
	}

	if err := ComparePasswordAndHash(password, hashed.PasswordHash()); err != nil {
		return nil, err
	}

	return identity, nil
}
