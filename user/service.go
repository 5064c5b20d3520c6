package user

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/openpress/backend/auth"
)

// Store is the narrow persistence surface the service depends on. The
// bun backed Users repository satisfies it; tests swap in a memory
// implementation.
type Store interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error)
	DeleteByID(ctx context.Context, id string) error
}

// CreateInput is the payload to register a new account.
type CreateInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable
func (i CreateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Email, validation.Required, is.Email),
		validation.Field(&i.Password, validation.Required, validation.Length(8, 0)),
	)
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Validate implements validation.Validatable
func (i UpdateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.NilOrNotEmpty),
		validation.Field(&i.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&i.Password, validation.NilOrNotEmpty, validation.Length(8, 0)),
	)
}

// Service implements account management on top of a Store. Passwords
// are hashed before they reach the store, and email uniqueness is
// enforced with a conflict error rather than a driver failure.
type Service struct {
	store  Store
	logger auth.Logger
}

func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: auth.DefaultLogger(),
	}
}

func (s *Service) WithLogger(logger auth.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	email := normalizeEmail(input.Email)

	if existing, err := s.store.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, duplicateEmail(email)
	} else if err != nil && !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	record := &User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
	}

	// Deterministic id from the email keeps re-registrations of the
	// same address colliding at the primary key as well.
	if id, err := hashid.NewUUID(email); err == nil {
		record.ID = id
	}

	created, err := s.store.Create(ctx, record)
	if err != nil {
		// The uniqueness pre-check can race another insert; only the
		// driver's constraint failure is a conflict, everything else is
		// an internal failure.
		if isUniqueViolation(err) {
			return nil, duplicateEmail(email)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	s.logger.Info("user created", "id", created.GetID(), "email", created.Email)

	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	record, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != record.Email {
			if existing, err := s.store.GetByEmail(ctx, email); err == nil && existing != nil {
				return nil, duplicateEmail(email)
			} else if err != nil && !goerrors.IsNotFound(err) {
				return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
			}
		}
		record.Email = email
	}

	if input.Name != nil {
		record.Name = strings.TrimSpace(*input.Name)
	}

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}
		record.PasswordHash = hash
	}

	updated, err := s.store.Update(ctx, record, repository.UpdateByID(record.GetID()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return notFound(id)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
	}
	return nil
}

func (s *Service) Find(ctx context.Context, id string) (*User, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, notFound(id)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not fetch user")
	}
	return record, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	record, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, notFound(email)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not fetch user")
	}
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not list users")
	}
	return records, nil
}

func notFound(identifier string) error {
	return goerrors.New("user not found", goerrors.CategoryNotFound).
		WithTextCode("USER_NOT_FOUND").
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{"identifier": identifier})
}

func duplicateEmail(email string) error {
	return goerrors.New("email already in use", goerrors.CategoryConflict).
		WithTextCode("DUPLICATE_EMAIL").
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"email": email})
}

// isUniqueViolation matches the driver error raised when an insert
// slips past the pre-insert uniqueness check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
