package template

import (
	"context"
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/openpress/backend/auth"
)

// Store is the narrow persistence surface the service depends on.
type Store interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Template, error)
	GetByName(ctx context.Context, name string, criteria ...repository.SelectCriteria) (*Template, error)
	ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Template, error)
	Create(ctx context.Context, record *Template, criteria ...repository.InsertCriteria) (*Template, error)
	Update(ctx context.Context, record *Template, criteria ...repository.UpdateCriteria) (*Template, error)
	DeleteByID(ctx context.Context, id string) error
}

type CreateInput struct {
	Name        string          `json:"name"`
	HTML        string          `json:"html"`
	CSS         string          `json:"css"`
	ProjectData json.RawMessage `json:"project_data"`
}

// Validate implements validation.Validatable
func (i CreateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.HTML, validation.Required),
	)
}

type UpdateInput struct {
	Name        *string         `json:"name"`
	HTML        *string         `json:"html"`
	CSS         *string         `json:"css"`
	ProjectData json.RawMessage `json:"project_data"`
}

// Validate implements validation.Validatable
func (i UpdateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.NilOrNotEmpty),
		validation.Field(&i.HTML, validation.NilOrNotEmpty),
	)
}

// Service implements template management with name uniqueness enforced
// as a conflict error.
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

func (s *Service) Create(ctx context.Context, input CreateInput) (*Template, error) {
	name := strings.TrimSpace(input.Name)

	if existing, err := s.store.GetByName(ctx, name); err == nil && existing != nil {
		return nil, duplicateName(name)
	} else if err != nil && !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check name uniqueness")
	}

	created, err := s.store.Create(ctx, &Template{
		Name:        name,
		HTML:        input.HTML,
		CSS:         input.CSS,
		ProjectData: input.ProjectData,
	})
	if err != nil {
		// Only the driver's constraint failure from a racing insert is a
		// conflict; everything else is an internal failure.
		if isUniqueViolation(err) {
			return nil, duplicateName(name)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create template")
	}

	s.logger.Info("template created", "id", created.GetID(), "name", created.Name)

	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Template, error) {
	record, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != record.Name {
			if existing, err := s.store.GetByName(ctx, name); err == nil && existing != nil {
				return nil, duplicateName(name)
			} else if err != nil && !goerrors.IsNotFound(err) {
				return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check name uniqueness")
			}
		}
		record.Name = name
	}

	if input.HTML != nil {
		record.HTML = *input.HTML
	}

	if input.CSS != nil {
		record.CSS = *input.CSS
	}

	if len(input.ProjectData) > 0 {
		record.ProjectData = input.ProjectData
	}

	updated, err := s.store.Update(ctx, record, repository.UpdateByID(record.GetID()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update template")
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return notFound(id)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete template")
	}
	return nil
}

func (s *Service) Find(ctx context.Context, id string) (*Template, error) {
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, notFound(id)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not fetch template")
	}
	return record, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (*Template, error) {
	record, err := s.store.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, notFound(name)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not fetch template")
	}
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]*Template, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not list templates")
	}
	return records, nil
}

func duplicateName(name string) error {
	return goerrors.New("template name already in use", goerrors.CategoryConflict).
		WithTextCode("DUPLICATE_NAME").
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"name": name})
}

func notFound(identifier string) error {
	return goerrors.New("template not found", goerrors.CategoryNotFound).
		WithTextCode("TEMPLATE_NOT_FOUND").
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{"identifier": identifier})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
