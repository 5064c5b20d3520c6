package server_test

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/openpress/backend/template"
	"github.com/openpress/backend/user"
)

func recordNotFound() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound)
}

// userStore implements user.Store in memory. failWith, when set, makes
// every operation fail with that error.
type userStore struct {
	records  map[string]*user.User
	failWith error
}

func newUserStore() *userStore {
	return &userStore{records: map[string]*user.User{}}
}

func (m *userStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	record, ok := m.records[id]
	if !ok {
		return nil, recordNotFound()
	}
	clone := *record
	return &clone, nil
}

func (m *userStore) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, record := range m.records {
		if record.Email == email {
			clone := *record
			return &clone, nil
		}
	}
	return nil, recordNotFound()
}

func (m *userStore) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*user.User, 0, len(m.records))
	for _, record := range m.records {
		clone := *record
		out = append(out, &clone)
	}
	return out, nil
}

func (m *userStore) Create(ctx context.Context, record *user.User, criteria ...repository.InsertCriteria) (*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	clone := *record
	m.records[record.ID.String()] = &clone
	return record, nil
}

func (m *userStore) Update(ctx context.Context, record *user.User, criteria ...repository.UpdateCriteria) (*user.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.records[record.ID.String()]; !ok {
		return nil, recordNotFound()
	}
	clone := *record
	m.records[record.ID.String()] = &clone
	return record, nil
}

func (m *userStore) DeleteByID(ctx context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.records[id]; !ok {
		return recordNotFound()
	}
	delete(m.records, id)
	return nil
}

// templateStore implements template.Store in memory.
type templateStore struct {
	records map[string]*template.Template
}

func newTemplateStore() *templateStore {
	return &templateStore{records: map[string]*template.Template{}}
}

func (m *templateStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*template.Template, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, recordNotFound()
	}
	clone := *record
	return &clone, nil
}

func (m *templateStore) GetByName(ctx context.Context, name string, criteria ...repository.SelectCriteria) (*template.Template, error) {
	for _, record := range m.records {
		if record.Name == name {
			clone := *record
			return &clone, nil
		}
	}
	return nil, recordNotFound()
}

func (m *templateStore) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*template.Template, error) {
	out := make([]*template.Template, 0, len(m.records))
	for _, record := range m.records {
		clone := *record
		out = append(out, &clone)
	}
	return out, nil
}

func (m *templateStore) Create(ctx context.Context, record *template.Template, criteria ...repository.InsertCriteria) (*template.Template, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	clone := *record
	m.records[record.ID.String()] = &clone
	return record, nil
}

func (m *templateStore) Update(ctx context.Context, record *template.Template, criteria ...repository.UpdateCriteria) (*template.Template, error) {
	if _, ok := m.records[record.ID.String()]; !ok {
		return nil, recordNotFound()
	}
	clone := *record
	m.records[record.ID.String()] = &clone
	return record, nil
}

func (m *templateStore) DeleteByID(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return recordNotFound()
	}
	delete(m.records, id)
	return nil
}
