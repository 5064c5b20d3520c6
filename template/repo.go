package template

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Templates is the persistence surface for template records.
type Templates interface {
	repository.Repository[*Template]

	GetByName(ctx context.Context, name string, criteria ...repository.SelectCriteria) (*Template, error)
	ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Template, error)
	DeleteByID(ctx context.Context, id string) error
}

type templates struct {
	repository.Repository[*Template]
	db *bun.DB
}

var _ Templates = (*templates)(nil)

func NewTemplatesRepository(db *bun.DB) Templates {
	repo := repository.NewRepository[*Template](db, repository.ModelHandlers[*Template]{
		NewRecord: func() *Template { return &Template{} },
		GetID: func(t *Template) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Template, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string { return "name" },
	})

	return &templates{
		Repository: repo,
		db:         db,
	}
}

func (r *templates) GetByName(ctx context.Context, name string, criteria ...repository.SelectCriteria) (*Template, error) {
	record := &Template{}
	q := r.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.name = ?", strings.TrimSpace(name)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *templates) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Template, error) {
	records := make([]*Template, 0)
	q := r.db.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	if err := q.Order("tpl.created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *templates) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*Template)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id,
			})
	}

	return nil
}
