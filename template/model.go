package template

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Template is a named block of renderable HTML with optional styling
// and editor state. Names are unique so callers can address templates
// symbolically.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:tpl"`
	ID            uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string          `bun:"name,notnull,unique" json:"name,omitempty"`
	HTML          string          `bun:"html,notnull" json:"html,omitempty"`
	CSS           string          `bun:"css,nullzero" json:"css,omitempty"`
	ProjectData   json.RawMessage `bun:"project_data,nullzero,type:jsonb" json:"project_data,omitempty"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time      `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (t *Template) GetID() string {
	return t.ID.String()
}
