package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record. The password hash never leaves the
// persistence boundary in JSON form.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// GetID returns the stable identifier as a string, the form token
// subjects are minted in.
func (u *User) GetID() string {
	return u.ID.String()
}

// Public returns the profile projection exposed over HTTP.
func (u *User) Public() map[string]any {
	return map[string]any{
		"id":    u.ID.String(),
		"name":  u.Name,
		"email": u.Email,
	}
}
