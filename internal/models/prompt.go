package models

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is one version row of a named, tenant-scoped prompt template. Every
// write appends a new row; per (tenant_id, name) at most one non-deleted row
// has IsActive set.
type Prompt struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description,omitempty" db:"description"`
	SystemTemplate string     `json:"system_template,omitempty" db:"system_template"`
	UserTemplate   string     `json:"user_template" db:"user_template"`
	Version        int        `json:"version" db:"version"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
