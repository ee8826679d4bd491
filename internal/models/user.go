package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleTenantAdmin  = "TENANT_ADMIN"
	RoleStandardUser = "STANDARD_USER"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name,omitempty" db:"full_name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
