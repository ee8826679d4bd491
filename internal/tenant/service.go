package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcusvale/bidforge/internal/database"
	"github.com/marcusvale/bidforge/internal/models"
)

// ErrNotFound means no live tenant matched the given identity. Callers treat
// it as fatal to the operation; it is never retried.
var ErrNotFound = errors.New("tenant not found")

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const tenantCols = "id, name, domain, plan_level, created_at, updated_at, deleted_at"

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Domain, &t.PlanLevel, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return scanTenant(s.db.QueryRow(ctx,
		"SELECT "+tenantCols+" FROM tenants WHERE id = $1 AND deleted_at IS NULL", id))
}

func (s *Service) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return scanTenant(s.db.QueryRow(ctx,
		"SELECT "+tenantCols+" FROM tenants WHERE domain = $1 AND deleted_at IS NULL", domain))
}

// Resolve maps a user email to its tenant via the email's domain part.
// Returns ErrNotFound when no live tenant owns the domain.
func (s *Service) Resolve(ctx context.Context, email string) (*models.Tenant, error) {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return nil, fmt.Errorf("malformed email %q: %w", email, ErrNotFound)
	}
	return s.GetByDomain(ctx, strings.ToLower(email[at+1:]))
}

func (s *Service) Create(ctx context.Context, name, domain string) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`INSERT INTO tenants (name, domain) VALUES ($1, $2)
		 RETURNING `+tenantCols,
		name, strings.ToLower(domain)))
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

func (s *Service) CreateUser(ctx context.Context, tenantID uuid.UUID, email, fullName, role string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (tenant_id, email, full_name, role) VALUES ($1, $2, $3, $4)
		 RETURNING id, tenant_id, email, full_name, role, created_at`,
		tenantID, strings.ToLower(email), fullName, role,
	).Scan(&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT id, tenant_id, email, full_name, role, created_at FROM users WHERE email = $1",
		strings.ToLower(email),
	).Scan(&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Any reports whether at least one live tenant exists.
func (s *Service) Any(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM tenants WHERE deleted_at IS NULL)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tenants: %w", err)
	}
	return exists, nil
}

// Bootstrap ensures a tenant for the domain exists along with its admin user,
// creating both in one transaction when missing. Used by the seeder so the
// first import has somewhere to land.
func (s *Service) Bootstrap(ctx context.Context, name, domain, adminEmail string) (*models.Tenant, error) {
	if t, err := s.GetByDomain(ctx, domain); err == nil {
		return t, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var t *models.Tenant
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		t, err = scanTenant(tx.QueryRow(ctx,
			`INSERT INTO tenants (name, domain) VALUES ($1, $2)
			 RETURNING `+tenantCols,
			name, strings.ToLower(domain)))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO users (tenant_id, email, role) VALUES ($1, $2, $3)",
			t.ID, strings.ToLower(adminEmail), models.RoleTenantAdmin)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap tenant %q: %w", domain, err)
	}
	return t, nil
}
