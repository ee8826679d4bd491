package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcusvale/bidforge/internal/database"
	"github.com/marcusvale/bidforge/internal/metrics"
	"github.com/marcusvale/bidforge/internal/models"
)

// SaveRequest carries the payload for a new prompt version.
type SaveRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	SystemTemplate string `json:"system_template"`
	UserTemplate   string `json:"user_template"`
	CreatedBy      string `json:"-"`
}

// Store is the versioned, tenant-scoped prompt repository. Implementations
// guarantee that per (tenant, name) at most one non-deleted version is active
// and that version numbers are strictly increasing and never reused, even
// across soft-deletes.
type Store interface {
	GetActive(ctx context.Context, tenantID uuid.UUID, name string) (*models.Prompt, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Prompt, error)
	ListVersions(ctx context.Context, tenantID uuid.UUID, name string) ([]models.Prompt, error)
	Save(ctx context.Context, tenantID uuid.UUID, req SaveRequest) (int, error)
	Rollback(ctx context.Context, tenantID uuid.UUID, name string, targetVersion int, updatedBy string) (int, error)
	Delete(ctx context.Context, tenantID uuid.UUID, name string) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const promptCols = `id, tenant_id, name, description, system_template, user_template,
	version, is_active, created_by, created_at, updated_at, deleted_at`

func scanPrompt(row pgx.Row) (*models.Prompt, error) {
	var p models.Prompt
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.SystemTemplate,
		&p.UserTemplate, &p.Version, &p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan prompt: %w", err)
	}
	return &p, nil
}

func collectPrompts(rows pgx.Rows) ([]models.Prompt, error) {
	defer rows.Close()
	var out []models.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) GetActive(ctx context.Context, tenantID uuid.UUID, name string) (*models.Prompt, error) {
	p, err := scanPrompt(s.db.QueryRow(ctx,
		`SELECT `+promptCols+` FROM prompts
		 WHERE tenant_id = $1 AND name = $2 AND is_active AND deleted_at IS NULL`,
		tenantID, name))
	metrics.StoreOps.WithLabelValues("get_active", outcome(err)).Inc()
	return p, err
}

func (s *PGStore) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Prompt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+promptCols+` FROM prompts
		 WHERE tenant_id = $1 AND is_active AND deleted_at IS NULL
		 ORDER BY name`,
		tenantID)
	if err != nil {
		metrics.StoreOps.WithLabelValues("list_active", "error").Inc()
		return nil, fmt.Errorf("list active prompts: %w", err)
	}
	out, err := collectPrompts(rows)
	metrics.StoreOps.WithLabelValues("list_active", outcome(err)).Inc()
	return out, err
}

func (s *PGStore) ListVersions(ctx context.Context, tenantID uuid.UUID, name string) ([]models.Prompt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+promptCols+` FROM prompts
		 WHERE tenant_id = $1 AND name = $2 AND deleted_at IS NULL
		 ORDER BY version DESC`,
		tenantID, name)
	if err != nil {
		metrics.StoreOps.WithLabelValues("list_versions", "error").Inc()
		return nil, fmt.Errorf("list prompt versions: %w", err)
	}
	out, err := collectPrompts(rows)
	metrics.StoreOps.WithLabelValues("list_versions", outcome(err)).Inc()
	return out, err
}

// Save appends a new version of (tenant, name) and makes it the single
// active one. The whole sequence runs in one transaction: deactivate the
// current active row, compute the next version over every row ever written
// for the name (soft-deleted included, so numbers never repeat), insert.
// A writer that loses the race on the partial unique index retries once with
// a recomputed version before giving up with ErrConflict.
func (s *PGStore) Save(ctx context.Context, tenantID uuid.UUID, req SaveRequest) (int, error) {
	version, err := s.save(ctx, tenantID, req)
	if database.IsUniqueViolation(err, "") {
		version, err = s.save(ctx, tenantID, req)
		if database.IsUniqueViolation(err, "") {
			err = fmt.Errorf("save %q: %w", req.Name, ErrConflict)
		}
	}
	metrics.StoreOps.WithLabelValues("save", outcome(err)).Inc()
	return version, err
}

func (s *PGStore) save(ctx context.Context, tenantID uuid.UUID, req SaveRequest) (int, error) {
	var version int
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE prompts SET is_active = false, updated_at = now()
			 WHERE tenant_id = $1 AND name = $2 AND is_active AND deleted_at IS NULL`,
			tenantID, req.Name)
		if err != nil {
			return fmt.Errorf("deactivate current version: %w", err)
		}

		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM prompts
			 WHERE tenant_id = $1 AND name = $2`,
			tenantID, req.Name).Scan(&version)
		if err != nil {
			return fmt.Errorf("compute next version: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO prompts
			 (tenant_id, name, description, system_template, user_template, version, is_active, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, true, $7)`,
			tenantID, req.Name, req.Description, req.SystemTemplate, req.UserTemplate, version, req.CreatedBy)
		if err != nil {
			return fmt.Errorf("insert version %d: %w", version, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Rollback appends a new version whose payload is copied from targetVersion.
// The target row itself stays inactive; history remains append-only.
func (s *PGStore) Rollback(ctx context.Context, tenantID uuid.UUID, name string, targetVersion int, updatedBy string) (int, error) {
	target, err := scanPrompt(s.db.QueryRow(ctx,
		`SELECT `+promptCols+` FROM prompts
		 WHERE tenant_id = $1 AND name = $2 AND version = $3 AND deleted_at IS NULL`,
		tenantID, name, targetVersion))
	if err != nil {
		metrics.StoreOps.WithLabelValues("rollback", outcome(err)).Inc()
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("rollback %q to version %d: %w", name, targetVersion, ErrNotFound)
		}
		return 0, err
	}

	version, err := s.Save(ctx, tenantID, SaveRequest{
		Name:           name,
		Description:    target.Description,
		SystemTemplate: target.SystemTemplate,
		UserTemplate:   target.UserTemplate,
		CreatedBy:      updatedBy,
	})
	metrics.StoreOps.WithLabelValues("rollback", outcome(err)).Inc()
	return version, err
}

// Delete soft-deletes every live version of the name in one transaction and
// clears the active flag. Deleting a name with no live versions returns
// ErrNotFound; the rows are untouched, so the call is safe to repeat.
func (s *PGStore) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE prompts SET deleted_at = now(), is_active = false, updated_at = now()
			 WHERE tenant_id = $1 AND name = $2 AND deleted_at IS NULL`,
			tenantID, name)
		if err != nil {
			return fmt.Errorf("soft delete %q: %w", name, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	metrics.StoreOps.WithLabelValues("delete", outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
