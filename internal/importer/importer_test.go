package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/marcusvale/bidforge/internal/models"
	"github.com/marcusvale/bidforge/internal/prompt"
)

// memStore records active prompts per (tenant, name), enough to observe what
// the importer writes and skips.
type memStore struct {
	active map[uuid.UUID]map[string]models.Prompt
	saves  int
}

func newMemStore() *memStore {
	return &memStore{active: make(map[uuid.UUID]map[string]models.Prompt)}
}

func (s *memStore) GetActive(ctx context.Context, tenantID uuid.UUID, name string) (*models.Prompt, error) {
	if p, ok := s.active[tenantID][name]; ok {
		return &p, nil
	}
	return nil, prompt.ErrNotFound
}

func (s *memStore) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, p := range s.active[tenantID] {
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) ListVersions(ctx context.Context, tenantID uuid.UUID, name string) ([]models.Prompt, error) {
	return nil, nil
}

func (s *memStore) Save(ctx context.Context, tenantID uuid.UUID, req prompt.SaveRequest) (int, error) {
	s.saves++
	if s.active[tenantID] == nil {
		s.active[tenantID] = make(map[string]models.Prompt)
	}
	version := s.active[tenantID][req.Name].Version + 1
	s.active[tenantID][req.Name] = models.Prompt{
		TenantID:       tenantID,
		Name:           req.Name,
		Description:    req.Description,
		SystemTemplate: req.SystemTemplate,
		UserTemplate:   req.UserTemplate,
		Version:        version,
		IsActive:       true,
		CreatedBy:      req.CreatedBy,
	}
	return version, nil
}

func (s *memStore) Rollback(ctx context.Context, tenantID uuid.UUID, name string, targetVersion int, updatedBy string) (int, error) {
	return 0, prompt.ErrNotFound
}

func (s *memStore) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	return prompt.ErrNotFound
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImporterRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extract.json",
		`{"name":"extract","description":"Item extraction","system_instruction":"You extract data.","user_prompt":"Extract items from {description}"}`)
	writeFile(t, dir, "proposal.json",
		`{"user_prompt":"Write a proposal for {client_name}"}`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "empty.json", `{"name":"empty"}`)
	writeFile(t, dir, "notes.txt", "ignored")

	store := newMemStore()
	tenantID := uuid.New()

	res, err := New(store, dir).Run(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Migrated != 2 || res.Skipped != 0 || res.Invalid != 2 {
		t.Errorf("result = %+v, want 2 migrated, 0 skipped, 2 invalid", res)
	}

	p, err := store.GetActive(context.Background(), tenantID, "extract")
	if err != nil {
		t.Fatalf("imported prompt missing: %v", err)
	}
	if p.SystemTemplate != "You extract data." || p.CreatedBy != Identity {
		t.Errorf("imported prompt = %+v", p)
	}

	// Nameless definitions take the file name.
	if _, err := store.GetActive(context.Background(), tenantID, "proposal"); err != nil {
		t.Errorf("file-named prompt missing: %v", err)
	}
}

func TestImporterIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extract.json", `{"name":"extract","user_prompt":"body"}`)

	store := newMemStore()
	tenantID := uuid.New()
	im := New(store, dir)

	if _, err := im.Run(context.Background(), tenantID); err != nil {
		t.Fatal(err)
	}
	res, err := im.Run(context.Background(), tenantID)
	if err != nil {
		t.Fatal(err)
	}

	if res.Migrated != 0 || res.Skipped != 1 {
		t.Errorf("second run = %+v, want everything skipped", res)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1 (never overwrites an active prompt)", store.saves)
	}
	if p, _ := store.GetActive(context.Background(), tenantID, "extract"); p.Version != 1 {
		t.Errorf("version after re-run = %d, want 1", p.Version)
	}
}

func TestImporterMissingDir(t *testing.T) {
	store := newMemStore()
	if _, err := New(store, filepath.Join(t.TempDir(), "absent")).Run(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for missing prompts directory")
	}
}
