package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcusvale/bidforge/internal/models"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/tenant"
)

// stubStore serves a fixed active set; writes append in memory.
type stubStore struct {
	rows map[string]models.Prompt
}

func (s *stubStore) GetActive(ctx context.Context, tenantID uuid.UUID, name string) (*models.Prompt, error) {
	if p, ok := s.rows[name]; ok {
		return &p, nil
	}
	return nil, prompt.ErrNotFound
}

func (s *stubStore) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, p := range s.rows {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) ListVersions(ctx context.Context, tenantID uuid.UUID, name string) ([]models.Prompt, error) {
	if p, ok := s.rows[name]; ok {
		return []models.Prompt{p}, nil
	}
	return nil, nil
}

func (s *stubStore) Save(ctx context.Context, tenantID uuid.UUID, req prompt.SaveRequest) (int, error) {
	version := s.rows[req.Name].Version + 1
	s.rows[req.Name] = models.Prompt{
		TenantID:     tenantID,
		Name:         req.Name,
		UserTemplate: req.UserTemplate,
		Version:      version,
		IsActive:     true,
	}
	return version, nil
}

func (s *stubStore) Rollback(ctx context.Context, tenantID uuid.UUID, name string, targetVersion int, updatedBy string) (int, error) {
	return 0, prompt.ErrNotFound
}

func (s *stubStore) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	if _, ok := s.rows[name]; !ok {
		return prompt.ErrNotFound
	}
	delete(s.rows, name)
	return nil
}

func testRouter(store prompt.Store) http.Handler {
	h := NewPromptHandler(prompt.NewManager(store, nil), nil)
	ten := &models.Tenant{ID: uuid.New()}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := tenant.WithTenant(req.Context(), ten)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/prompts", h.Save)
	r.Get("/prompts/{name}", h.Get)
	r.Post("/prompts/{name}/render", h.Render)
	r.Delete("/prompts/{name}", h.Delete)
	return r
}

func TestPromptHandlerSaveAndGet(t *testing.T) {
	store := &stubStore{rows: map[string]models.Prompt{}}
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/prompts",
		strings.NewReader(`{"name":"extract","user_template":"body {x}"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts/extract", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got models.Prompt
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "extract" || got.Version != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestPromptHandlerSaveValidation(t *testing.T) {
	router := testRouter(&stubStore{rows: map[string]models.Prompt{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/prompts",
		strings.NewReader(`{"description":"no name or body"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPromptHandlerGetMissing(t *testing.T) {
	router := testRouter(&stubStore{rows: map[string]models.Prompt{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts/absent", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPromptHandlerRenderMissingVars(t *testing.T) {
	store := &stubStore{rows: map[string]models.Prompt{
		"quote": {Name: "quote", UserTemplate: "Dear {client_name}", Version: 1, IsActive: true},
	}}
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/prompts/quote/render",
		strings.NewReader(`{"variables":{}}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var body struct {
		Missing []string `json:"missing"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Missing) != 1 || body.Missing[0] != "client_name" {
		t.Errorf("missing = %v", body.Missing)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/prompts/quote/render",
		strings.NewReader(`{"variables":{"client_name":"Acme"}}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var ok struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&ok); err != nil {
		t.Fatal(err)
	}
	if ok.User != "Dear Acme" {
		t.Errorf("user = %q", ok.User)
	}
}
