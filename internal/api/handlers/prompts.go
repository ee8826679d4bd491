package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marcusvale/bidforge/internal/llm"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/tenant"
)

// PromptHandler exposes the versioned prompt store over HTTP. Prompts are
// addressed by name; versioning happens behind the write path.
type PromptHandler struct {
	mgr       *prompt.Manager
	completer llm.Completer // nil when no provider is configured
}

func NewPromptHandler(mgr *prompt.Manager, completer llm.Completer) *PromptHandler {
	return &PromptHandler{mgr: mgr, completer: completer}
}

// Save creates the prompt or appends a new version of it.
func (h *PromptHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req prompt.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.UserTemplate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and user_template required"})
		return
	}
	if u := tenant.UserFromContext(r.Context()); u != nil {
		req.CreatedBy = u.Email
	}

	version, err := h.mgr.Save(r.Context(), tenant.IDFromContext(r.Context()), req)
	if err != nil {
		writePromptError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"name": req.Name, "version": version})
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.mgr.ListActive(r.Context(), tenant.IDFromContext(r.Context()))
	if err != nil {
		writePromptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prompts": prompts, "count": len(prompts)})
}

func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.mgr.Get(r.Context(), tenant.IDFromContext(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		writePromptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PromptHandler) Versions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.mgr.ListVersions(r.Context(), tenant.IDFromContext(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		writePromptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions, "count": len(versions)})
}

func (h *PromptHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetVersion int `json:"target_version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetVersion < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_version required"})
		return
	}

	updatedBy := ""
	if u := tenant.UserFromContext(r.Context()); u != nil {
		updatedBy = u.Email
	}

	name := chi.URLParam(r, "name")
	version, err := h.mgr.Rollback(r.Context(), tenant.IDFromContext(r.Context()), name, req.TargetVersion, updatedBy)
	if err != nil {
		writePromptError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "version": version})
}

func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Delete(r.Context(), tenant.IDFromContext(r.Context()), chi.URLParam(r, "name")); err != nil {
		writePromptError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renderRequest struct {
	Variables map[string]string `json:"variables"`
	MaxTokens int               `json:"max_tokens,omitempty"`
}

func (h *PromptHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := chi.URLParam(r, "name")
	user, system, err := h.mgr.GetRendered(r.Context(), tenant.IDFromContext(r.Context()), name, req.Variables)
	if err != nil {
		writePromptError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user": user, "system": system})
}

// Preview renders the prompt and executes it against the configured LLM
// provider, returning the completion alongside the rendered text.
func (h *PromptHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.completer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no llm provider configured"})
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := chi.URLParam(r, "name")
	user, system, err := h.mgr.GetRendered(r.Context(), tenant.IDFromContext(r.Context()), name, req.Variables)
	if err != nil {
		writePromptError(w, err)
		return
	}

	completion, err := h.completer.Complete(r.Context(), llm.Request{
		System:    system,
		User:      user,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"user":       user,
		"system":     system,
		"completion": completion,
		"provider":   h.completer.Name(),
	})
}

func writePromptError(w http.ResponseWriter, err error) {
	var renderErr *prompt.RenderError
	switch {
	case errors.Is(err, prompt.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "prompt not found"})
	case errors.Is(err, prompt.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "concurrent update, retry"})
	case errors.As(err, &renderErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "missing template variables",
			"missing": renderErr.Missing,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
