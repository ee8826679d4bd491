package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marcusvale/bidforge/internal/queue"
)

type AdminHandler struct {
	queue *queue.Client
}

func NewAdminHandler(q *queue.Client) *AdminHandler {
	return &AdminHandler{queue: q}
}

// Bootstrap enqueues tenant creation plus the flat-file prompt import for a
// new customer domain. The worker does the actual writes.
func (h *AdminHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	var req queue.TenantBootstrapPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Domain == "" || req.AdminEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "domain and admin_email required"})
		return
	}
	if req.TenantName == "" {
		req.TenantName = req.Domain
	}

	if err := h.queue.EnqueueTenantBootstrap(req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "domain": req.Domain})
}
