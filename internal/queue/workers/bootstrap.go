package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/marcusvale/bidforge/internal/importer"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/queue"
	"github.com/marcusvale/bidforge/internal/tenant"
)

// BootstrapWorker handles tenant:bootstrap tasks: ensure the tenant and its
// admin user exist, then import the flat-file prompts for it.
type BootstrapWorker struct {
	tenants    *tenant.Service
	store      prompt.Store
	promptsDir string
}

func NewBootstrapWorker(tenants *tenant.Service, store prompt.Store, promptsDir string) *BootstrapWorker {
	return &BootstrapWorker{tenants: tenants, store: store, promptsDir: promptsDir}
}

func (w *BootstrapWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TenantBootstrapPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal tenant:bootstrap payload: %w", err)
	}

	ten, err := w.tenants.Bootstrap(ctx, payload.TenantName, payload.Domain, payload.AdminEmail)
	if err != nil {
		return err
	}

	res, err := importer.New(w.store, w.promptsDir).Run(ctx, ten.ID)
	if err != nil {
		return fmt.Errorf("import prompts for tenant %s: %w", ten.ID, err)
	}

	slog.Info("tenant bootstrap complete",
		"tenant_id", ten.ID, "domain", ten.Domain,
		"migrated", res.Migrated, "skipped", res.Skipped, "invalid", res.Invalid)
	return nil
}
