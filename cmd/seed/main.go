// Seed bootstraps the first tenant when none exists and imports the legacy
// flat-file prompt definitions into the versioned store. Re-running is safe:
// prompts that already have an active version are skipped.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/marcusvale/bidforge/internal/config"
	"github.com/marcusvale/bidforge/internal/database"
	"github.com/marcusvale/bidforge/internal/importer"
	"github.com/marcusvale/bidforge/internal/prompt"
	"github.com/marcusvale/bidforge/internal/tenant"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	tenants := tenant.NewService(db)
	store := prompt.NewPGStore(db)

	// The import needs somewhere to land; an empty tenants table is a setup
	// condition we resolve here, loudly, not a state to no-op through.
	ten, err := tenants.GetByDomain(ctx, cfg.Seed.TenantDomain)
	if errors.Is(err, tenant.ErrNotFound) {
		ten, err = tenants.Bootstrap(ctx, cfg.Seed.TenantName, cfg.Seed.TenantDomain, cfg.Seed.AdminEmail)
	}
	if err != nil {
		slog.Error("tenant bootstrap failed", "domain", cfg.Seed.TenantDomain, "error", err)
		os.Exit(1)
	}

	res, err := importer.New(store, cfg.Seed.PromptsDir).Run(ctx, ten.ID)
	if err != nil {
		slog.Error("prompt import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("prompt import complete",
		"tenant_id", ten.ID,
		"migrated", res.Migrated,
		"skipped", res.Skipped,
		"invalid", res.Invalid,
	)

	// Post-import listing, handy when verifying a fresh environment.
	active, err := store.ListActive(ctx, ten.ID)
	if err != nil {
		slog.Error("listing imported prompts failed", "error", err)
		os.Exit(1)
	}
	for _, p := range active {
		slog.Info("active prompt", "name", p.Name, "version", p.Version, "created_by", p.CreatedBy)
	}
}
