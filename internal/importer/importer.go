// Package importer performs the one-shot migration of legacy flat-file
// prompt definitions into the versioned store. It is safe to re-run: names
// that already have an active prompt are skipped, never overwritten.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/marcusvale/bidforge/internal/prompt"
)

// Identity recorded as created_by on imported versions.
const Identity = "seed@bidforge.local"

// Definition is the legacy on-disk prompt format, one JSON object per file.
type Definition struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction"`
	UserPrompt        string `json:"user_prompt"`
}

// Result counts what a run did.
type Result struct {
	Migrated int
	Skipped  int
	Invalid  int
}

type Importer struct {
	store prompt.Store
	dir   string
}

func New(store prompt.Store, dir string) *Importer {
	return &Importer{store: store, dir: dir}
}

// Run imports every *.json definition under the directory into the store for
// the tenant. Files that fail to parse or lack a name/user_prompt are
// counted as invalid and logged, not fatal.
func (im *Importer) Run(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	var res Result

	defs, invalid, err := im.loadDir()
	if err != nil {
		return res, err
	}
	res.Invalid = invalid

	for _, def := range defs {
		_, err := im.store.GetActive(ctx, tenantID, def.Name)
		switch {
		case err == nil:
			res.Skipped++
			slog.Info("prompt already present, skipping", "name", def.Name, "tenant_id", tenantID)
			continue
		case !errors.Is(err, prompt.ErrNotFound):
			return res, fmt.Errorf("check existing prompt %q: %w", def.Name, err)
		}

		version, err := im.store.Save(ctx, tenantID, prompt.SaveRequest{
			Name:           def.Name,
			Description:    def.Description,
			SystemTemplate: def.SystemInstruction,
			UserTemplate:   def.UserPrompt,
			CreatedBy:      Identity,
		})
		if err != nil {
			return res, fmt.Errorf("import prompt %q: %w", def.Name, err)
		}
		res.Migrated++
		slog.Info("imported prompt", "name", def.Name, "version", version, "tenant_id", tenantID)
	}

	return res, nil
}

func (im *Importer) loadDir() ([]Definition, int, error) {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read prompts dir %q: %w", im.dir, err)
	}

	var defs []Definition
	invalid := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(im.dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			invalid++
			slog.Error("read prompt file", "path", path, "error", err)
			continue
		}

		var def Definition
		if err := json.Unmarshal(data, &def); err != nil {
			invalid++
			slog.Error("parse prompt file", "path", path, "error", err)
			continue
		}
		if def.Name == "" {
			// Fall back to the file name, matching the legacy loader.
			def.Name = strings.TrimSuffix(e.Name(), ".json")
		}
		if def.UserPrompt == "" {
			invalid++
			slog.Error("prompt file missing user_prompt", "path", path)
			continue
		}
		defs = append(defs, def)
	}

	return defs, invalid, nil
}
