package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/marcusvale/bidforge/internal/metrics"
	"github.com/marcusvale/bidforge/internal/models"
)

// PlaceholderTemplate is served when a prompt is requested before any
// snapshot has ever loaded and the store is unreachable.
const PlaceholderTemplate = "Prompt temporarily unavailable. Please try again later."

const redisSnapshotTTL = 24 * time.Hour

// Manager is a read-through facade over a Store. Reads are served from a
// per-tenant in-memory snapshot of the active set; every mutation issued
// through the manager refreshes that snapshot before returning. When the
// store is unreachable, reads degrade to the last good snapshot (or, before
// any load ever succeeded, to a placeholder) instead of failing the caller.
//
// An optional Redis tier mirrors snapshots so a fresh process can warm its
// cache without the store; Redis failures are logged and never fatal.
type Manager struct {
	store Store
	rdb   *redis.Client // may be nil
	group singleflight.Group

	mu        sync.RWMutex
	snapshots map[uuid.UUID]map[string]models.Prompt
}

func NewManager(store Store, rdb *redis.Client) *Manager {
	return &Manager{
		store:     store,
		rdb:       rdb,
		snapshots: make(map[uuid.UUID]map[string]models.Prompt),
	}
}

// Get returns the active version of the named prompt from the snapshot,
// loading it on first use. A missing name in a healthy snapshot is
// ErrNotFound; an unreachable store degrades as documented on Manager. A
// caller whose context is already done gets the error back, not a
// placeholder.
func (m *Manager) Get(ctx context.Context, tenantID uuid.UUID, name string) (*models.Prompt, error) {
	snap, fresh, err := m.snapshot(ctx, tenantID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		metrics.CacheReads.WithLabelValues("placeholder").Inc()
		slog.Error("prompt store unreachable with no snapshot, serving placeholder",
			"tenant_id", tenantID, "name", name, "error", err)
		return &models.Prompt{
			TenantID:     tenantID,
			Name:         name,
			UserTemplate: PlaceholderTemplate,
		}, nil
	}
	if fresh {
		metrics.CacheReads.WithLabelValues("reload").Inc()
	} else {
		metrics.CacheReads.WithLabelValues("hit").Inc()
	}

	p, ok := snap[name]
	if !ok {
		return nil, fmt.Errorf("get prompt %q: %w", name, ErrNotFound)
	}
	return &p, nil
}

// GetRendered renders the active version's user template with vars and
// returns it together with the untouched system template.
func (m *Manager) GetRendered(ctx context.Context, tenantID uuid.UUID, name string, vars map[string]string) (user, system string, err error) {
	p, err := m.Get(ctx, tenantID, name)
	if err != nil {
		return "", "", err
	}
	user, err = Render(name, p.UserTemplate, vars)
	if err != nil {
		return "", "", err
	}
	return user, p.SystemTemplate, nil
}

// ListActive serves the full active set for the tenant from the snapshot.
func (m *Manager) ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.Prompt, error) {
	snap, _, err := m.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Prompt, 0, len(snap))
	for _, p := range snap {
		out = append(out, p)
	}
	return out, nil
}

// ListVersions always goes to the store; version history is an audit view
// and is not cached.
func (m *Manager) ListVersions(ctx context.Context, tenantID uuid.UUID, name string) ([]models.Prompt, error) {
	return m.store.ListVersions(ctx, tenantID, name)
}

// Save writes through to the store and refreshes the tenant snapshot before
// returning, so a subsequent Get never sees the pre-mutation state.
func (m *Manager) Save(ctx context.Context, tenantID uuid.UUID, req SaveRequest) (int, error) {
	version, err := m.store.Save(ctx, tenantID, req)
	if err != nil {
		return 0, err
	}
	m.refresh(ctx, tenantID)
	return version, nil
}

func (m *Manager) Rollback(ctx context.Context, tenantID uuid.UUID, name string, targetVersion int, updatedBy string) (int, error) {
	version, err := m.store.Rollback(ctx, tenantID, name, targetVersion, updatedBy)
	if err != nil {
		return 0, err
	}
	m.refresh(ctx, tenantID)
	return version, nil
}

func (m *Manager) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	if err := m.store.Delete(ctx, tenantID, name); err != nil {
		return err
	}
	m.refresh(ctx, tenantID)
	return nil
}

// snapshot returns the tenant's active set, loading it through singleflight
// when absent. fresh reports whether this call performed the load.
func (m *Manager) snapshot(ctx context.Context, tenantID uuid.UUID) (map[string]models.Prompt, bool, error) {
	m.mu.RLock()
	snap, ok := m.snapshots[tenantID]
	m.mu.RUnlock()
	if ok {
		return snap, false, nil
	}

	v, err, _ := m.group.Do(tenantID.String(), func() (interface{}, error) {
		return m.load(ctx, tenantID)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(map[string]models.Prompt), true, nil
}

// load fetches the active set from the store. On store failure it tries the
// Redis mirror and only errors when both tiers come up empty. Once loaded, a
// snapshot serves every read without touching the store again, so it is
// itself the "last good" copy for as long as the store stays down.
func (m *Manager) load(ctx context.Context, tenantID uuid.UUID) (map[string]models.Prompt, error) {
	active, err := m.store.ListActive(ctx, tenantID)
	if err != nil {
		if warm, warmErr := m.warmFromRedis(ctx, tenantID); warmErr == nil {
			metrics.CacheReads.WithLabelValues("stale_fallback").Inc()
			slog.Warn("prompt store unreachable, warmed snapshot from redis",
				"tenant_id", tenantID, "error", err)
			return warm, nil
		}
		return nil, fmt.Errorf("load prompts for tenant %s: %w", tenantID, err)
	}

	snap := make(map[string]models.Prompt, len(active))
	for _, p := range active {
		snap[p.Name] = p
	}

	m.mu.Lock()
	m.snapshots[tenantID] = snap
	m.mu.Unlock()
	metrics.SnapshotLoadedAt.WithLabelValues(tenantID.String()).SetToCurrentTime()

	m.mirrorToRedis(ctx, tenantID, snap)
	return snap, nil
}

// refresh drops and reloads the tenant snapshot after a mutation. When the
// reload itself fails the snapshot stays dropped, forcing the next read to
// hit the store rather than serve data stale across our own write.
func (m *Manager) refresh(ctx context.Context, tenantID uuid.UUID) {
	m.mu.Lock()
	delete(m.snapshots, tenantID)
	m.mu.Unlock()
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, redisKey(tenantID)).Err(); err != nil {
			slog.Warn("drop redis snapshot", "tenant_id", tenantID, "error", err)
		}
	}

	if _, _, err := m.snapshot(ctx, tenantID); err != nil {
		slog.Warn("snapshot reload after mutation failed", "tenant_id", tenantID, "error", err)
	}
}

func redisKey(tenantID uuid.UUID) string {
	return "prompts:" + tenantID.String()
}

func (m *Manager) mirrorToRedis(ctx context.Context, tenantID uuid.UUID, snap map[string]models.Prompt) {
	if m.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err == nil {
		err = m.rdb.Set(ctx, redisKey(tenantID), data, redisSnapshotTTL).Err()
	}
	if err != nil {
		slog.Warn("mirror snapshot to redis", "tenant_id", tenantID, "error", err)
	}
}

func (m *Manager) warmFromRedis(ctx context.Context, tenantID uuid.UUID) (map[string]models.Prompt, error) {
	if m.rdb == nil {
		return nil, redis.Nil
	}
	data, err := m.rdb.Get(ctx, redisKey(tenantID)).Bytes()
	if err != nil {
		return nil, err
	}
	var snap map[string]models.Prompt
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.snapshots[tenantID] = snap
	m.mu.Unlock()
	return snap, nil
}
