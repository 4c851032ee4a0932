package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/makersrow/suggest/internal/domain"
)

// catalogRepo loads the active-product projection from the catalog store.
type catalogRepo interface {
	LoadActiveProjection(ctx context.Context) ([]domain.CatalogEntry, error)
}

// SnapshotProvider memoizes the catalog projection and refreshes it
// wholesale once it is older than maxAge. The refresh is pull-based: the
// first Get after expiry pays for the reload, concurrent callers share a
// single reload via singleflight. A failed reload falls back to the
// previous snapshot when one exists, trading freshness for availability
// on the read path.
type SnapshotProvider struct {
	log     *slog.Logger
	catalog catalogRepo
	maxAge  time.Duration

	flight singleflight.Group

	mu        sync.RWMutex
	entries   []domain.CatalogEntry
	fetchedAt time.Time
}

// NewSnapshotProvider creates a provider with an empty snapshot; the
// first Get triggers the initial load.
func NewSnapshotProvider(logger *slog.Logger, catalog catalogRepo, maxAge time.Duration) *SnapshotProvider {
	return &SnapshotProvider{
		log:     logger.With("component", "catalog_snapshot"),
		catalog: catalog,
		maxAge:  maxAge,
	}
}

// Get returns the memoized projection, reloading it when stale. The
// returned slice is shared and must be treated as read-only.
func (p *SnapshotProvider) Get(ctx context.Context) ([]domain.CatalogEntry, error) {
	if entries, ok := p.fresh(); ok {
		return entries, nil
	}

	v, err, _ := p.flight.Do("catalog", func() (any, error) {
		// Another caller may have finished the reload while this one
		// was queued behind the flight.
		if entries, ok := p.fresh(); ok {
			return entries, nil
		}
		return p.reload(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CatalogEntry), nil
}

// Invalidate drops the current snapshot so the next Get reloads. Used by
// tests and by operational hooks after bulk catalog imports.
func (p *SnapshotProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	p.fetchedAt = time.Time{}
}

func (p *SnapshotProvider) fresh() ([]domain.CatalogEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.entries == nil || time.Since(p.fetchedAt) >= p.maxAge {
		return nil, false
	}
	return p.entries, true
}

func (p *SnapshotProvider) reload(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries, err := p.catalog.LoadActiveProjection(ctx)
	if err != nil {
		p.mu.RLock()
		stale := p.entries
		staleAge := time.Since(p.fetchedAt)
		p.mu.RUnlock()

		if stale != nil {
			p.log.WarnContext(ctx, "catalog reload failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.Duration("snapshot_age", staleAge),
			)
			return stale, nil
		}
		return nil, fmt.Errorf("load catalog projection: %w", err)
	}

	p.mu.Lock()
	p.entries = entries
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	p.log.DebugContext(ctx, "catalog snapshot refreshed",
		slog.Int("products", len(entries)),
	)
	return entries, nil
}
