package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"realty_catalog/internal/domain"
)

// Registry is the in-memory tenant lookup table, rebuilt from a TenantSource.
type Registry struct {
	src domain.TenantSource

	mu       sync.RWMutex
	byID     map[string]domain.Tenant
	byDomain map[string]string
	bySlug   map[string]string
}

func NewRegistry(src domain.TenantSource) *Registry {
	return &Registry{
		src:      src,
		byID:     map[string]domain.Tenant{},
		byDomain: map[string]string{},
		bySlug:   map[string]string{},
	}
}

// Refresh reloads every tenant from the source and swaps the index atomically.
// Duplicate ids, slugs or domains fail the refresh and keep the old index.
func (r *Registry) Refresh(ctx context.Context) error {
	tenants, err := r.src.LoadTenants(ctx)
	if err != nil {
		return fmt.Errorf("load tenants: %w", err)
	}

	byID := make(map[string]domain.Tenant, len(tenants))
	byDomain := make(map[string]string, len(tenants))
	bySlug := make(map[string]string, len(tenants))
	for _, t := range tenants {
		if t.ID == "" {
			return fmt.Errorf("tenant %q has no id", t.Slug)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("tenant %s: unknown status %q", t.ID, t.Status)
		}
		if _, dup := byID[t.ID]; dup {
			return fmt.Errorf("duplicate tenant id %s", t.ID)
		}
		byID[t.ID] = t
		if d := normalizeHost(t.Domain); d != "" {
			if other, dup := byDomain[d]; dup {
				return fmt.Errorf("domain %s used by tenants %s and %s", d, other, t.ID)
			}
			byDomain[d] = t.ID
		}
		if t.Slug != "" {
			if other, dup := bySlug[t.Slug]; dup {
				return fmt.Errorf("slug %s used by tenants %s and %s", t.Slug, other, t.ID)
			}
			bySlug[t.Slug] = t.ID
		}
	}

	r.mu.Lock()
	r.byID, r.byDomain, r.bySlug = byID, byDomain, bySlug
	r.mu.Unlock()

	log.Info().Int("tenants", len(byID)).Msg("tenant registry refreshed")
	return nil
}

// Resolve finds the tenant for a hostname or slug. Domains match
// case-insensitively; cancelled tenants are reported as not found.
func (r *Registry) Resolve(key string) (domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byDomain[normalizeHost(key)]
	if !ok {
		id, ok = r.bySlug[strings.TrimSpace(key)]
	}
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	t := r.byID[id]
	if !t.Usable() {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

// ByID returns the tenant with the given id, whatever its status.
func (r *Registry) ByID(id string) (domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

// All returns every known tenant ordered by id.
func (r *Registry) All() []domain.Tenant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tenant, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}
