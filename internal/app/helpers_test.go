package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"realty_catalog/internal/app"
	"realty_catalog/internal/domain"
	"realty_catalog/internal/storage/memory"
)

// ---- fakes ----

type fakeTenants map[string]domain.Tenant

func (f fakeTenants) ByID(id string) (domain.Tenant, error) {
	t, ok := f[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (f fakeTenants) LoadTenants(ctx context.Context) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(f))
	for _, t := range f {
		out = append(out, t)
	}
	return out, nil
}

// fakeCache stores JSON so reads decode into any destination type.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	c.store[key] = b
	return err
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func defaultTenants() fakeTenants {
	ts := fakeTenants{}
	for _, t := range []domain.Tenant{
		{ID: "t1", Slug: "costa", Domain: "costa.example.com", Status: domain.TenantActive, DefaultCurrency: "USD"},
		{ID: "t2", Slug: "campo", Domain: "campo.example.com", Status: domain.TenantActive, DefaultCurrency: "UYU"},
		{ID: "suspended", Slug: "sus", Status: domain.TenantSuspended, DefaultCurrency: "USD"},
		{ID: "cancelled", Slug: "gone", Status: domain.TenantCancelled},
		{
			ID: "farms", Slug: "farms", Status: domain.TenantActive, DefaultCurrency: "USD",
			EnabledPropertyTypes: []domain.PropertyType{domain.TypeFarm, domain.TypeRanch},
		},
	} {
		ts[t.ID] = t
	}
	return ts
}

type fixture struct {
	store *memory.Store
	cache *fakeCache
	q     *app.QueryService
	c     *app.CommandService
	l     *app.LeadService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	cache := &fakeCache{}
	tenants := defaultTenants()
	return fixture{
		store: store,
		cache: cache,
		q:     app.NewQueryService(store, cache, time.Minute),
		c:     app.NewCommandService(store, tenants, cache),
		l:     app.NewLeadService(store, tenants),
	}
}

func pfloat(f float64) *float64 { return &f }
func ptr[T any](v T) *T         { return &v }

func draft(title, city string, typ domain.PropertyType, price float64) domain.PropertyDraft {
	return domain.PropertyDraft{
		Title:    title,
		Type:     typ,
		Price:    pfloat(price),
		Location: &domain.Location{City: city, State: "Maldonado"},
	}
}

func mustCreate(t *testing.T, c *app.CommandService, tenantID string, d domain.PropertyDraft) domain.Property {
	t.Helper()
	p, err := c.Create(context.Background(), tenantID, d)
	if err != nil {
		t.Fatalf("create %q: %v", d.Title, err)
	}
	return p
}
