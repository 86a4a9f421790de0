package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"realty_catalog/internal/app"
	"realty_catalog/internal/domain"
)

// pagedCMS serves entries per tenant slug in pages of size pageSize.
type pagedCMS struct {
	entries  map[string][]map[string]any
	pageSize int
	calls    int
	err      error
}

func (c *pagedCMS) ListProperties(ctx context.Context, slug string, page, _ int) (domain.ListingPage, error) {
	c.calls++
	if c.err != nil {
		return domain.ListingPage{}, c.err
	}
	all := c.entries[slug]
	pageCount := (len(all) + c.pageSize - 1) / c.pageSize
	start := min((page-1)*c.pageSize, len(all))
	end := min(start+c.pageSize, len(all))
	return domain.ListingPage{Entries: all[start:end], Page: page, PageCount: pageCount, Total: len(all)}, nil
}

func cmsEntry(id int, title string, price float64) map[string]any {
	return map[string]any{
		"id":    float64(id),
		"title": title,
		"type":  "casa",
		"price": price,
		"city":  "Maldonado",
	}
}

func TestIngestTenant_PagesAndUpserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cms := &pagedCMS{pageSize: 2, entries: map[string][]map[string]any{}}
	for i := 1; i <= 5; i++ {
		cms.entries["costa"] = append(cms.entries["costa"], cmsEntry(i, fmt.Sprintf("Casa %d", i), float64(i*1000)))
	}
	cms.entries["costa"] = append(cms.entries["costa"], map[string]any{"id": float64(99), "title": "sin precio", "city": "x"})

	svc := app.NewIngestionService(cms, f.c)
	tenant := defaultTenants()["t1"]

	rep, err := svc.IngestTenant(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, app.IngestReport{TenantID: "t1", Created: 5, Skipped: 1}, rep)
	require.Equal(t, 3, cms.calls)

	p, err := f.q.GetProperty(ctx, "t1", app.ImportID("t1", "3"))
	require.NoError(t, err)
	require.Equal(t, "Casa 3", p.Title)
	require.Equal(t, domain.TypeHouse, p.Type)

	cms.entries["costa"][2]["title"] = "Casa 3 reciclada"
	cms.calls = 0
	rep, err = svc.IngestTenant(ctx, tenant)
	require.NoError(t, err)
	require.Equal(t, 5, rep.Updated)
	require.Zero(t, rep.Created)

	upd, err := f.q.GetProperty(ctx, "t1", p.ID)
	require.NoError(t, err)
	require.Equal(t, "Casa 3 reciclada", upd.Title)
	require.Equal(t, p.Slug, upd.Slug)
	require.Equal(t, p.CreatedAt, upd.CreatedAt)

	res, err := f.q.Search(ctx, "t1", domain.SearchQuery{})
	require.NoError(t, err)
	require.Equal(t, 5, res.Total)
}

func TestIngestTenant_EmptyTenant(t *testing.T) {
	f := newFixture(t)
	cms := &pagedCMS{pageSize: 10, entries: map[string][]map[string]any{}}
	rep, err := app.NewIngestionService(cms, f.c).IngestTenant(context.Background(), defaultTenants()["t2"])
	require.NoError(t, err)
	require.Equal(t, app.IngestReport{TenantID: "t2"}, rep)
	require.Equal(t, 1, cms.calls)
}

func TestIngestTenant_DisabledTypeIsSkipped(t *testing.T) {
	f := newFixture(t)
	cms := &pagedCMS{pageSize: 10, entries: map[string][]map[string]any{
		"farms": {cmsEntry(1, "Casa", 1), {"id": float64(2), "title": "Estancia", "type": "estancia", "price": float64(5), "city": "Durazno"}},
	}}
	rep, err := app.NewIngestionService(cms, f.c).IngestTenant(context.Background(), defaultTenants()["farms"])
	require.NoError(t, err)
	require.Equal(t, 1, rep.Created)
	require.Equal(t, 1, rep.Skipped)
}

func TestIngestTenant_TransportErrorAborts(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("cms down")
	cms := &pagedCMS{pageSize: 10, err: boom}
	_, err := app.NewIngestionService(cms, f.c).IngestTenant(context.Background(), defaultTenants()["t1"])
	require.ErrorIs(t, err, boom)
}
