package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"realty_catalog/internal/domain"
)

func prop(tenant, id, slug string) domain.Property {
	return domain.Property{
		ID: id, TenantID: tenant, Slug: slug, Title: id,
		Status: domain.StatusAvailable, Images: []string{"a.jpg"},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStore_TenantScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertProperty(ctx, prop("t1", "p1", "casa")))
	require.NoError(t, s.InsertProperty(ctx, prop("t2", "p2", "casa")))

	_, err := s.GetProperty(ctx, "t2", "p1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, s.DeleteProperty(ctx, "t2", "p1"), domain.ErrNotFound)

	got, err := s.GetPropertyBySlug(ctx, "t2", "casa")
	require.NoError(t, err)
	require.Equal(t, "p2", got.ID)

	require.ErrorIs(t, s.InsertProperty(ctx, prop("t1", "p3", "casa")), domain.ErrConflict)
	require.ErrorIs(t, s.InsertProperty(ctx, prop("t1", "p1", "otra")), domain.ErrConflict)

	require.ErrorIs(t, s.UpdateProperty(ctx, prop("t2", "p1", "casa")), domain.ErrNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.InsertProperty(ctx, prop("t1", "p1", "casa")))

	got, err := s.GetProperty(ctx, "t1", "p1")
	require.NoError(t, err)
	got.Images[0] = "mutated.jpg"

	again, err := s.GetProperty(ctx, "t1", "p1")
	require.NoError(t, err)
	require.Equal(t, "a.jpg", again.Images[0])
}

func TestStore_Leads(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, s.InsertLead(ctx, domain.Lead{
			ID: id, TenantID: "t1", Name: id, Status: domain.LeadNew,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.InsertLead(ctx, domain.Lead{ID: "x", TenantID: "t2", Status: domain.LeadNew}))

	_, err := s.UpdateLeadStatus(ctx, "t1", "l2", domain.LeadQualified)
	require.NoError(t, err)

	items, total, err := s.ListLeads(ctx, "t1", domain.LeadQuery{Page: domain.Pagination{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []string{"l3", "l2"}, []string{items[0].ID, items[1].ID})

	q := domain.LeadQualified
	items, total, err = s.ListLeads(ctx, "t1", domain.LeadQuery{Status: &q})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "l2", items[0].ID)

	_, err = s.GetLead(ctx, "t2", "l1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
