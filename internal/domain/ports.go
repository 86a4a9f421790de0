package domain

import "context"

// PropertyRepository persists listings. Every method is scoped to a tenant;
// a record owned by another tenant behaves exactly like a missing one.
type PropertyRepository interface {
	// Write paths
	InsertProperty(ctx context.Context, p Property) error
	UpdateProperty(ctx context.Context, p Property) error
	DeleteProperty(ctx context.Context, tenantID, id string) error

	// Read paths
	GetProperty(ctx context.Context, tenantID, id string) (Property, error)
	GetPropertyBySlug(ctx context.Context, tenantID, slug string) (Property, error)
	SearchProperties(ctx context.Context, tenantID string, q SearchQuery) ([]Property, int, error)
	PropertyStats(ctx context.Context, tenantID string) (Stats, error)
}

type LeadRepository interface {
	InsertLead(ctx context.Context, l Lead) error
	GetLead(ctx context.Context, tenantID, id string) (Lead, error)
	ListLeads(ctx context.Context, tenantID string, q LeadQuery) ([]Lead, int, error)
	UpdateLeadStatus(ctx context.Context, tenantID, id string, status LeadStatus) (Lead, error)
}

// TenantSource loads the full tenant table.
type TenantSource interface {
	LoadTenants(ctx context.Context) ([]Tenant, error)
}

// ListingSource is an upstream CMS holding the editorial copy of listings.
type ListingSource interface {
	ListProperties(ctx context.Context, tenantSlug string, page, pageSize int) (ListingPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ListingPage is one page of raw CMS entries.
type ListingPage struct {
	Entries   []map[string]any
	Page      int
	PageCount int
	Total     int
}

type LeadQuery struct {
	Status *LeadStatus
	Page   Pagination
}

type Stats struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	ByType        map[string]int `json:"byType"`
	ByCity        map[string]int `json:"byCity"`
	FeaturedCount int            `json:"featuredCount"`
}

func NewStats() Stats {
	return Stats{ByStatus: map[string]int{}, ByType: map[string]int{}, ByCity: map[string]int{}}
}

// Add counts p into s.
func (s *Stats) Add(p Property) {
	s.Total++
	s.ByStatus[string(p.Status)]++
	s.ByType[string(p.Type)]++
	s.ByCity[p.Location.City]++
	if p.Featured {
		s.FeaturedCount++
	}
}
