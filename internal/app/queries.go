package app

import (
	"context"
	"fmt"
	"time"

	"realty_catalog/internal/domain"
)

type QueryService struct {
	repo     domain.PropertyRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the read side. A nil cache or a non-positive ttl
// disables caching.
func NewQueryService(r domain.PropertyRepository, c domain.Cache, ttl time.Duration) *QueryService {
	if c == nil || ttl <= 0 {
		c = NopCache{}
	}
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func propertyKey(tenantID, id string) string {
	return fmt.Sprintf("property:%s:id:%s", tenantID, id)
}

func slugKey(tenantID, slug string) string {
	return fmt.Sprintf("property:%s:slug:%s", tenantID, slug)
}

func (s *QueryService) GetProperty(ctx context.Context, tenantID, id string) (domain.Property, error) {
	key := propertyKey(tenantID, id)
	var p domain.Property
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetProperty(ctx, tenantID, id)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) GetPropertyBySlug(ctx context.Context, tenantID, slug string) (domain.Property, error) {
	key := slugKey(tenantID, slug)
	var p domain.Property
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetPropertyBySlug(ctx, tenantID, slug)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

// Search runs a tenant-scoped filtered query. Total counts every match before
// pagination; a page past the end yields no items.
func (s *QueryService) Search(ctx context.Context, tenantID string, q domain.SearchQuery) (domain.SearchResult, error) {
	if q.Page.PageSize < 0 {
		return domain.SearchResult{}, &domain.InvalidFilterError{Field: "pageSize", Value: fmt.Sprint(q.Page.PageSize)}
	}
	if q.Page.Page < 0 {
		return domain.SearchResult{}, &domain.InvalidFilterError{Field: "page", Value: fmt.Sprint(q.Page.Page)}
	}
	q.Page = q.Page.Normalize()
	if q.Order.Field == "" {
		q.Order = domain.DefaultOrdering()
	}

	items, total, err := s.repo.SearchProperties(ctx, tenantID, q)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if items == nil {
		items = []domain.Property{}
	}
	return domain.SearchResult{
		Items:      items,
		Total:      total,
		Page:       q.Page.Page,
		PageSize:   q.Page.PageSize,
		TotalPages: q.Page.TotalPages(total),
	}, nil
}

// All returns every listed (non-inactive) property of a tenant, for feeds
// such as the sitemap.
func (s *QueryService) All(ctx context.Context, tenantID string) ([]domain.Property, error) {
	q := domain.SearchQuery{
		Page:  domain.Pagination{Page: 1, PageSize: domain.MaxPageSize},
		Order: domain.Ordering{Field: domain.SortCreatedAt},
	}
	var out []domain.Property
	for {
		items, total, err := s.repo.SearchProperties(ctx, tenantID, q)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) == 0 || len(out) >= total {
			return out, nil
		}
		q.Page.Page++
	}
}

// Stats is recomputed from the store on every call.
func (s *QueryService) Stats(ctx context.Context, tenantID string) (domain.Stats, error) {
	return s.repo.PropertyStats(ctx, tenantID)
}
