// Package memory is an in-process implementation of the property and lead
// repositories, used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"realty_catalog/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	properties map[string]domain.Property // by id
	slugs      map[string]string          // tenant|slug -> id
	leads      map[string]domain.Lead
}

func New() *Store {
	return &Store{
		properties: make(map[string]domain.Property),
		slugs:      make(map[string]string),
		leads:      make(map[string]domain.Lead),
	}
}

func slugKey(tenantID, slug string) string { return tenantID + "|" + slug }

func (s *Store) InsertProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.properties[p.ID]; exists {
		return domain.ErrConflict
	}
	if _, exists := s.slugs[slugKey(p.TenantID, p.Slug)]; exists {
		return domain.ErrConflict
	}
	s.properties[p.ID] = clone(p)
	s.slugs[slugKey(p.TenantID, p.Slug)] = p.ID
	return nil
}

func (s *Store) UpdateProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.properties[p.ID]
	if !ok || cur.TenantID != p.TenantID {
		return domain.ErrNotFound
	}
	if cur.Slug != p.Slug {
		if owner, taken := s.slugs[slugKey(p.TenantID, p.Slug)]; taken && owner != p.ID {
			return domain.ErrConflict
		}
		delete(s.slugs, slugKey(cur.TenantID, cur.Slug))
		s.slugs[slugKey(p.TenantID, p.Slug)] = p.ID
	}
	s.properties[p.ID] = clone(p)
	return nil
}

func (s *Store) DeleteProperty(ctx context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.properties[id]
	if !ok || cur.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(s.properties, id)
	delete(s.slugs, slugKey(cur.TenantID, cur.Slug))
	return nil
}

func (s *Store) GetProperty(ctx context.Context, tenantID, id string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[id]
	if !ok || p.TenantID != tenantID {
		return domain.Property{}, domain.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) GetPropertyBySlug(ctx context.Context, tenantID, slug string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slugKey(tenantID, slug)]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return clone(s.properties[id]), nil
}

func (s *Store) SearchProperties(ctx context.Context, tenantID string, q domain.SearchQuery) ([]domain.Property, int, error) {
	s.mu.RLock()
	matched := make([]domain.Property, 0, len(s.properties))
	for _, p := range s.properties {
		if p.TenantID == tenantID && q.Filter.Matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return q.Order.Less(matched[i], matched[j]) })

	pg := q.Page.Normalize()
	total := len(matched)
	start := min(pg.Offset(), total)
	end := min(start+pg.PageSize, total)

	out := make([]domain.Property, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, clone(p))
	}
	return out, total, nil
}

func (s *Store) PropertyStats(ctx context.Context, tenantID string) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.NewStats()
	for _, p := range s.properties {
		if p.TenantID == tenantID {
			st.Add(p)
		}
	}
	return st, nil
}

// clone copies the slices and pointers so callers cannot mutate stored records.
func clone(p domain.Property) domain.Property {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	if p.Area != nil {
		a := *p.Area
		p.Area = &a
	}
	if p.Location.Lat != nil {
		v := *p.Location.Lat
		p.Location.Lat = &v
	}
	if p.Location.Lng != nil {
		v := *p.Location.Lng
		p.Location.Lng = &v
	}
	return p
}

var (
	_ domain.PropertyRepository = (*Store)(nil)
	_ domain.LeadRepository     = (*Store)(nil)
)
