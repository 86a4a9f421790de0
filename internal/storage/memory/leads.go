package memory

import (
	"context"
	"sort"

	"realty_catalog/internal/domain"
)

func (s *Store) InsertLead(ctx context.Context, l domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[l.ID]; exists {
		return domain.ErrConflict
	}
	s.leads[l.ID] = l
	return nil
}

func (s *Store) GetLead(ctx context.Context, tenantID, id string) (domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok || l.TenantID != tenantID {
		return domain.Lead{}, domain.ErrNotFound
	}
	return l, nil
}

// ListLeads returns the newest leads first.
func (s *Store) ListLeads(ctx context.Context, tenantID string, q domain.LeadQuery) ([]domain.Lead, int, error) {
	s.mu.RLock()
	items := make([]domain.Lead, 0)
	for _, l := range s.leads {
		if l.TenantID != tenantID {
			continue
		}
		if q.Status != nil && l.Status != *q.Status {
			continue
		}
		items = append(items, l)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	pg := q.Page.Normalize()
	total := len(items)
	start := min(pg.Offset(), total)
	end := min(start+pg.PageSize, total)
	return items[start:end], total, nil
}

func (s *Store) UpdateLeadStatus(ctx context.Context, tenantID, id string, status domain.LeadStatus) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok || l.TenantID != tenantID {
		return domain.Lead{}, domain.ErrNotFound
	}
	l.Status = status
	s.leads[id] = l
	return l, nil
}
