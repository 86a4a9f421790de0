package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"realty_catalog/internal/domain"
)

type LeadService struct {
	repo    domain.LeadRepository
	tenants TenantLookup

	now   func() time.Time
	newID func() string
}

func NewLeadService(r domain.LeadRepository, t TenantLookup) *LeadService {
	return &LeadService{
		repo:    r,
		tenants: t,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// CreateLead records a contact-form submission. The tenant must be active and
// the draft must carry at least one contact channel. No notification is sent.
func (s *LeadService) CreateLead(ctx context.Context, tenantID string, d domain.LeadDraft) (domain.Lead, error) {
	t, err := s.tenants.ByID(tenantID)
	if err != nil || !t.Active() {
		return domain.Lead{}, &domain.ValidationError{Field: "tenantId", Reason: "does not resolve to an active tenant"}
	}
	if err := d.Validate(); err != nil {
		return domain.Lead{}, err
	}

	l := domain.Lead{
		ID:         s.newID(),
		TenantID:   t.ID,
		PropertyID: d.PropertyID,
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		WhatsApp:   d.WhatsApp,
		Message:    d.Message,
		Interest:   d.Interest,
		Status:     domain.LeadNew,
		CreatedAt:  s.now(),
	}
	if err := s.repo.InsertLead(ctx, l); err != nil {
		return domain.Lead{}, err
	}
	return l, nil
}

func (s *LeadService) GetLead(ctx context.Context, tenantID, id string) (domain.Lead, error) {
	return s.repo.GetLead(ctx, tenantID, id)
}

func (s *LeadService) ListLeads(ctx context.Context, tenantID string, q domain.LeadQuery) ([]domain.Lead, int, error) {
	q.Page = q.Page.Normalize()
	items, total, err := s.repo.ListLeads(ctx, tenantID, q)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []domain.Lead{}
	}
	return items, total, nil
}

// UpdateStatus lets an operator move a lead to any status.
func (s *LeadService) UpdateStatus(ctx context.Context, tenantID, id string, status domain.LeadStatus) (domain.Lead, error) {
	if !status.Valid() {
		return domain.Lead{}, &domain.ValidationError{Field: "status", Reason: "has unknown value " + string(status)}
	}
	return s.repo.UpdateLeadStatus(ctx, tenantID, id, status)
}
