package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"realty_catalog/internal/domain"
)

// TenantLookup resolves tenant ids to their configuration.
type TenantLookup interface {
	ByID(id string) (domain.Tenant, error)
}

type CommandService struct {
	repo    domain.PropertyRepository
	tenants TenantLookup
	cache   domain.Cache

	now   func() time.Time
	newID func() string
}

func NewCommandService(r domain.PropertyRepository, t TenantLookup, c domain.Cache) *CommandService {
	if c == nil {
		c = NopCache{}
	}
	return &CommandService{
		repo:    r,
		tenants: t,
		cache:   c,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Create validates the draft, assigns an id and slug and stores the listing.
func (s *CommandService) Create(ctx context.Context, tenantID string, d domain.PropertyDraft) (domain.Property, error) {
	t, err := s.usableTenant(tenantID)
	if err != nil {
		return domain.Property{}, err
	}
	if err := d.Validate(); err != nil {
		return domain.Property{}, err
	}
	if !t.AllowsType(d.Type) {
		return domain.Property{}, &domain.ValidationError{Field: "type", Reason: "is not enabled for this tenant"}
	}
	return s.insert(ctx, t, s.newID(), d)
}

func (s *CommandService) insert(ctx context.Context, t domain.Tenant, id string, d domain.PropertyDraft) (domain.Property, error) {
	now := s.now()
	p := fromDraft(t, d)
	p.ID = id
	p.TenantID = t.ID
	p.Slug = domain.PropertySlug(p.Title, p.Location, p.Price.Amount, id)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.InsertProperty(ctx, p); err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

// Update applies a partial update. The owning tenant, id and slug never change.
func (s *CommandService) Update(ctx context.Context, tenantID, id string, patch domain.PropertyPatch) (domain.Property, error) {
	t, err := s.usableTenant(tenantID)
	if err != nil {
		return domain.Property{}, err
	}
	cur, err := s.repo.GetProperty(ctx, tenantID, id)
	if err != nil {
		return domain.Property{}, err
	}
	next, err := patch.Apply(cur)
	if err != nil {
		return domain.Property{}, err
	}
	if patch.Type != nil && !t.AllowsType(next.Type) {
		return domain.Property{}, &domain.ValidationError{Field: "type", Reason: "is not enabled for this tenant"}
	}
	next.UpdatedAt = s.now()

	if err := s.repo.UpdateProperty(ctx, next); err != nil {
		return domain.Property{}, err
	}
	s.invalidate(ctx, cur)
	return next, nil
}

// Delete removes a listing. Leads pointing at it are left untouched.
func (s *CommandService) Delete(ctx context.Context, tenantID, id string) error {
	cur, err := s.repo.GetProperty(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProperty(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, cur)
	return nil
}

// Upsert stores a listing under a caller-chosen id, creating it when absent and
// replacing its content otherwise. Used by the CMS importer.
func (s *CommandService) Upsert(ctx context.Context, tenantID, id string, d domain.PropertyDraft) (domain.Property, bool, error) {
	t, err := s.usableTenant(tenantID)
	if err != nil {
		return domain.Property{}, false, err
	}
	if err := d.Validate(); err != nil {
		return domain.Property{}, false, err
	}
	if !t.AllowsType(d.Type) {
		return domain.Property{}, false, &domain.ValidationError{Field: "type", Reason: "is not enabled for this tenant"}
	}

	cur, err := s.repo.GetProperty(ctx, tenantID, id)
	if errors.Is(err, domain.ErrNotFound) {
		p, err := s.insert(ctx, t, id, d)
		return p, err == nil, err
	}
	if err != nil {
		return domain.Property{}, false, err
	}

	next := fromDraft(t, d)
	next.ID = cur.ID
	next.TenantID = cur.TenantID
	next.Slug = cur.Slug
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.now()
	if err := s.repo.UpdateProperty(ctx, next); err != nil {
		return domain.Property{}, false, err
	}
	s.invalidate(ctx, cur)
	return next, false, nil
}

func (s *CommandService) usableTenant(id string) (domain.Tenant, error) {
	t, err := s.tenants.ByID(id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if !t.Usable() {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (s *CommandService) invalidate(ctx context.Context, p domain.Property) {
	for _, key := range []string{propertyKey(p.TenantID, p.ID), slugKey(p.TenantID, p.Slug)} {
		if err := s.cache.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}

// fromDraft builds the content fields of a property. The draft must be validated.
func fromDraft(t domain.Tenant, d domain.PropertyDraft) domain.Property {
	currency := strings.ToUpper(strings.TrimSpace(d.Currency))
	if currency == "" {
		currency = t.DefaultCurrency
	}
	p := domain.Property{
		Title:         d.Title,
		Description:   d.Description,
		Type:          d.Type,
		Purpose:       d.Purpose,
		Status:        d.Status,
		Price:         domain.Money{Amount: *d.Price, Currency: currency},
		Location:      *d.Location,
		Rooms:         d.Rooms,
		Bathrooms:     d.Bathrooms,
		ParkingSpaces: d.ParkingSpaces,
		Images:        append([]string{}, d.Images...),
		Featured:      d.Featured,
	}
	p.Location.City = strings.TrimSpace(p.Location.City)
	if d.Area != nil {
		a := *d.Area
		p.Area = &a
	}
	return p
}
