package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"realty_catalog/internal/domain"
)

// TenantSource reads the tenant table. Branding, contact and the enabled
// property types are stored as JSON columns.
type TenantSource struct{ db *sql.DB }

func NewTenantSource(db *sql.DB) *TenantSource { return &TenantSource{db: db} }

var _ domain.TenantSource = (*TenantSource)(nil)

func (s *TenantSource) LoadTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, listTenantsSQL)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		var (
			name, currency           sql.NullString
			status                   string
			types, branding, contact []byte
		)
		if err := rows.Scan(&t.ID, &t.Slug, &t.Domain, &name, &status, &currency, &types, &branding, &contact); err != nil {
			return nil, err
		}
		t.Name = name.String
		t.Status = domain.TenantStatus(status)
		t.DefaultCurrency = currency.String
		if err := unmarshalOptional(types, &t.EnabledPropertyTypes); err != nil {
			return nil, fmt.Errorf("tenant %s: enabled_property_types: %w", t.ID, err)
		}
		if err := unmarshalOptional(branding, &t.Branding); err != nil {
			return nil, fmt.Errorf("tenant %s: branding: %w", t.ID, err)
		}
		if err := unmarshalOptional(contact, &t.Contact); err != nil {
			return nil, fmt.Errorf("tenant %s: contact: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func unmarshalOptional(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
