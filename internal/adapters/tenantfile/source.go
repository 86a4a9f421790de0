// Package tenantfile loads the tenant table from a YAML document.
package tenantfile

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"realty_catalog/internal/domain"
)

type document struct {
	Tenants []domain.Tenant `yaml:"tenants"`
}

// Source re-reads the file on every load so a SIGHUP reload picks up edits.
type Source struct{ path string }

func New(path string) *Source { return &Source{path: path} }

var _ domain.TenantSource = (*Source)(nil)

func (s *Source) LoadTenants(ctx context.Context) ([]domain.Tenant, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read tenants file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a tenants document. Unknown keys are rejected so typos in
// hand-edited files surface at startup.
func Parse(b []byte) ([]domain.Tenant, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	for i := range doc.Tenants {
		if doc.Tenants[i].Status == "" {
			doc.Tenants[i].Status = domain.TenantActive
		}
	}
	return doc.Tenants, nil
}
