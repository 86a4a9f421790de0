package domain

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantCancelled TenantStatus = "cancelled"
)

func (s TenantStatus) Valid() bool {
	switch s {
	case TenantActive, TenantSuspended, TenantCancelled:
		return true
	}
	return false
}

type Branding struct {
	PrimaryColor   string `json:"primaryColor,omitempty" yaml:"primary_color"`
	SecondaryColor string `json:"secondaryColor,omitempty" yaml:"secondary_color"`
	LogoURL        string `json:"logoUrl,omitempty" yaml:"logo_url"`
}

type Contact struct {
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	WhatsApp string `json:"whatsapp,omitempty" yaml:"whatsapp"`
	Email    string `json:"email,omitempty" yaml:"email"`
}

// Tenant is one isolated deployment of the catalog.
type Tenant struct {
	ID                   string         `json:"id" yaml:"id"`
	Slug                 string         `json:"slug" yaml:"slug"`
	Domain               string         `json:"domain" yaml:"domain"`
	Name                 string         `json:"name,omitempty" yaml:"name"`
	Status               TenantStatus   `json:"status" yaml:"status"`
	DefaultCurrency      string         `json:"defaultCurrency" yaml:"default_currency"`
	EnabledPropertyTypes []PropertyType `json:"enabledPropertyTypes,omitempty" yaml:"enabled_property_types"`
	Branding             Branding       `json:"branding" yaml:"branding"`
	Contact              Contact        `json:"contact" yaml:"contact"`
}

// AllowsType reports whether properties of type t may be listed by the tenant.
// An empty EnabledPropertyTypes set allows every type.
func (t Tenant) AllowsType(pt PropertyType) bool {
	if len(t.EnabledPropertyTypes) == 0 {
		return true
	}
	for _, e := range t.EnabledPropertyTypes {
		if e == pt {
			return true
		}
	}
	return false
}

func (t Tenant) Usable() bool { return t.Status != TenantCancelled }
func (t Tenant) Active() bool { return t.Status == TenantActive }
