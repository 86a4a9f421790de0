package domain

import (
	"strings"
	"time"
)

type Interest string

const (
	InterestBuy      Interest = "buy"
	InterestSell     Interest = "sell"
	InterestRent     Interest = "rent"
	InterestInvest   Interest = "invest"
	InterestEvaluate Interest = "evaluate"
	InterestInfo     Interest = "info"
)

func (i Interest) Valid() bool {
	switch i {
	case InterestBuy, InterestSell, InterestRent, InterestInvest, InterestEvaluate, InterestInfo:
		return true
	}
	return false
}

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadClosed    LeadStatus = "closed"
	LeadLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadClosed, LeadLost:
		return true
	}
	return false
}

// Lead is a contact-form submission. PropertyID is a weak reference and may
// point at a property that no longer exists.
type Lead struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenantId"`
	PropertyID *string    `json:"propertyId,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	WhatsApp   string     `json:"whatsapp,omitempty"`
	Message    string     `json:"message,omitempty"`
	Interest   Interest   `json:"interest"`
	Status     LeadStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type LeadDraft struct {
	PropertyID *string  `json:"propertyId"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	WhatsApp   string   `json:"whatsapp"`
	Message    string   `json:"message"`
	Interest   Interest `json:"interest"`
}

// Validate requires at least one contact channel. Interest defaults to info.
func (d *LeadDraft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.WhatsApp = strings.TrimSpace(d.WhatsApp)
	if d.Email == "" && d.Phone == "" && d.WhatsApp == "" {
		return invalid("contact", "email, phone or whatsapp is required")
	}
	if err := firstErr(
		tooLong("name", d.Name, MaxNameLen),
		tooLong("email", d.Email, MaxEmailLen),
		tooLong("phone", d.Phone, MaxPhoneLen),
		tooLong("whatsapp", d.WhatsApp, MaxPhoneLen),
	); err != nil {
		return err
	}
	if d.Email != "" && !strings.Contains(d.Email, "@") {
		return invalid("email", "is malformed")
	}
	if d.Interest == "" {
		d.Interest = InterestInfo
	}
	if !d.Interest.Valid() {
		return invalid("interest", "has unknown value "+string(d.Interest))
	}
	if d.PropertyID != nil && strings.TrimSpace(*d.PropertyID) == "" {
		d.PropertyID = nil
	}
	if d.PropertyID != nil {
		if err := tooLong("propertyId", *d.PropertyID, MaxRefLen); err != nil {
			return err
		}
	}
	return nil
}
