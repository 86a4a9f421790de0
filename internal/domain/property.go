package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type PropertyType string

const (
	TypeHouse      PropertyType = "house"
	TypeApartment  PropertyType = "apartment"
	TypeFarm       PropertyType = "farm"
	TypeRanch      PropertyType = "ranch"
	TypeLand       PropertyType = "land"
	TypeCommercial PropertyType = "commercial"
	TypeWarehouse  PropertyType = "warehouse"
)

func (t PropertyType) Valid() bool {
	switch t {
	case TypeHouse, TypeApartment, TypeFarm, TypeRanch, TypeLand, TypeCommercial, TypeWarehouse:
		return true
	}
	return false
}

type Purpose string

const (
	PurposeSale Purpose = "sale"
	PurposeRent Purpose = "rent"
)

func (p Purpose) Valid() bool { return p == PurposeSale || p == PurposeRent }

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusReserved  PropertyStatus = "reserved"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
	StatusInactive  PropertyStatus = "inactive"
)

// Any status may be set by an update; there is no transition graph.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusRented, StatusInactive:
		return true
	}
	return false
}

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Location struct {
	City    string   `json:"city"`
	State   string   `json:"state,omitempty"`
	Country string   `json:"country,omitempty"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type Area struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Property struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenantId"`
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Type          PropertyType   `json:"type"`
	Purpose       Purpose        `json:"purpose"`
	Status        PropertyStatus `json:"status"`
	Price         Money          `json:"price"`
	Location      Location       `json:"location"`
	Area          *Area          `json:"area,omitempty"`
	Rooms         int            `json:"rooms"`
	Bathrooms     int            `json:"bathrooms"`
	ParkingSpaces int            `json:"parkingSpaces"`
	Images        []string       `json:"images"`
	Featured      bool           `json:"featured"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Cover returns the first image reference, or "".
func (p Property) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// PropertyDraft is the admin form payload used to create a listing.
type PropertyDraft struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          PropertyType   `json:"type"`
	Purpose       Purpose        `json:"purpose"`
	Status        PropertyStatus `json:"status"`
	Price         *float64       `json:"price"`
	Currency      string         `json:"currency"`
	Location      *Location      `json:"location"`
	Area          *Area          `json:"area"`
	Rooms         int            `json:"rooms"`
	Bathrooms     int            `json:"bathrooms"`
	ParkingSpaces int            `json:"parkingSpaces"`
	Images        []string       `json:"images"`
	Featured      bool           `json:"featured"`
}

// Validate checks required fields and fills defaults for purpose and status.
func (d *PropertyDraft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return invalid("title", "is required")
	}
	if err := tooLong("title", d.Title, MaxTitleLen); err != nil {
		return err
	}
	if d.Type == "" {
		return invalid("type", "is required")
	}
	if !d.Type.Valid() {
		return invalid("type", "has unknown value "+string(d.Type))
	}
	if d.Price == nil {
		return invalid("price", "is required")
	}
	if *d.Price < 0 {
		return invalid("price", "must be >= 0")
	}
	if d.Location == nil {
		return invalid("location.city", "is required")
	}
	if err := checkLocation(*d.Location); err != nil {
		return err
	}
	d.Currency = strings.TrimSpace(d.Currency)
	if d.Currency != "" {
		if err := checkCurrency(d.Currency); err != nil {
			return err
		}
	}
	if d.Purpose == "" {
		d.Purpose = PurposeSale
	}
	if !d.Purpose.Valid() {
		return invalid("purpose", "has unknown value "+string(d.Purpose))
	}
	if d.Status == "" {
		d.Status = StatusAvailable
	}
	if !d.Status.Valid() {
		return invalid("status", "has unknown value "+string(d.Status))
	}
	if err := checkArea(d.Area); err != nil {
		return err
	}
	return checkCounts(d.Rooms, d.Bathrooms, d.ParkingSpaces)
}

// Nullable distinguishes an absent JSON member (Set false) from an explicit
// null (Set true, Value nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Nullable holding v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// PropertyPatch carries a partial update. TenantID is accepted on the wire
// but never applied. "area": null removes the area and "images": [] empties
// the gallery.
type PropertyPatch struct {
	TenantID      *string         `json:"tenantId,omitempty"`
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Type          *PropertyType   `json:"type,omitempty"`
	Purpose       *Purpose        `json:"purpose,omitempty"`
	Status        *PropertyStatus `json:"status,omitempty"`
	Price         *float64        `json:"price,omitempty"`
	Currency      *string         `json:"currency,omitempty"`
	Location      *Location       `json:"location,omitempty"`
	Area          Nullable[Area]  `json:"area"`
	Rooms         *int            `json:"rooms,omitempty"`
	Bathrooms     *int            `json:"bathrooms,omitempty"`
	ParkingSpaces *int            `json:"parkingSpaces,omitempty"`
	Images        []string        `json:"images,omitempty"`
	Featured      *bool           `json:"featured,omitempty"`
}

// Apply returns p with the patch applied. ID, TenantID, Slug and CreatedAt
// are never touched.
func (patch PropertyPatch) Apply(p Property) (Property, error) {
	out := p
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return p, invalid("title", "is required")
		}
		if err := tooLong("title", t, MaxTitleLen); err != nil {
			return p, err
		}
		out.Title = t
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return p, invalid("type", "has unknown value "+string(*patch.Type))
		}
		out.Type = *patch.Type
	}
	if patch.Purpose != nil {
		if !patch.Purpose.Valid() {
			return p, invalid("purpose", "has unknown value "+string(*patch.Purpose))
		}
		out.Purpose = *patch.Purpose
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return p, invalid("status", "has unknown value "+string(*patch.Status))
		}
		out.Status = *patch.Status
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return p, invalid("price", "must be >= 0")
		}
		out.Price.Amount = *patch.Price
	}
	if patch.Currency != nil && strings.TrimSpace(*patch.Currency) != "" {
		c := strings.TrimSpace(*patch.Currency)
		if err := checkCurrency(c); err != nil {
			return p, err
		}
		out.Price.Currency = strings.ToUpper(c)
	}
	if patch.Location != nil {
		if err := checkLocation(*patch.Location); err != nil {
			return p, err
		}
		out.Location = *patch.Location
		out.Location.City = strings.TrimSpace(out.Location.City)
	}
	if patch.Area.Set {
		if err := checkArea(patch.Area.Value); err != nil {
			return p, err
		}
		out.Area = nil
		if patch.Area.Value != nil {
			a := *patch.Area.Value
			out.Area = &a
		}
	}
	if patch.Rooms != nil {
		out.Rooms = *patch.Rooms
	}
	if patch.Bathrooms != nil {
		out.Bathrooms = *patch.Bathrooms
	}
	if patch.ParkingSpaces != nil {
		out.ParkingSpaces = *patch.ParkingSpaces
	}
	if patch.Images != nil {
		out.Images = append([]string{}, patch.Images...)
	}
	if patch.Featured != nil {
		out.Featured = *patch.Featured
	}
	if err := checkCounts(out.Rooms, out.Bathrooms, out.ParkingSpaces); err != nil {
		return p, err
	}
	return out, nil
}

func checkCounts(rooms, bathrooms, parking int) error {
	switch {
	case rooms < 0:
		return invalid("rooms", "must be >= 0")
	case bathrooms < 0:
		return invalid("bathrooms", "must be >= 0")
	case parking < 0:
		return invalid("parkingSpaces", "must be >= 0")
	}
	return nil
}
