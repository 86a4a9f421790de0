package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pf(f float64) *float64 { return &f }

func validDraft() PropertyDraft {
	return PropertyDraft{
		Title:    "Casa",
		Type:     TypeHouse,
		Price:    pf(100),
		Location: &Location{City: "Montevideo"},
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	require.Equal(t, field, verr.Field)
}

func TestPropertyDraft_Validate(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Validate())
	require.Equal(t, PurposeSale, d.Purpose)
	require.Equal(t, StatusAvailable, d.Status)

	cases := map[string]func(*PropertyDraft){
		"title":         func(d *PropertyDraft) { d.Title = "  " },
		"type":          func(d *PropertyDraft) { d.Type = "castle" },
		"price":         func(d *PropertyDraft) { d.Price = pf(-1) },
		"location.city": func(d *PropertyDraft) { d.Location = nil },
		"purpose":       func(d *PropertyDraft) { d.Purpose = "lease" },
		"status":        func(d *PropertyDraft) { d.Status = "gone" },
		"area":          func(d *PropertyDraft) { d.Area = &Area{Value: -3, Unit: "m2"} },
		"rooms":         func(d *PropertyDraft) { d.Rooms = -1 },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			d := validDraft()
			mutate(&d)
			requireField(t, d.Validate(), field)
		})
	}

	missingPrice := validDraft()
	missingPrice.Price = nil
	requireField(t, missingPrice.Validate(), "price")
}

func TestPropertyPatch_Apply(t *testing.T) {
	p := Property{
		ID: "p1", TenantID: "t1", Slug: "casa-p1", Title: "Casa",
		Status: StatusAvailable, Price: Money{Amount: 10, Currency: "USD"},
	}
	other := "t2"
	title := "Casa reformada"
	sold := StatusSold
	cur := "uyu"
	patch := PropertyPatch{TenantID: &other, Title: &title, Status: &sold, Currency: &cur}

	out, err := patch.Apply(p)
	require.NoError(t, err)
	require.Equal(t, "t1", out.TenantID)
	require.Equal(t, "casa-p1", out.Slug)
	require.Equal(t, title, out.Title)
	require.Equal(t, StatusSold, out.Status)
	require.Equal(t, "UYU", out.Price.Currency)

	// sold back to available is allowed
	avail := StatusAvailable
	out, err = PropertyPatch{Status: &avail}.Apply(out)
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, out.Status)

	_, err = PropertyPatch{Price: pf(-5)}.Apply(p)
	requireField(t, err, "price")
}

func TestProperty_Cover(t *testing.T) {
	require.Equal(t, "", Property{}.Cover())
	require.Equal(t, "a.jpg", Property{Images: []string{"a.jpg", "b.jpg"}}.Cover())
}

func TestPropertyDraft_ColumnLimits(t *testing.T) {
	cases := map[string]func(*PropertyDraft){
		"title":            func(d *PropertyDraft) { d.Title = strings.Repeat("a", MaxTitleLen+1) },
		"location.city":    func(d *PropertyDraft) { d.Location.City = strings.Repeat("c", MaxPlaceLen+1) },
		"location.state":   func(d *PropertyDraft) { d.Location.State = strings.Repeat("s", MaxPlaceLen+1) },
		"location.country": func(d *PropertyDraft) { d.Location.Country = strings.Repeat("p", MaxPlaceLen+1) },
		"location.address": func(d *PropertyDraft) { d.Location.Address = strings.Repeat("d", MaxAddressLen+1) },
		"currency":         func(d *PropertyDraft) { d.Currency = "US$" },
		"area.unit":        func(d *PropertyDraft) { d.Area = &Area{Value: 1, Unit: strings.Repeat("u", MaxAreaUnitLen+1)} },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			d := validDraft()
			mutate(&d)
			requireField(t, d.Validate(), field)
		})
	}

	// limits count characters, not bytes
	d := validDraft()
	d.Title = strings.Repeat("ñ", MaxTitleLen)
	d.Currency = " uyu "
	require.NoError(t, d.Validate())
	require.Equal(t, "uyu", d.Currency)
}

func TestPropertyPatch_ColumnLimits(t *testing.T) {
	p := Property{ID: "p1", TenantID: "t1", Title: "Casa", Location: Location{City: "Rocha"}}
	long := strings.Repeat("x", MaxTitleLen+1)
	eur, bad := "eur", "EURO"

	_, err := PropertyPatch{Title: &long}.Apply(p)
	requireField(t, err, "title")
	_, err = PropertyPatch{Currency: &bad}.Apply(p)
	requireField(t, err, "currency")
	_, err = PropertyPatch{Location: &Location{City: "Rocha", State: long}}.Apply(p)
	requireField(t, err, "location.state")

	out, err := PropertyPatch{Currency: &eur}.Apply(p)
	require.NoError(t, err)
	require.Equal(t, "EUR", out.Price.Currency)
}

func TestPropertyPatch_ClearsAreaAndImages(t *testing.T) {
	p := Property{
		ID: "p1", TenantID: "t1", Title: "Casa",
		Location: Location{City: "Rocha"},
		Area:     &Area{Value: 120, Unit: "m2"},
		Images:   []string{"a.jpg", "b.jpg"},
	}
	decode := func(body string) PropertyPatch {
		var patch PropertyPatch
		require.NoError(t, json.Unmarshal([]byte(body), &patch))
		return patch
	}

	out, err := decode(`{"title":"Casa grande"}`).Apply(p)
	require.NoError(t, err)
	require.Equal(t, &Area{Value: 120, Unit: "m2"}, out.Area)
	require.Len(t, out.Images, 2)

	out, err = decode(`{"area":{"value":80,"unit":"m2"}}`).Apply(p)
	require.NoError(t, err)
	require.Equal(t, 80.0, out.Area.Value)
	require.Equal(t, 120.0, p.Area.Value, "input must not be mutated")

	out, err = decode(`{"area":null,"images":[]}`).Apply(p)
	require.NoError(t, err)
	require.Nil(t, out.Area)
	require.NotNil(t, out.Images)
	require.Empty(t, out.Images)

	_, err = decode(`{"area":{"value":-1,"unit":"m2"}}`).Apply(p)
	requireField(t, err, "area")
}
