package domain

import (
	"errors"
	"math"
	"net/url"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseSearchQuery(t *testing.T) {
	v := url.Values{
		"type":     {"House"},
		"priceMin": {"100000"},
		"priceMax": {"300000"},
		"city":     {"monte"},
		"rooms":    {"2"},
		"featured": {"true"},
		"page":     {"3"},
		"pageSize": {"5000"},
		"sort":     {"-price"},
		"colour":   {"blue"},
	}
	q, err := ParseSearchQuery(v)
	require.NoError(t, err)
	require.Equal(t, TypeHouse, *q.Filter.Type)
	require.Equal(t, 100000.0, *q.Filter.PriceMin)
	require.Equal(t, 300000.0, *q.Filter.PriceMax)
	require.Equal(t, "monte", *q.Filter.City)
	require.Equal(t, 2, *q.Filter.Rooms)
	require.True(t, *q.Filter.Featured)
	require.Nil(t, q.Filter.Status)
	require.Equal(t, Pagination{Page: 3, PageSize: MaxPageSize}, q.Page)
	require.Equal(t, Ordering{Field: SortPrice, Desc: true}, q.Order)
}

func TestParseSearchQuery_Defaults(t *testing.T) {
	q, err := ParseSearchQuery(url.Values{})
	require.NoError(t, err)
	require.Equal(t, Pagination{Page: 1, PageSize: DefaultPageSize}, q.Page)
	require.Equal(t, DefaultOrdering(), q.Order)
}

func TestParseSearchQuery_Invalid(t *testing.T) {
	cases := map[string]url.Values{
		"priceMin":  {"priceMin": {"cheap"}},
		"areaMax":   {"areaMax": {"NaN"}},
		"rooms":     {"rooms": {"2.5"}},
		"type":      {"type": {"castle"}},
		"status":    {"status": {"gone"}},
		"featured":  {"featured": {"maybe"}},
		"page":      {"page": {"0"}},
		"pageSize":  {"pageSize": {"-1"}},
		"bathrooms": {"bathrooms": {"x"}},
	}
	for field, v := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := ParseSearchQuery(v)
			var ferr *InvalidFilterError
			require.True(t, errors.As(err, &ferr), "got %v", err)
			require.Equal(t, field, ferr.Field)
		})
	}
}

func TestParseOrdering(t *testing.T) {
	require.Equal(t, Ordering{Field: SortTitle}, ParseOrdering("title"))
	require.Equal(t, Ordering{Field: SortArea, Desc: true}, ParseOrdering("-area"))
	require.Equal(t, DefaultOrdering(), ParseOrdering("-bogus"))
	require.Equal(t, "-createdAt", DefaultOrdering().String())
}

func TestFilter_Matches(t *testing.T) {
	p := Property{
		Title:       "Casa con piscina",
		Description: "Amplia casa frente al mar",
		Type:        TypeHouse,
		Purpose:     PurposeSale,
		Status:      StatusAvailable,
		Price:       Money{Amount: 150000},
		Location:    Location{City: "Punta del Este"},
		Rooms:       3,
		Bathrooms:   2,
	}
	str := func(s string) *string { return &s }
	num := func(i int) *int { return &i }
	inactive := StatusInactive
	land := TypeLand

	require.True(t, PropertyFilter{}.Matches(p))
	require.True(t, PropertyFilter{City: str("PUNTA")}.Matches(p))
	require.True(t, PropertyFilter{Search: str("MAR")}.Matches(p))
	require.True(t, PropertyFilter{Search: str("punta")}.Matches(p))
	require.False(t, PropertyFilter{Search: str("chacra")}.Matches(p))
	require.True(t, PropertyFilter{PriceMin: pf(150000), PriceMax: pf(150000)}.Matches(p))
	require.False(t, PropertyFilter{PriceMax: pf(149999.99)}.Matches(p))
	require.True(t, PropertyFilter{Rooms: num(3)}.Matches(p))
	require.False(t, PropertyFilter{Rooms: num(4)}.Matches(p))
	require.False(t, PropertyFilter{Type: &land}.Matches(p))
	require.False(t, PropertyFilter{AreaMin: pf(0)}.Matches(p), "no area never matches an area bound")

	sp := p
	sp.Location.City = "São Paulo"
	require.True(t, PropertyFilter{City: str("SÃO")}.Matches(sp))
	require.False(t, PropertyFilter{City: str("sao")}.Matches(sp), "accents are significant")

	p.Status = StatusInactive
	require.False(t, PropertyFilter{}.Matches(p))
	require.True(t, PropertyFilter{Status: &inactive}.Matches(p))
}

func TestOrdering_TieBreakByID(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Property{
		{ID: "c", CreatedAt: ts, Price: Money{Amount: 1}},
		{ID: "a", CreatedAt: ts, Price: Money{Amount: 1}},
		{ID: "b", CreatedAt: ts.Add(time.Hour), Price: Money{Amount: 2}},
	}
	o := DefaultOrdering()
	sort.Slice(items, func(i, j int) bool { return o.Less(items[i], items[j]) })
	require.Equal(t, []string{"b", "a", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})

	o = Ordering{Field: SortPrice}
	sort.Slice(items, func(i, j int) bool { return o.Less(items[i], items[j]) })
	require.Equal(t, []string{"a", "c", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestPagination(t *testing.T) {
	p := Pagination{}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.PageSize)
	require.Equal(t, 0, p.Offset())
	require.Equal(t, 3, Pagination{Page: 1, PageSize: 20}.TotalPages(41))
	require.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.TotalPages(0))
}

func TestPagination_OffsetSaturates(t *testing.T) {
	require.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
	require.Equal(t, math.MaxInt, Pagination{Page: math.MaxInt, PageSize: 20}.Offset())
	require.Equal(t, math.MaxInt, Pagination{Page: math.MaxInt / 2, PageSize: MaxPageSize}.Offset())

	q, err := ParseSearchQuery(url.Values{"page": {"9223372036854775807"}})
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, q.Page.Offset())
}
