package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

// PropertyFilter holds every supported search criterion. Nil means no
// constraint; all set criteria are ANDed.
type PropertyFilter struct {
	Type          *PropertyType
	Purpose       *Purpose
	Status        *PropertyStatus
	PriceMin      *float64
	PriceMax      *float64
	AreaMin       *float64
	AreaMax       *float64
	City          *string
	Rooms         *int
	Bathrooms     *int
	ParkingSpaces *int
	Search        *string
	Featured      *bool
}

type Pagination struct {
	Page     int
	PageSize int
}

// Normalize fills zero values with defaults.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset is the number of items before the page. It saturates at math.MaxInt
// so far pages land past the end instead of wrapping negative.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(total/pageSize).
func (p Pagination) TotalPages(total int) int {
	if p.PageSize <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortPrice     SortField = "price"
	SortArea      SortField = "area"
	SortTitle     SortField = "title"
	SortRooms     SortField = "rooms"
)

// Ordering sorts by Field and then by ID ascending so pages stay stable.
type Ordering struct {
	Field SortField
	Desc  bool
}

func DefaultOrdering() Ordering { return Ordering{Field: SortCreatedAt, Desc: true} }

// ParseOrdering accepts "field" or "-field". Unknown fields fall back to the default.
func ParseOrdering(s string) Ordering {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultOrdering()
	}
	desc := strings.HasPrefix(s, "-")
	field := SortField(strings.TrimPrefix(s, "-"))
	switch field {
	case SortCreatedAt, SortPrice, SortArea, SortTitle, SortRooms:
		return Ordering{Field: field, Desc: desc}
	}
	return DefaultOrdering()
}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}

// Less reports whether a sorts before b.
func (o Ordering) Less(a, b Property) bool {
	c := o.compare(a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if o.Desc {
		return c > 0
	}
	return c < 0
}

func (o Ordering) compare(a, b Property) int {
	switch o.Field {
	case SortPrice:
		return cmpFloat(a.Price.Amount, b.Price.Amount)
	case SortArea:
		return cmpFloat(areaValue(a), areaValue(b))
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortRooms:
		return a.Rooms - b.Rooms
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func areaValue(p Property) float64 {
	if p.Area == nil {
		return -1
	}
	return p.Area.Value
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type SearchQuery struct {
	Filter PropertyFilter
	Page   Pagination
	Order  Ordering
}

type SearchResult struct {
	Items      []Property `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// Matches reports whether p satisfies every set criterion of f.
func (f PropertyFilter) Matches(p Property) bool {
	if f.Status != nil {
		if p.Status != *f.Status {
			return false
		}
	} else if p.Status == StatusInactive {
		return false
	}
	if f.Type != nil && p.Type != *f.Type {
		return false
	}
	if f.Purpose != nil && p.Purpose != *f.Purpose {
		return false
	}
	if f.PriceMin != nil && p.Price.Amount < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price.Amount > *f.PriceMax {
		return false
	}
	if f.AreaMin != nil || f.AreaMax != nil {
		if p.Area == nil {
			return false
		}
		if f.AreaMin != nil && p.Area.Value < *f.AreaMin {
			return false
		}
		if f.AreaMax != nil && p.Area.Value > *f.AreaMax {
			return false
		}
	}
	if f.City != nil && !containsFold(p.Location.City, *f.City) {
		return false
	}
	if f.Rooms != nil && p.Rooms < *f.Rooms {
		return false
	}
	if f.Bathrooms != nil && p.Bathrooms < *f.Bathrooms {
		return false
	}
	if f.ParkingSpaces != nil && p.ParkingSpaces < *f.ParkingSpaces {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search != nil {
		q := *f.Search
		if !containsFold(p.Title, q) && !containsFold(p.Description, q) && !containsFold(p.Location.City, q) {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ParseSearchQuery builds a SearchQuery from URL query parameters. Unknown
// keys are ignored; malformed values fail with *InvalidFilterError.
func ParseSearchQuery(v url.Values) (SearchQuery, error) {
	var (
		q   SearchQuery
		err error
	)
	f := &q.Filter

	if s := get(v, "type"); s != "" {
		t := PropertyType(strings.ToLower(s))
		if !t.Valid() {
			return SearchQuery{}, &InvalidFilterError{Field: "type", Value: s}
		}
		f.Type = &t
	}
	if s := get(v, "purpose"); s != "" {
		p := Purpose(strings.ToLower(s))
		if !p.Valid() {
			return SearchQuery{}, &InvalidFilterError{Field: "purpose", Value: s}
		}
		f.Purpose = &p
	}
	if s := get(v, "status"); s != "" {
		st := PropertyStatus(strings.ToLower(s))
		if !st.Valid() {
			return SearchQuery{}, &InvalidFilterError{Field: "status", Value: s}
		}
		f.Status = &st
	}
	if f.PriceMin, err = floatParam(v, "priceMin"); err != nil {
		return SearchQuery{}, err
	}
	if f.PriceMax, err = floatParam(v, "priceMax"); err != nil {
		return SearchQuery{}, err
	}
	if f.AreaMin, err = floatParam(v, "areaMin"); err != nil {
		return SearchQuery{}, err
	}
	if f.AreaMax, err = floatParam(v, "areaMax"); err != nil {
		return SearchQuery{}, err
	}
	if f.Rooms, err = intParam(v, "rooms"); err != nil {
		return SearchQuery{}, err
	}
	if f.Bathrooms, err = intParam(v, "bathrooms"); err != nil {
		return SearchQuery{}, err
	}
	if f.ParkingSpaces, err = intParam(v, "parkingSpaces"); err != nil {
		return SearchQuery{}, err
	}
	if s := get(v, "city"); s != "" {
		f.City = &s
	}
	if s := get(v, "search"); s != "" {
		f.Search = &s
	}
	if s := get(v, "featured"); s != "" {
		b, perr := strconv.ParseBool(s)
		if perr != nil {
			return SearchQuery{}, &InvalidFilterError{Field: "featured", Value: s}
		}
		f.Featured = &b
	}

	page, err := intParam(v, "page")
	if err != nil {
		return SearchQuery{}, err
	}
	if page != nil {
		if *page < 1 {
			return SearchQuery{}, &InvalidFilterError{Field: "page", Value: get(v, "page")}
		}
		q.Page.Page = *page
	}
	size, err := intParam(v, "pageSize")
	if err != nil {
		return SearchQuery{}, err
	}
	if size != nil {
		if *size <= 0 {
			return SearchQuery{}, &InvalidFilterError{Field: "pageSize", Value: get(v, "pageSize")}
		}
		q.Page.PageSize = min(*size, MaxPageSize)
	}
	q.Page = q.Page.Normalize()
	q.Order = ParseOrdering(get(v, "sort"))
	return q, nil
}

func get(v url.Values, key string) string { return strings.TrimSpace(v.Get(key)) }

func floatParam(v url.Values, key string) (*float64, error) {
	s := get(v, key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &InvalidFilterError{Field: key, Value: s}
	}
	return &n, nil
}

func intParam(v url.Values, key string) (*int, error) {
	s := get(v, key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &InvalidFilterError{Field: key, Value: s}
	}
	return &n, nil
}
