package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"realty_catalog/internal/domain"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"title":       {"title", "name", "titulo"},
	"description": {"description", "descripcion", "body", "content"},
	"type":        {"type", "propertyType", "property_type", "tipo"},
	"purpose":     {"purpose", "operation", "operacion", "listingType"},
	"status":      {"status", "estado", "availability"},
	"currency":    {"currency", "moneda", "price.currency"},
	"city":        {"city", "location.city", "ciudad", "address.city"},
	"state":       {"state", "location.state", "departamento", "region"},
	"country":     {"country", "location.country", "pais"},
	"address":     {"address", "location.address", "direccion", "address.line"},
	"area_unit":   {"areaUnit", "area_unit", "area.unit", "unit"},
}

var numberAliases = map[string][]string{
	"price":     {"price", "price.amount", "precio"},
	"area":      {"area", "area.value", "surface", "superficie", "m2"},
	"lat":       {"lat", "latitude", "location.lat", "coordinates.lat"},
	"lng":       {"lng", "lon", "longitude", "location.lng", "coordinates.lng"},
	"rooms":     {"rooms", "bedrooms", "dormitorios", "habitaciones"},
	"bathrooms": {"bathrooms", "banos", "baths"},
	"parking":   {"parkingSpaces", "parking_spaces", "parking", "cocheras", "garages"},
}

var imagePaths = []string{"images", "images.data", "gallery", "gallery.data", "photos", "photos.data"}

// CMS vocabularies (English and Spanish) folded onto the catalog enums.
var typeWords = map[string]domain.PropertyType{
	"house": domain.TypeHouse, "casa": domain.TypeHouse,
	"apartment": domain.TypeApartment, "departamento": domain.TypeApartment, "flat": domain.TypeApartment,
	"farm": domain.TypeFarm, "finca": domain.TypeFarm, "chacra": domain.TypeFarm, "quinta": domain.TypeFarm,
	"ranch": domain.TypeRanch, "estancia": domain.TypeRanch,
	"land": domain.TypeLand, "terreno": domain.TypeLand, "lote": domain.TypeLand,
	"commercial": domain.TypeCommercial, "comercial": domain.TypeCommercial, "local": domain.TypeCommercial,
	"warehouse": domain.TypeWarehouse, "deposito": domain.TypeWarehouse, "galpon": domain.TypeWarehouse,
}

var purposeWords = map[string]domain.Purpose{
	"sale": domain.PurposeSale, "venta": domain.PurposeSale, "sell": domain.PurposeSale,
	"rent": domain.PurposeRent, "alquiler": domain.PurposeRent, "rental": domain.PurposeRent,
}

var statusWords = map[string]domain.PropertyStatus{
	"available": domain.StatusAvailable, "disponible": domain.StatusAvailable,
	"reserved": domain.StatusReserved, "reservado": domain.StatusReserved,
	"sold": domain.StatusSold, "vendido": domain.StatusSold,
	"rented": domain.StatusRented, "alquilado": domain.StatusRented,
	"inactive": domain.StatusInactive, "inactivo": domain.StatusInactive, "draft": domain.StatusInactive,
}

/********** mapping **********/

// ImportID derives the stable catalog id of a CMS entry so re-imports update
// the same listing.
func ImportID(tenantID, externalKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("strapi:"+tenantID+":"+externalKey)).String()
}

// mapListing converts one raw CMS entry (flat or wrapped in "attributes")
// into a draft and the entry's external key.
func mapListing(entry map[string]any) (string, domain.PropertyDraft, error) {
	m := entry
	if attrs, ok := entry["attributes"].(map[string]any); ok {
		m = attrs
	}

	key := lookupStr(entry, "documentId")
	if key == "" {
		if id := firstInt64Flexible(entry, "id"); id != nil {
			key = strconv.FormatInt(*id, 10)
		}
	}
	if key == "" {
		return "", domain.PropertyDraft{}, fmt.Errorf("entry without id or documentId")
	}

	d := domain.PropertyDraft{
		Title:       deref(firstNonEmptyAlias(m, listingAliases, "title")),
		Description: deref(firstNonEmptyAlias(m, listingAliases, "description")),
		Currency:    deref(firstNonEmptyAlias(m, listingAliases, "currency")),
		Price:       getFloatFlexible(m, numberAliases["price"]...),
		Images:      firstSliceStrings(m, imagePaths...),
	}
	if w := deref(firstNonEmptyAlias(m, listingAliases, "type")); w != "" {
		d.Type = foldWord(w, typeWords, domain.PropertyType(w))
	}
	if w := deref(firstNonEmptyAlias(m, listingAliases, "purpose")); w != "" {
		d.Purpose = foldWord(w, purposeWords, domain.Purpose(w))
	}
	if w := deref(firstNonEmptyAlias(m, listingAliases, "status")); w != "" {
		d.Status = foldWord(w, statusWords, domain.PropertyStatus(w))
	}
	// drafts come back with an explicit null publishedAt
	if v, present := m["publishedAt"]; present && v == nil {
		d.Status = domain.StatusInactive
	}

	if city := deref(firstNonEmptyAlias(m, listingAliases, "city")); city != "" {
		d.Location = &domain.Location{
			City:    city,
			State:   deref(firstNonEmptyAlias(m, listingAliases, "state")),
			Country: deref(firstNonEmptyAlias(m, listingAliases, "country")),
			Address: deref(firstNonEmptyAlias(m, listingAliases, "address")),
			Lat:     getFloatFlexible(m, numberAliases["lat"]...),
			Lng:     getFloatFlexible(m, numberAliases["lng"]...),
		}
	}
	if a := getFloatFlexible(m, numberAliases["area"]...); a != nil {
		unit := deref(firstNonEmptyAlias(m, listingAliases, "area_unit"))
		if unit == "" {
			unit = "m2"
		}
		d.Area = &domain.Area{Value: *a, Unit: unit}
	}
	d.Rooms = intOr0(firstInt64Flexible(m, numberAliases["rooms"]...))
	d.Bathrooms = intOr0(firstInt64Flexible(m, numberAliases["bathrooms"]...))
	d.ParkingSpaces = intOr0(firstInt64Flexible(m, numberAliases["parking"]...))
	if b, ok := lookupAny(m, "featured").(bool); ok {
		d.Featured = b
	} else if b, ok := lookupAny(m, "destacado").(bool); ok {
		d.Featured = b
	}
	return key, d, nil
}

func foldWord[T ~string](w string, vocab map[string]T, fallback T) T {
	if v, ok := vocab[domain.Slugify(w)]; ok {
		return v
	}
	return T(strings.ToLower(string(fallback)))
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intOr0(p *int64) int {
	if p == nil || *p < 0 {
		return 0
	}
	return int(*p)
}

// getFloatFlexible: number from several paths (float64/int/string like "8,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with strings, {url} objects or Strapi v4
// media entries ({attributes:{url}}).
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if u := lookupStr(t, "url"); u != "" {
						out = append(out, u)
						continue
					}
					if u := lookupStr(t, "attributes.url"); u != "" {
						out = append(out, u)
						continue
					}
					if u := lookupStr(t, "src"); u != "" {
						out = append(out, u)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}
