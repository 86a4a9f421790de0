package domain

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, strips diacritics, collapses every run of characters
// outside [a-z0-9] into one hyphen and trims leading/trailing hyphens.
// Every URL derived from a listing must go through this function.
func Slugify(s string) string {
	// transformers keep state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	plain = strings.ToLower(plain)

	var b strings.Builder
	b.Grow(len(plain))
	pendingHyphen := false
	for _, r := range plain {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// PropertySlug derives the public slug of a listing from its title, location,
// price and id. The id suffix keeps it unique within a tenant; the descriptive
// prefix is cut so the whole slug stays within MaxSlugLen.
func PropertySlug(title string, loc Location, price float64, id string) string {
	suffix := Slugify(id)
	prefix := Slugify(strings.Join([]string{title, loc.City, loc.State, strconv.FormatFloat(price, 'f', -1, 64)}, " "))
	if room := MaxSlugLen - len(suffix) - 1; len(prefix) > room {
		prefix = strings.TrimRight(prefix[:max(room, 0)], "-")
	}
	switch {
	case prefix == "":
		return suffix
	case suffix == "":
		return prefix
	}
	return prefix + "-" + suffix
}
