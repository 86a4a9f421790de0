package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text limits match the column widths in migrations/001_init.sql so every
// store accepts the same input.
const (
	MaxTitleLen    = 255
	MaxPlaceLen    = 128
	MaxAddressLen  = 255
	MaxAreaUnitLen = 16
	MaxSlugLen     = 255

	MaxNameLen  = 255
	MaxEmailLen = 255
	MaxPhoneLen = 64
	MaxRefLen   = 36
)

func tooLong(field, s string, n int) error {
	if utf8.RuneCountInString(s) > n {
		return invalid(field, fmt.Sprintf("must be at most %d characters", n))
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// checkLocation requires a city and bounds every text part.
func checkLocation(l Location) error {
	if strings.TrimSpace(l.City) == "" {
		return invalid("location.city", "is required")
	}
	return firstErr(
		tooLong("location.city", strings.TrimSpace(l.City), MaxPlaceLen),
		tooLong("location.state", l.State, MaxPlaceLen),
		tooLong("location.country", l.Country, MaxPlaceLen),
		tooLong("location.address", l.Address, MaxAddressLen),
	)
}

// checkCurrency accepts a three-letter ISO 4217 style code in any case.
func checkCurrency(c string) error {
	if len(c) != 3 {
		return invalid("currency", "must be a three-letter code")
	}
	for i := 0; i < len(c); i++ {
		ch := c[i] | 0x20
		if ch < 'a' || ch > 'z' {
			return invalid("currency", "must be a three-letter code")
		}
	}
	return nil
}

func checkArea(a *Area) error {
	if a == nil {
		return nil
	}
	if a.Value < 0 {
		return invalid("area", "must be >= 0")
	}
	return tooLong("area.unit", a.Unit, MaxAreaUnitLen)
}
