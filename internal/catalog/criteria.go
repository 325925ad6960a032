package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseCriteria builds FilterCriteria from query parameters:
// q, format, focal, lens_format, manufacturer, rentable and rental.
// Unknown category values are an error.
func ParseCriteria(q url.Values) (FilterCriteria, error) {
	c := FilterCriteria{
		SearchText:   q.Get("q"),
		Format:       q.Get("format"),
		Manufacturer: q.Get("manufacturer"),
		RentalID:     q.Get("rental"),
	}

	focal, err := ParseFocalCategory(q.Get("focal"))
	if err != nil {
		return FilterCriteria{}, err
	}
	c.FocalCategory = focal

	if raw := strings.TrimSpace(q.Get("lens_format")); raw != "" {
		lf, err := ParseLensFormatCategory(raw)
		if err != nil {
			return FilterCriteria{}, err
		}
		c.LensFormatCategory = &lf
	}

	if raw := q.Get("rentable"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("invalid rentable value %q", raw)
		}
		c.OnlyRentable = b
	}

	return c, nil
}
