package catalog

import (
	"strings"

	"github.com/HerbHall/cinelens/pkg/models"
)

// FilterCriteria selects lenses. The zero value matches everything. Every
// active criterion must hold for a lens to be kept.
type FilterCriteria struct {
	// SearchText matches display name, series or manufacturer,
	// ignoring case and accents.
	SearchText string `json:"search_text,omitempty"`

	// Format must equal the lens format exactly (case-sensitive).
	Format string `json:"format,omitempty"`

	// FocalCategory narrows by main focal length. FocalAll and "" keep
	// lenses whose focal length cannot be parsed.
	FocalCategory FocalCategory `json:"focal_category,omitempty"`

	// LensFormatCategory narrows by coverage bucket; nil means unfiltered.
	LensFormatCategory *LensFormatCategory `json:"lens_format_category,omitempty"`

	// Manufacturer matches on the normalized manufacturer key.
	Manufacturer string `json:"manufacturer,omitempty"`

	// OnlyRentable keeps lenses stocked by at least one rental house.
	OnlyRentable bool `json:"only_rentable,omitempty"`

	// RentalID keeps lenses stocked by that rental house.
	RentalID string `json:"rental_id,omitempty"`
}

// IsZero reports whether no criterion is active.
func (c FilterCriteria) IsZero() bool {
	return strings.TrimSpace(c.SearchText) == "" &&
		c.Format == "" &&
		(c.FocalCategory == "" || c.FocalCategory == FocalAll) &&
		c.LensFormatCategory == nil &&
		c.Manufacturer == "" &&
		!c.OnlyRentable &&
		c.RentalID == ""
}

// stock is the rentable lens index derived from inventory.
type stock struct {
	all      map[string]struct{}
	byRental map[string]map[string]struct{}
}

func newStock(inventory []models.InventoryItem) stock {
	s := stock{
		all:      make(map[string]struct{}, len(inventory)),
		byRental: make(map[string]map[string]struct{}),
	}
	for i := range inventory {
		it := inventory[i]
		s.all[it.LensID] = struct{}{}
		set, ok := s.byRental[it.RentalID]
		if !ok {
			set = make(map[string]struct{})
			s.byRental[it.RentalID] = set
		}
		set[it.LensID] = struct{}{}
	}
	return s
}

// FilterLenses returns the lenses matching c, in input order. inventory is
// only consulted for the rental criteria.
func FilterLenses(lenses []models.Lens, inventory []models.InventoryItem, c FilterCriteria) []models.Lens {
	var st stock
	if c.OnlyRentable || c.RentalID != "" {
		st = newStock(inventory)
	}
	return filterWithStock(lenses, st, c)
}

func filterWithStock(lenses []models.Lens, st stock, c FilterCriteria) []models.Lens {
	query := fold(strings.TrimSpace(c.SearchText))
	manufacturer := Normalize(c.Manufacturer)

	var rental map[string]struct{}
	if c.RentalID != "" {
		rental = st.byRental[c.RentalID]
	}

	out := make([]models.Lens, 0, len(lenses))
	for i := range lenses {
		l := lenses[i]

		if query != "" && !matchesSearch(l, query) {
			continue
		}
		if c.Format != "" && l.Format != c.Format {
			continue
		}
		if c.FocalCategory != "" && c.FocalCategory != FocalAll {
			if !c.FocalCategory.Contains(ParseMainFocal(l.FocalLength)) {
				continue
			}
		}
		if c.LensFormatCategory != nil && ClassifyLensFormat(l.LensFormatCategory) != *c.LensFormatCategory {
			continue
		}
		if manufacturer != "" && Normalize(l.Manufacturer) != manufacturer {
			continue
		}
		if c.OnlyRentable {
			if _, ok := st.all[l.ID]; !ok {
				continue
			}
		}
		if c.RentalID != "" {
			if _, ok := rental[l.ID]; !ok {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func matchesSearch(l models.Lens, foldedQuery string) bool {
	return strings.Contains(fold(l.DisplayName), foldedQuery) ||
		strings.Contains(fold(l.SeriesName), foldedQuery) ||
		strings.Contains(fold(l.Manufacturer), foldedQuery)
}
