package catalog

import (
	"fmt"
	"strings"
)

// LensFormatCategory is a coarse coverage bucket derived from a lens's
// free-text format tag.
type LensFormatCategory string

const (
	LensFormatS16   LensFormatCategory = "s16"
	LensFormatS35   LensFormatCategory = "s35"
	LensFormatFF    LensFormatCategory = "ff"
	LensFormatVV    LensFormatCategory = "vv"
	LensFormatLF    LensFormatCategory = "lf"
	LensFormatMFT   LensFormatCategory = "mft"
	LensFormatOther LensFormatCategory = "other"
)

// LensFormatCategories lists every category in display order.
var LensFormatCategories = []LensFormatCategory{
	LensFormatS16, LensFormatS35, LensFormatFF, LensFormatVV, LensFormatLF, LensFormatMFT, LensFormatOther,
}

// lensFormatPatterns are checked in order against the compacted tag.
var lensFormatPatterns = []struct {
	category LensFormatCategory
	needles  []string
}{
	{LensFormatMFT, []string{"mft", "microfourthirds", "micro43", "m43"}},
	{LensFormatS16, []string{"s16", "super16"}},
	{LensFormatS35, []string{"s35", "super35"}},
	{LensFormatVV, []string{"vv", "vistavision"}},
	// FF precedes LF: "fullframe" contains "lf".
	{LensFormatFF, []string{"ff", "fullframe"}},
	{LensFormatLF, []string{"lf", "largeformat"}},
}

var tagCompactor = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "", "/", "")

// ClassifyLensFormat maps a raw format tag to its category. Matching is
// case-insensitive and tolerates surrounding text ("Super 35 (S35)").
// Empty or unrecognised tags classify as LensFormatOther.
func ClassifyLensFormat(tag string) LensFormatCategory {
	compact := tagCompactor.Replace(strings.ToLower(strings.TrimSpace(tag)))
	if compact == "" {
		return LensFormatOther
	}
	for _, p := range lensFormatPatterns {
		for _, n := range p.needles {
			if strings.Contains(compact, n) {
				return p.category
			}
		}
	}
	return LensFormatOther
}

// Label returns the conventional abbreviation.
func (c LensFormatCategory) Label() string {
	if c == LensFormatOther {
		return "Other"
	}
	return strings.ToUpper(string(c))
}

// ParseLensFormatCategory parses a category name such as "S35" or "ff".
func ParseLensFormatCategory(s string) (LensFormatCategory, error) {
	want := LensFormatCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range LensFormatCategories {
		if c == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown lens format category %q", s)
}
