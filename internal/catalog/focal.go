package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMainFocal returns the first numeric token of a free-text focal length.
// Tokens are split on spaces, hyphens and en dashes and reduced to digits and
// periods. "24-70mm" yields 24; "Variable" and "" yield ok=false.
func ParseMainFocal(focalLength string) (focal float64, ok bool) {
	tokens := strings.FieldsFunc(focalLength, func(r rune) bool {
		return r == ' ' || r == '-' || r == '–'
	})

	for _, tok := range tokens {
		digits := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, tok)
		if digits == "" {
			continue
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// FocalCategory buckets lenses by their main focal length.
type FocalCategory string

const (
	FocalAll       FocalCategory = "all"
	FocalUltraWide FocalCategory = "ultra_wide"
	FocalWide      FocalCategory = "wide"
	FocalStandard  FocalCategory = "standard"
	FocalTele      FocalCategory = "tele"
	FocalSuperTele FocalCategory = "super_tele"
)

// FocalCategories lists the selectable categories in display order.
var FocalCategories = []FocalCategory{
	FocalAll, FocalUltraWide, FocalWide, FocalStandard, FocalTele, FocalSuperTele,
}

// Upper bounds (inclusive) of each bucket. Buckets are contiguous, so a
// fractional focal such as 12.5mm lands in Wide.
const (
	ultraWideMax = 12
	wideMax      = 35
	standardMax  = 70
	teleMax      = 180
)

// ClassifyFocal returns the bucket for a focal length. Unknown focal lengths
// (ok=false) classify as FocalAll, which carries no bucket.
func ClassifyFocal(focal float64, ok bool) FocalCategory {
	switch {
	case !ok:
		return FocalAll
	case focal <= ultraWideMax:
		return FocalUltraWide
	case focal <= wideMax:
		return FocalWide
	case focal <= standardMax:
		return FocalStandard
	case focal <= teleMax:
		return FocalTele
	default:
		return FocalSuperTele
	}
}

// Contains reports whether a focal length belongs to the category. An
// unknown focal length never matches, not even FocalAll.
func (c FocalCategory) Contains(focal float64, ok bool) bool {
	if !ok {
		return false
	}
	if c == FocalAll || c == "" {
		return true
	}
	return ClassifyFocal(focal, true) == c
}

// Label returns a human-readable name.
func (c FocalCategory) Label() string {
	switch c {
	case FocalUltraWide:
		return "Ultra Wide"
	case FocalWide:
		return "Wide"
	case FocalStandard:
		return "Standard"
	case FocalTele:
		return "Tele"
	case FocalSuperTele:
		return "Super Tele"
	default:
		return "All"
	}
}

// ParseFocalCategory parses a category name. The empty string means FocalAll.
func ParseFocalCategory(s string) (FocalCategory, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)) {
	case "", "all":
		return FocalAll, nil
	case "ultrawide":
		return FocalUltraWide, nil
	case "wide":
		return FocalWide, nil
	case "standard", "normal":
		return FocalStandard, nil
	case "tele":
		return FocalTele, nil
	case "supertele":
		return FocalSuperTele, nil
	}
	return "", fmt.Errorf("unknown focal category %q", s)
}
