package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HerbHall/cinelens/pkg/models"
)

// ParseMillimeters parses a free-text millimeter measurement such as
// "46.31mm" or "43,3 mm". Empty input and the "-" placeholder yield ok=false.
func ParseMillimeters(raw string) (mm float64, ok bool) {
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "mm", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// RecordingDiagonal returns the diagonal of a recording area. Both sides
// must parse to positive values.
func RecordingDiagonal(widthMm, heightMm string) (diagonal float64, ok bool) {
	w, wok := ParseMillimeters(widthMm)
	h, hok := ParseMillimeters(heightMm)
	if !wok || !hok || w <= 0 || h <= 0 {
		return 0, false
	}
	return math.Hypot(w, h), true
}

// CompatibilityStatus is the coverage verdict for a lens on a recording format.
type CompatibilityStatus string

const (
	CompatibilityUnknown            CompatibilityStatus = "unknown"
	CompatibilityFullCoverage       CompatibilityStatus = "full_coverage"
	CompatibilityPossibleVignetting CompatibilityStatus = "possible_vignetting"
)

// CompatibilityVerdict explains a coverage decision. The measurements are nil
// when they could not be parsed.
type CompatibilityVerdict struct {
	Status        CompatibilityStatus `json:"status"`
	Reason        string              `json:"reason"`
	ImageCircleMm *float64            `json:"image_circle_mm,omitempty"`
	DiagonalMm    *float64            `json:"diagonal_mm,omitempty"`
}

// CheckCompatibility compares a lens image circle against a recording
// diagonal. The comparison is exact: no tolerance, no rounding.
func CheckCompatibility(imageCircleMm, diagonalMm *float64) CompatibilityVerdict {
	v := CompatibilityVerdict{
		Status:        CompatibilityUnknown,
		ImageCircleMm: imageCircleMm,
		DiagonalMm:    diagonalMm,
	}

	switch {
	case imageCircleMm == nil && diagonalMm == nil:
		v.Reason = "lens image circle and recording size are unknown"
	case imageCircleMm == nil:
		v.Reason = "lens image circle is unknown"
	case diagonalMm == nil:
		v.Reason = "recording size is unknown"
	case *imageCircleMm >= *diagonalMm:
		v.Status = CompatibilityFullCoverage
		v.Reason = fmt.Sprintf("image circle %.2f mm covers the %.2f mm recording diagonal", *imageCircleMm, *diagonalMm)
	default:
		v.Status = CompatibilityPossibleVignetting
		v.Reason = fmt.Sprintf("image circle %.2f mm is smaller than the %.2f mm recording diagonal", *imageCircleMm, *diagonalMm)
	}
	return v
}

// CheckLensFormat parses the free-text measurements and checks coverage.
func CheckLensFormat(lensImageCircle, formatWidth, formatHeight string) CompatibilityVerdict {
	return CheckCompatibility(optional(ParseMillimeters(lensImageCircle)), optional(RecordingDiagonal(formatWidth, formatHeight)))
}

// CheckRecordingFormat checks a lens against a camera recording format. When
// the format has no usable width and height, its published image circle is
// used as the diagonal.
func CheckRecordingFormat(lens models.Lens, format models.RecordingFormat) CompatibilityVerdict {
	diag := optional(RecordingDiagonal(format.RecordingWidthMm, format.RecordingHeightMm))
	if diag == nil {
		if d, ok := ParseMillimeters(format.RecordingImageCircleMm); ok && d > 0 {
			diag = &d
		}
	}
	return CheckCompatibility(optional(ParseMillimeters(lens.ImageCircle)), diag)
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
