package models

// Lens is a single cinema lens as published in the catalog. Numeric-looking
// fields stay free text because upstream data mixes strings and numbers.
type Lens struct {
	ID                 string `json:"id" yaml:"id"`
	DisplayName        string `json:"display_name" yaml:"display_name"`
	Manufacturer       string `json:"manufacturer" yaml:"manufacturer"`
	SeriesName         string `json:"series_name" yaml:"series_name"`
	Format             string `json:"format" yaml:"format"`
	FocalLength        string `json:"focal_length" yaml:"focal_length"`
	Aperture           string `json:"aperture" yaml:"aperture"`
	CloseFocusInches   string `json:"close_focus_in,omitempty" yaml:"close_focus_in,omitempty"`
	CloseFocusCm       string `json:"close_focus_cm,omitempty" yaml:"close_focus_cm,omitempty"`
	ImageCircle        string `json:"image_circle,omitempty" yaml:"image_circle,omitempty"`
	Length             string `json:"length,omitempty" yaml:"length,omitempty"`
	FrontDiameter      string `json:"front_diameter,omitempty" yaml:"front_diameter,omitempty"`
	SqueezeFactor      string `json:"squeeze_factor,omitempty" yaml:"squeeze_factor,omitempty"`
	LensFormatCategory string `json:"lens_format_category,omitempty" yaml:"lens_format_category,omitempty"`
}

// IsAnamorphic reports whether the lens declares a squeeze factor other than 1x.
func (l Lens) IsAnamorphic() bool {
	switch l.SqueezeFactor {
	case "", "1", "1x", "1.0", "1.0x", "-":
		return false
	}
	return true
}
