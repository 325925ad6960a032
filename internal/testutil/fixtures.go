package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/HerbHall/cinelens/pkg/catalog"
	"github.com/HerbHall/cinelens/pkg/models"
)

// NewLens returns a Lens with sensible defaults, suitable for test fixtures.
func NewLens(opts ...func(*models.Lens)) models.Lens {
	l := models.Lens{
		ID:                 uuid.New().String(),
		DisplayName:        "Test Prime 50mm",
		Manufacturer:       "Testco",
		SeriesName:         "Test Prime",
		Format:             "FF",
		FocalLength:        "50mm",
		Aperture:           "T1.5",
		ImageCircle:        "46.5mm",
		LensFormatCategory: "FF",
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// WithID sets the lens id.
func WithID(id string) func(*models.Lens) {
	return func(l *models.Lens) { l.ID = id }
}

// WithName sets the lens display name.
func WithName(name string) func(*models.Lens) {
	return func(l *models.Lens) { l.DisplayName = name }
}

// WithManufacturer sets the lens manufacturer.
func WithManufacturer(m string) func(*models.Lens) {
	return func(l *models.Lens) { l.Manufacturer = m }
}

// WithSeries sets the lens series name.
func WithSeries(s string) func(*models.Lens) {
	return func(l *models.Lens) { l.SeriesName = s }
}

// WithFocal sets the free-text focal length.
func WithFocal(f string) func(*models.Lens) {
	return func(l *models.Lens) { l.FocalLength = f }
}

// WithFormat sets the lens format and its format category tag.
func WithFormat(format string) func(*models.Lens) {
	return func(l *models.Lens) {
		l.Format = format
		l.LensFormatCategory = format
	}
}

// WithImageCircle sets the free-text image circle.
func WithImageCircle(ic string) func(*models.Lens) {
	return func(l *models.Lens) { l.ImageCircle = ic }
}

var (
	fakeManufacturers = []string{"ARRI", "arri", "Cooke", "ZEISS", "Zeiss", "Angénieux", "Angenieux", "Canon.", "Leitz", "Sigma"}
	fakeSeries        = []string{"Signature Prime", "Signature Primes", "Master Prime", "S4/i", "Optimo", "Optimo Series", "Supreme Prime", "Special Edition", "Cine-Prime"}
	fakeFormats       = []string{"S16", "S35", "FF", "VV", "LF", "MFT", "Super 35", "Full Frame", ""}
	fakeFocals        = []string{"12mm", "14", "18mm", "24-70mm", "35mm", "50", "70mm", "100mm", "180mm", "280mm", "Variable", "", "12.5mm"}
)

// RandomLenses returns n lenses with messy, overlapping names drawn from f.
// The same seed always yields the same lenses.
func RandomLenses(f *gofakeit.Faker, n int) []models.Lens {
	lenses := make([]models.Lens, 0, n)
	for i := 0; i < n; i++ {
		format := f.RandomString(fakeFormats)
		focal := f.RandomString(fakeFocals)
		lenses = append(lenses, models.Lens{
			ID:                 fmt.Sprintf("lens-%03d", i),
			DisplayName:        fmt.Sprintf("%s %s", f.Word(), focal),
			Manufacturer:       f.RandomString(fakeManufacturers),
			SeriesName:         f.RandomString(fakeSeries),
			Format:             format,
			FocalLength:        focal,
			ImageCircle:        fmt.Sprintf("%.1fmm", f.Float64Range(15, 50)),
			LensFormatCategory: format,
		})
	}
	return lenses
}

// NewSnapshot returns a small catalog: three lenses, one camera with two
// recording formats, and two rental houses.
func NewSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Lenses: []models.Lens{
			NewLens(WithID("sp-18"), WithName("Signature Prime 18mm"), WithManufacturer("ARRI"),
				WithSeries("Signature Prime"), WithFocal("18mm"), WithFormat("LF"), WithImageCircle("46.31mm")),
			NewLens(WithID("up-32"), WithName("Ultra Prime 32mm"), WithManufacturer("ARRI"),
				WithSeries("Ultra Prime"), WithFocal("32mm"), WithFormat("S35"), WithImageCircle("31.1mm")),
			NewLens(WithID("opt-24-290"), WithName("Optimo 24-290mm"), WithManufacturer("Angénieux"),
				WithSeries("Optimo Series"), WithFocal("24-290mm"), WithFormat("S35"), WithImageCircle("-")),
		},
		Cameras: []models.Camera{
			{ID: "mini-lf", Manufacturer: "ARRI", Model: "Alexa Mini LF"},
		},
		RecordingFormats: []models.RecordingFormat{
			{ID: "lf-og", CameraID: "mini-lf", RecordingFormatName: "LF Open Gate", RecordingWidthMm: "36.70", RecordingHeightMm: "25.54"},
			{ID: "lf-s35", CameraID: "mini-lf", RecordingFormatName: "S35 2.8K", RecordingWidthMm: "23.76", RecordingHeightMm: "17.82"},
		},
		Rentals: []models.Rental{
			{ID: "north", Name: "Northlight"},
			{ID: "meridian", Name: "Meridian"},
		},
		Inventory: []models.InventoryItem{
			{RentalID: "north", LensID: "sp-18"},
			{RentalID: "meridian", LensID: "up-32"},
			{RentalID: "meridian", LensID: "sp-18"},
		},
	}
}

// NewProject returns a Project with sensible defaults.
func NewProject(opts ...func(*models.Project)) models.Project {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := models.Project{
		ID:        uuid.New().String(),
		Name:      "Test Shoot",
		Date:      now,
		LensIDs:   []string{},
		CameraIDs: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
