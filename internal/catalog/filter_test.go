package catalog

import (
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"

	"github.com/HerbHall/cinelens/internal/testutil"
	"github.com/HerbHall/cinelens/pkg/models"
)

func ids(lenses []models.Lens) []string {
	out := make([]string, 0, len(lenses))
	for _, l := range lenses {
		out = append(out, l.ID)
	}
	return out
}

func lensFormat(c LensFormatCategory) *LensFormatCategory { return &c }

func TestFilterLenses(t *testing.T) {
	snap := testutil.NewSnapshot()
	snap.Lenses = append(snap.Lenses,
		testutil.NewLens(testutil.WithID("zoom"), testutil.WithName("Mystery Zoom"), testutil.WithManufacturer("Fujinon"),
			testutil.WithSeries("Premista"), testutil.WithFocal("Variable"), testutil.WithFormat("")),
	)

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{"zero", FilterCriteria{}, []string{"sp-18", "up-32", "opt-24-290", "zoom"}},
		{"search display name", FilterCriteria{SearchText: "ultra"}, []string{"up-32"}},
		{"search series", FilterCriteria{SearchText: "PREMISTA"}, []string{"zoom"}},
		{"search manufacturer accent-insensitive", FilterCriteria{SearchText: "angenieux"}, []string{"opt-24-290"}},
		{"search whitespace only", FilterCriteria{SearchText: "  "}, []string{"sp-18", "up-32", "opt-24-290", "zoom"}},
		{"format exact", FilterCriteria{Format: "S35"}, []string{"up-32", "opt-24-290"}},
		{"format case-sensitive", FilterCriteria{Format: "s35"}, []string{}},
		{"focal all keeps unknown", FilterCriteria{FocalCategory: FocalAll}, []string{"sp-18", "up-32", "opt-24-290", "zoom"}},
		{"focal wide", FilterCriteria{FocalCategory: FocalWide}, []string{"sp-18", "up-32", "opt-24-290"}},
		{"focal tele", FilterCriteria{FocalCategory: FocalTele}, []string{}},
		{"lens format lf", FilterCriteria{LensFormatCategory: lensFormat(LensFormatLF)}, []string{"sp-18"}},
		{"lens format other", FilterCriteria{LensFormatCategory: lensFormat(LensFormatOther)}, []string{"zoom"}},
		{"manufacturer", FilterCriteria{Manufacturer: "arri"}, []string{"sp-18", "up-32"}},
		{"rentable", FilterCriteria{OnlyRentable: true}, []string{"sp-18", "up-32"}},
		{"rental", FilterCriteria{RentalID: "north"}, []string{"sp-18"}},
		{"unknown rental", FilterCriteria{RentalID: "nowhere"}, []string{}},
		{"and semantics", FilterCriteria{RentalID: "meridian", Format: "S35"}, []string{"up-32"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterLenses(snap.Lenses, snap.Inventory, tt.criteria))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterLenses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterLenses_Monotonic(t *testing.T) {
	f := gofakeit.New(3)
	lenses := testutil.RandomLenses(f, 120)
	inventory := []models.InventoryItem{
		{RentalID: "r1", LensID: lenses[0].ID},
		{RentalID: "r2", LensID: lenses[7].ID},
	}

	if diff := cmp.Diff(lenses, FilterLenses(lenses, inventory, FilterCriteria{})); diff != "" {
		t.Errorf("zero criteria changed input (-want +got):\n%s", diff)
	}

	for i := 0; i < 50; i++ {
		c := FilterCriteria{
			SearchText:    f.RandomString([]string{"", "prime", "a", "zeiss"}),
			Format:        f.RandomString([]string{"", "FF", "S35"}),
			FocalCategory: FocalCategories[f.IntRange(0, len(FocalCategories)-1)],
			OnlyRentable:  f.Bool(),
		}
		got := FilterLenses(lenses, inventory, c)
		if len(got) > len(lenses) {
			t.Fatalf("criteria %+v returned %d lenses from %d", c, len(got), len(lenses))
		}
	}
}

func TestFilterCriteria_IsZero(t *testing.T) {
	if !(FilterCriteria{}).IsZero() {
		t.Error("zero value IsZero = false")
	}
	if !(FilterCriteria{FocalCategory: FocalAll, SearchText: " "}).IsZero() {
		t.Error("FocalAll with blank search IsZero = false")
	}
	if (FilterCriteria{OnlyRentable: true}).IsZero() {
		t.Error("OnlyRentable IsZero = true")
	}
}

func TestParseCriteria(t *testing.T) {
	q := url.Values{
		"q":           {"prime"},
		"format":      {"FF"},
		"focal":       {"wide"},
		"lens_format": {"VV"},
		"rentable":    {"true"},
		"rental":      {"north"},
	}
	c, err := ParseCriteria(q)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	want := FilterCriteria{
		SearchText:         "prime",
		Format:             "FF",
		FocalCategory:      FocalWide,
		LensFormatCategory: lensFormat(LensFormatVV),
		OnlyRentable:       true,
		RentalID:           "north",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("ParseCriteria mismatch (-want +got):\n%s", diff)
	}

	c, err = ParseCriteria(url.Values{})
	if err != nil {
		t.Fatalf("ParseCriteria(empty): %v", err)
	}
	if !c.IsZero() {
		t.Errorf("ParseCriteria(empty) = %+v, want zero", c)
	}

	for _, bad := range []url.Values{
		{"focal": {"fisheye"}},
		{"lens_format": {"imax"}},
		{"rentable": {"maybe"}},
	} {
		if _, err := ParseCriteria(bad); err == nil {
			t.Errorf("ParseCriteria(%v) expected error", bad)
		}
	}
}
