package catalog

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	fixtures "github.com/HerbHall/cinelens/internal/testutil"
	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
)

func TestEngine_EmbeddedLenses_Sorted(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalog())
	lenses, err := engine.Lenses(FilterCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lenses) < 20 {
		t.Fatalf("expected at least 20 lenses, got %d", len(lenses))
	}
	for i := 1; i < len(lenses); i++ {
		a, b := lenses[i-1], lenses[i]
		if displayLess(b.DisplayName, b.ID, a.DisplayName, a.ID) {
			t.Errorf("lenses not sorted: %q before %q", a.DisplayName, b.DisplayName)
		}
	}
}

func TestEngine_EmbeddedGroups_MergeSpellings(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalog())
	groups, err := engine.Groups(FilterCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byKey := make(map[string]LensGroup)
	for _, g := range groups {
		key := Normalize(g.Manufacturer)
		if _, dup := byKey[key]; dup {
			t.Errorf("manufacturer %q appears in more than one group", g.Manufacturer)
		}
		byKey[key] = g
	}

	for key, want := range map[string]string{"zeiss": "ZEISS", "angenieux": "Angenieux", "canon": "Canon"} {
		g, ok := byKey[key]
		if !ok {
			t.Errorf("missing group %q", key)
			continue
		}
		if g.Manufacturer != want {
			t.Errorf("group %q display = %q, want %q", key, g.Manufacturer, want)
		}
	}

	optimo := byKey["angenieux"]
	if len(optimo.Series) != 1 {
		t.Fatalf("Angenieux series = %d, want 1 (Optimo and Optimo Series merge)", len(optimo.Series))
	}
	if n := len(optimo.Series[0].Lenses); n != 2 {
		t.Errorf("Optimo lenses = %d, want 2", n)
	}
}

func TestEngine_Lens(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalog())
	l, err := engine.Lens("canon-sumire-14")
	if err != nil {
		t.Fatalf("Lens: %v", err)
	}
	if l.FocalLength != "14" {
		t.Errorf("FocalLength = %q, want 14", l.FocalLength)
	}
	if _, err := engine.Lens("nope"); !errors.Is(err, ErrLensNotFound) {
		t.Errorf("Lens(nope) error = %v, want ErrLensNotFound", err)
	}
}

func TestEngine_RentalLenses(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalogFrom(fixtures.NewSnapshot()))

	lenses, err := engine.RentalLenses("meridian", FilterCriteria{})
	if err != nil {
		t.Fatalf("RentalLenses: %v", err)
	}
	if got := ids(lenses); len(got) != 2 || got[0] != "sp-18" || got[1] != "up-32" {
		t.Errorf("RentalLenses(meridian) = %v, want [sp-18 up-32]", got)
	}

	lenses, err = engine.RentalLenses("meridian", FilterCriteria{Format: "S35"})
	if err != nil {
		t.Fatalf("RentalLenses: %v", err)
	}
	if len(lenses) != 1 {
		t.Errorf("RentalLenses(meridian, S35) = %d lenses, want 1", len(lenses))
	}

	if _, err := engine.RentalLenses("nowhere", FilterCriteria{}); !errors.Is(err, ErrRentalNotFound) {
		t.Errorf("error = %v, want ErrRentalNotFound", err)
	}
}

func TestEngine_CameraCompatibility(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalogFrom(fixtures.NewSnapshot()))

	verdicts, err := engine.CameraCompatibility("up-32", "mini-lf")
	if err != nil {
		t.Fatalf("CameraCompatibility: %v", err)
	}
	if len(verdicts) != 2 {
		t.Fatalf("verdicts = %d, want 2", len(verdicts))
	}
	// Ordered by format name: "LF Open Gate" then "S35 2.8K".
	if verdicts[0].Format.ID != "lf-og" || verdicts[0].Verdict.Status != CompatibilityPossibleVignetting {
		t.Errorf("verdicts[0] = %s/%s, want lf-og/possible_vignetting", verdicts[0].Format.ID, verdicts[0].Verdict.Status)
	}
	if verdicts[1].Format.ID != "lf-s35" || verdicts[1].Verdict.Status != CompatibilityFullCoverage {
		t.Errorf("verdicts[1] = %s/%s, want lf-s35/full_coverage", verdicts[1].Format.ID, verdicts[1].Verdict.Status)
	}

	v, err := engine.Compatibility("opt-24-290", "lf-og")
	if err != nil {
		t.Fatalf("Compatibility: %v", err)
	}
	if v.Verdict.Status != CompatibilityUnknown {
		t.Errorf("Status = %q, want unknown for '-' image circle", v.Verdict.Status)
	}

	if _, err := engine.CameraCompatibility("up-32", "nope"); !errors.Is(err, ErrCameraNotFound) {
		t.Errorf("error = %v, want ErrCameraNotFound", err)
	}
	if _, err := engine.Compatibility("up-32", "nope"); !errors.Is(err, ErrFormatNotFound) {
		t.Errorf("error = %v, want ErrFormatNotFound", err)
	}
}

func TestEngine_Formats(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalogFrom(fixtures.NewSnapshot()))
	formats, err := engine.Formats()
	if err != nil {
		t.Fatalf("Formats: %v", err)
	}
	if len(formats) != 2 || formats[0] != "LF" || formats[1] != "S35" {
		t.Errorf("Formats = %v, want [LF S35]", formats)
	}
}

func TestEngine_EmptyCatalog(t *testing.T) {
	engine := NewEngine(pkgcatalog.NewCatalogFrom(pkgcatalog.Snapshot{}))
	lenses, err := engine.Lenses(FilterCriteria{OnlyRentable: true})
	if err != nil || len(lenses) != 0 {
		t.Errorf("Lenses = (%d, %v), want (0, nil)", len(lenses), err)
	}
	groups, err := engine.Groups(FilterCriteria{})
	if err != nil || len(groups) != 0 {
		t.Errorf("Groups = (%d, %v), want (0, nil)", len(groups), err)
	}
}

func TestEngine_IndexFollowsReplace(t *testing.T) {
	cat := pkgcatalog.NewCatalogFrom(fixtures.NewSnapshot())
	engine := NewEngine(cat)

	if _, err := engine.Lens("sp-18"); err != nil {
		t.Fatalf("Lens before replace: %v", err)
	}
	cat.Replace(pkgcatalog.Snapshot{})
	if _, err := engine.Lens("sp-18"); !errors.Is(err, ErrLensNotFound) {
		t.Errorf("Lens after replace error = %v, want ErrLensNotFound", err)
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	engine := NewEngine(pkgcatalog.NewCatalogFrom(fixtures.NewSnapshot())).WithMetrics(m)

	if _, err := engine.Lenses(FilterCriteria{}); err != nil {
		t.Fatalf("Lenses: %v", err)
	}
	if got := testutil.ToFloat64(m.lenses); got != 3 {
		t.Errorf("lens gauge = %v, want 3", got)
	}

	m.ObserveReload("file", pkgcatalog.Snapshot{}, pkgcatalog.DecodeReport{}, errors.New("boom"))
	if got := testutil.ToFloat64(m.reloads.WithLabelValues("file", "error")); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveSnapshot(pkgcatalog.Snapshot{})
	nilMetrics.observeFilter(3)
}

func TestIndex_Resolve(t *testing.T) {
	idx := NewIndex(fixtures.NewSnapshot())
	got := ids(idx.Resolve([]string{"up-32", "gone", "sp-18"}))
	if len(got) != 2 || got[0] != "up-32" || got[1] != "sp-18" {
		t.Errorf("Resolve = %v, want [up-32 sp-18]", got)
	}
	if !idx.Rentable("sp-18") || idx.Rentable("opt-24-290") {
		t.Error("Rentable mismatch")
	}
	rentals := idx.RentalsForLens("sp-18")
	if len(rentals) != 2 || rentals[0].ID != "meridian" {
		t.Errorf("RentalsForLens(sp-18) = %v, want meridian first", rentals)
	}
}
