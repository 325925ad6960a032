package catalog

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"

	"github.com/HerbHall/cinelens/internal/testutil"
	"github.com/HerbHall/cinelens/pkg/models"
)

func TestGroupLenses_MergesSpellings(t *testing.T) {
	lenses := []models.Lens{
		testutil.NewLens(testutil.WithID("z50"), testutil.WithName("Supreme 50mm"), testutil.WithManufacturer("Zeiss"), testutil.WithSeries("Supreme Prime")),
		testutil.NewLens(testutil.WithID("z29"), testutil.WithName("Supreme 29mm"), testutil.WithManufacturer("ZEISS"), testutil.WithSeries("Supreme Prime")),
		testutil.NewLens(testutil.WithID("a1"), testutil.WithName("Optimo 15-40mm"), testutil.WithManufacturer("Angénieux"), testutil.WithSeries("Optimo Series")),
		testutil.NewLens(testutil.WithID("a2"), testutil.WithName("Optimo 24-290mm"), testutil.WithManufacturer("Angenieux"), testutil.WithSeries("Optimo")),
	}

	got := GroupLenses(lenses)

	type shape struct {
		Manufacturer string
		Series       []string
		IDs          [][]string
	}
	var gotShape []shape
	for _, g := range got {
		s := shape{Manufacturer: g.Manufacturer}
		for _, ser := range g.Series {
			s.Series = append(s.Series, ser.Name)
			var ids []string
			for _, l := range ser.Lenses {
				ids = append(ids, l.ID)
			}
			s.IDs = append(s.IDs, ids)
		}
		gotShape = append(gotShape, s)
	}

	want := []shape{
		{Manufacturer: "Angenieux", Series: []string{"Optimo"}, IDs: [][]string{{"a1", "a2"}}},
		{Manufacturer: "ZEISS", Series: []string{"Supreme Prime"}, IDs: [][]string{{"z29", "z50"}}},
	}
	if diff := cmp.Diff(want, gotShape); diff != "" {
		t.Errorf("GroupLenses mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupLenses_Empty(t *testing.T) {
	if got := GroupLenses(nil); len(got) != 0 {
		t.Errorf("GroupLenses(nil) = %d groups, want 0", len(got))
	}
}

func TestGroupLenses_Totality(t *testing.T) {
	f := gofakeit.New(1)
	for _, n := range []int{1, 2, 17, 150} {
		lenses := testutil.RandomLenses(f, n)
		total := 0
		seen := make(map[string]int)
		for _, g := range GroupLenses(lenses) {
			for _, s := range g.Series {
				total += len(s.Lenses)
				for _, l := range s.Lenses {
					seen[l.ID]++
				}
			}
		}
		if total != n {
			t.Errorf("n=%d: grouped %d lenses, want %d", n, total, n)
		}
		for id, c := range seen {
			if c != 1 {
				t.Errorf("n=%d: lens %s appears %d times", n, id, c)
			}
		}
	}
}

func TestGroupLenses_OrderIndependent(t *testing.T) {
	f := gofakeit.New(99)
	lenses := testutil.RandomLenses(f, 80)
	want := GroupLenses(lenses)

	for i := 0; i < 10; i++ {
		shuffled := append([]models.Lens(nil), lenses...)
		f.ShuffleAnySlice(shuffled)
		if diff := cmp.Diff(want, GroupLenses(shuffled)); diff != "" {
			t.Fatalf("shuffle %d changed grouping (-want +got):\n%s", i, diff)
		}
	}
}

func TestGroupLenses_SortedWithinGroups(t *testing.T) {
	groups := GroupLenses(testutil.RandomLenses(gofakeit.New(5), 60))
	for i := 1; i < len(groups); i++ {
		if fold(groups[i-1].Manufacturer) > fold(groups[i].Manufacturer) {
			t.Errorf("groups out of order: %q before %q", groups[i-1].Manufacturer, groups[i].Manufacturer)
		}
	}
	for _, g := range groups {
		for _, s := range g.Series {
			for i := 1; i < len(s.Lenses); i++ {
				a, b := s.Lenses[i-1], s.Lenses[i]
				if displayLess(b.DisplayName, b.ID, a.DisplayName, a.ID) {
					t.Errorf("lenses out of order in %s/%s: %q before %q", g.Manufacturer, s.Name, a.DisplayName, b.DisplayName)
				}
			}
		}
	}
}
