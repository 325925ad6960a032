package catalog

import (
	"sort"

	"github.com/HerbHall/cinelens/pkg/models"
)

// LensSeries is one lens line of a manufacturer.
type LensSeries struct {
	Name   string        `json:"name"`
	Lenses []models.Lens `json:"lenses"`
}

// LensGroup is every series of one manufacturer.
type LensGroup struct {
	Manufacturer string       `json:"manufacturer"`
	Series       []LensSeries `json:"series"`
}

type seriesBucket struct {
	key     string
	display string
	lenses  []models.Lens
}

type groupBucket struct {
	key     string
	display string
	series  map[string]*seriesBucket
}

// GroupLenses partitions lenses into manufacturer -> series groups keyed by
// Normalize. Each group is labelled with the lexically smallest original
// spelling among its members, so the result depends only on the set of
// lenses and never on input order. Groups, series and lenses are sorted by
// display name.
func GroupLenses(lenses []models.Lens) []LensGroup {
	groups := make(map[string]*groupBucket)

	for i := range lenses {
		l := lenses[i]

		mk := Normalize(l.Manufacturer)
		g, ok := groups[mk]
		if !ok {
			g = &groupBucket{key: mk, display: l.Manufacturer, series: make(map[string]*seriesBucket)}
			groups[mk] = g
		} else if l.Manufacturer < g.display {
			g.display = l.Manufacturer
		}

		sk := Normalize(l.SeriesName)
		s, ok := g.series[sk]
		if !ok {
			s = &seriesBucket{key: sk, display: l.SeriesName}
			g.series[sk] = s
		} else if l.SeriesName < s.display {
			s.display = l.SeriesName
		}
		s.lenses = append(s.lenses, l)
	}

	result := make([]LensGroup, 0, len(groups))
	for _, g := range sortedGroups(groups) {
		series := make([]LensSeries, 0, len(g.series))
		for _, s := range sortedSeries(g.series) {
			SortLenses(s.lenses)
			series = append(series, LensSeries{Name: s.display, Lenses: s.lenses})
		}
		result = append(result, LensGroup{Manufacturer: g.display, Series: series})
	}
	return result
}

func sortedGroups(m map[string]*groupBucket) []*groupBucket {
	out := make([]*groupBucket, 0, len(m))
	for _, g := range m {
		out = append(out, g)
	}
	sort.Slice(out, func(a, b int) bool {
		return displayLess(out[a].display, out[a].key, out[b].display, out[b].key)
	})
	return out
}

func sortedSeries(m map[string]*seriesBucket) []*seriesBucket {
	out := make([]*seriesBucket, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool {
		return displayLess(out[a].display, out[a].key, out[b].display, out[b].key)
	})
	return out
}

// SortLenses orders lenses by display name, then id.
func SortLenses(lenses []models.Lens) {
	sort.Slice(lenses, func(a, b int) bool {
		return displayLess(lenses[a].DisplayName, lenses[a].ID, lenses[b].DisplayName, lenses[b].ID)
	})
}

// displayLess orders case- and accent-insensitively, falling back to the raw
// strings and finally to a tie-break key so the order is total.
func displayLess(aName, aKey, bName, bKey string) bool {
	fa, fb := fold(aName), fold(bName)
	if fa != fb {
		return fa < fb
	}
	if aName != bName {
		return aName < bName
	}
	return aKey < bKey
}
