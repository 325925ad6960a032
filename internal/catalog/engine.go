// Package catalog implements lens search over the active catalog snapshot:
// normalization, classification, filtering, grouping and coverage checks.
package catalog

import (
	"sort"
	"sync"

	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
	"github.com/HerbHall/cinelens/pkg/models"
)

// Engine answers catalog queries. The lookup index is rebuilt lazily whenever
// the catalog generation changes.
type Engine struct {
	cat     *pkgcatalog.Catalog
	metrics *Metrics

	mu    sync.Mutex
	gen   uint64
	index *Index
}

// NewEngine creates a new engine backed by the given catalog.
func NewEngine(cat *pkgcatalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// WithMetrics sets the metrics recorder and returns e.
func (e *Engine) WithMetrics(m *Metrics) *Engine {
	e.metrics = m
	return e
}

// Index returns the index for the active snapshot.
func (e *Engine) Index() (*Index, error) {
	gen := e.cat.Generation()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index != nil && e.gen == gen {
		return e.index, nil
	}

	snap, err := e.cat.Snapshot()
	if err != nil {
		return nil, err
	}
	e.index = NewIndex(snap)
	e.gen = gen
	e.metrics.ObserveSnapshot(snap)
	return e.index, nil
}

// Lenses returns the lenses matching c sorted by display name.
func (e *Engine) Lenses(c FilterCriteria) ([]models.Lens, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	result := idx.Filter(c)
	SortLenses(result)
	e.metrics.observeFilter(len(result))
	return result, nil
}

// Groups returns the lenses matching c grouped by manufacturer and series.
func (e *Engine) Groups(c FilterCriteria) ([]LensGroup, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	result := idx.Filter(c)
	e.metrics.observeFilter(len(result))
	return GroupLenses(result), nil
}

// Lens returns a single lens by id.
func (e *Engine) Lens(id string) (models.Lens, error) {
	idx, err := e.Index()
	if err != nil {
		return models.Lens{}, err
	}
	return idx.Lens(id)
}

// Formats returns the distinct lens format values, sorted.
func (e *Engine) Formats() ([]string, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	formats := make([]string, 0)
	for _, l := range idx.Snapshot().Lenses {
		if l.Format == "" {
			continue
		}
		if _, ok := seen[l.Format]; ok {
			continue
		}
		seen[l.Format] = struct{}{}
		formats = append(formats, l.Format)
	}
	sort.Strings(formats)
	return formats, nil
}

// Cameras returns all cameras ordered by display name.
func (e *Engine) Cameras() ([]models.Camera, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	cameras := append([]models.Camera(nil), idx.Snapshot().Cameras...)
	sort.Slice(cameras, func(a, b int) bool {
		return displayLess(cameras[a].DisplayName(), cameras[a].ID, cameras[b].DisplayName(), cameras[b].ID)
	})
	return cameras, nil
}

// Camera returns a single camera by id.
func (e *Engine) Camera(id string) (models.Camera, error) {
	idx, err := e.Index()
	if err != nil {
		return models.Camera{}, err
	}
	return idx.Camera(id)
}

// RecordingFormats returns the recording formats of a camera.
func (e *Engine) RecordingFormats(cameraID string) ([]models.RecordingFormat, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	if _, err := idx.Camera(cameraID); err != nil {
		return nil, err
	}
	return idx.RecordingFormats(cameraID), nil
}

// Rentals returns all rental houses ordered by name.
func (e *Engine) Rentals() ([]models.Rental, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	rentals := append([]models.Rental(nil), idx.Snapshot().Rentals...)
	sort.Slice(rentals, func(a, b int) bool {
		return displayLess(rentals[a].Name, rentals[a].ID, rentals[b].Name, rentals[b].ID)
	})
	return rentals, nil
}

// RentalLenses returns the lenses stocked by a rental house that also match c.
func (e *Engine) RentalLenses(rentalID string, c FilterCriteria) ([]models.Lens, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	if _, err := idx.Rental(rentalID); err != nil {
		return nil, err
	}
	c.RentalID = rentalID
	result := idx.Filter(c)
	SortLenses(result)
	e.metrics.observeFilter(len(result))
	return result, nil
}

// FormatVerdict pairs a recording format with the coverage verdict for a lens.
type FormatVerdict struct {
	Format  models.RecordingFormat `json:"format"`
	Verdict CompatibilityVerdict   `json:"verdict"`
}

// Compatibility checks one lens against one recording format.
func (e *Engine) Compatibility(lensID, formatID string) (FormatVerdict, error) {
	idx, err := e.Index()
	if err != nil {
		return FormatVerdict{}, err
	}
	lens, err := idx.Lens(lensID)
	if err != nil {
		return FormatVerdict{}, err
	}
	format, err := idx.RecordingFormat(formatID)
	if err != nil {
		return FormatVerdict{}, err
	}
	return FormatVerdict{Format: format, Verdict: CheckRecordingFormat(lens, format)}, nil
}

// CameraCompatibility checks a lens against every recording format of a
// camera, in format-name order.
func (e *Engine) CameraCompatibility(lensID, cameraID string) ([]FormatVerdict, error) {
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	lens, err := idx.Lens(lensID)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Camera(cameraID); err != nil {
		return nil, err
	}
	formats := idx.RecordingFormats(cameraID)
	result := make([]FormatVerdict, 0, len(formats))
	for i := range formats {
		result = append(result, FormatVerdict{Format: formats[i], Verdict: CheckRecordingFormat(lens, formats[i])})
	}
	return result, nil
}
