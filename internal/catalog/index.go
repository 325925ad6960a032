package catalog

import (
	"errors"
	"sort"

	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
	"github.com/HerbHall/cinelens/pkg/models"
)

// Lookup errors.
var (
	ErrLensNotFound   = errors.New("lens not found")
	ErrCameraNotFound = errors.New("camera not found")
	ErrFormatNotFound = errors.New("recording format not found")
	ErrRentalNotFound = errors.New("rental not found")
)

// Index is a read-only lookup structure built once per catalog snapshot.
type Index struct {
	snap pkgcatalog.Snapshot

	lenses   map[string]int
	cameras  map[string]int
	rentals  map[string]int
	formats  map[string]int
	byCamera map[string][]models.RecordingFormat
	stock    stock
}

// NewIndex indexes snap. Duplicate ids keep the first record.
func NewIndex(snap pkgcatalog.Snapshot) *Index {
	idx := &Index{
		snap:     snap,
		lenses:   make(map[string]int, len(snap.Lenses)),
		cameras:  make(map[string]int, len(snap.Cameras)),
		rentals:  make(map[string]int, len(snap.Rentals)),
		formats:  make(map[string]int, len(snap.RecordingFormats)),
		byCamera: make(map[string][]models.RecordingFormat),
		stock:    newStock(snap.Inventory),
	}
	for i := range snap.Lenses {
		if _, dup := idx.lenses[snap.Lenses[i].ID]; !dup {
			idx.lenses[snap.Lenses[i].ID] = i
		}
	}
	for i := range snap.Cameras {
		if _, dup := idx.cameras[snap.Cameras[i].ID]; !dup {
			idx.cameras[snap.Cameras[i].ID] = i
		}
	}
	for i := range snap.Rentals {
		if _, dup := idx.rentals[snap.Rentals[i].ID]; !dup {
			idx.rentals[snap.Rentals[i].ID] = i
		}
	}
	for i := range snap.RecordingFormats {
		f := snap.RecordingFormats[i]
		if _, dup := idx.formats[f.ID]; dup {
			continue
		}
		idx.formats[f.ID] = i
		idx.byCamera[f.CameraID] = append(idx.byCamera[f.CameraID], f)
	}
	for id := range idx.byCamera {
		formats := idx.byCamera[id]
		sort.SliceStable(formats, func(a, b int) bool {
			return displayLess(formats[a].RecordingFormatName, formats[a].ID, formats[b].RecordingFormatName, formats[b].ID)
		})
	}
	return idx
}

// Snapshot returns the indexed snapshot. Callers must not modify it.
func (x *Index) Snapshot() pkgcatalog.Snapshot { return x.snap }

// Lens returns the lens with the given id.
func (x *Index) Lens(id string) (models.Lens, error) {
	i, ok := x.lenses[id]
	if !ok {
		return models.Lens{}, ErrLensNotFound
	}
	return x.snap.Lenses[i], nil
}

// Resolve returns the lenses for ids in the order given. Unknown ids are
// skipped.
func (x *Index) Resolve(ids []string) []models.Lens {
	out := make([]models.Lens, 0, len(ids))
	for _, id := range ids {
		if i, ok := x.lenses[id]; ok {
			out = append(out, x.snap.Lenses[i])
		}
	}
	return out
}

// Camera returns the camera with the given id.
func (x *Index) Camera(id string) (models.Camera, error) {
	i, ok := x.cameras[id]
	if !ok {
		return models.Camera{}, ErrCameraNotFound
	}
	return x.snap.Cameras[i], nil
}

// Rental returns the rental house with the given id.
func (x *Index) Rental(id string) (models.Rental, error) {
	i, ok := x.rentals[id]
	if !ok {
		return models.Rental{}, ErrRentalNotFound
	}
	return x.snap.Rentals[i], nil
}

// RecordingFormat returns the recording format with the given id.
func (x *Index) RecordingFormat(id string) (models.RecordingFormat, error) {
	i, ok := x.formats[id]
	if !ok {
		return models.RecordingFormat{}, ErrFormatNotFound
	}
	return x.snap.RecordingFormats[i], nil
}

// RecordingFormats returns the formats of a camera ordered by name.
func (x *Index) RecordingFormats(cameraID string) []models.RecordingFormat {
	return append([]models.RecordingFormat(nil), x.byCamera[cameraID]...)
}

// Filter applies c to every lens in the snapshot.
func (x *Index) Filter(c FilterCriteria) []models.Lens {
	return filterWithStock(x.snap.Lenses, x.stock, c)
}

// Rentable reports whether any rental house stocks the lens.
func (x *Index) Rentable(lensID string) bool {
	_, ok := x.stock.all[lensID]
	return ok
}

// RentalsForLens returns the rental houses stocking a lens, ordered by name.
func (x *Index) RentalsForLens(lensID string) []models.Rental {
	var out []models.Rental
	for i := range x.snap.Rentals {
		r := x.snap.Rentals[i]
		if _, ok := x.stock.byRental[r.ID][lensID]; ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return displayLess(out[a].Name, out[a].ID, out[b].Name, out[b].ID)
	})
	return out
}
