// Package catalog is the ingestion boundary for the lens catalog: it decodes
// heterogeneous payloads into the canonical models and holds the active
// snapshot.
package catalog

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/HerbHall/cinelens/pkg/models"
)

//go:embed catalog.yaml
var catalogRawData []byte

// Snapshot is a fully decoded catalog. It is treated as immutable once built.
type Snapshot struct {
	Lenses           []models.Lens            `json:"lenses"`
	Cameras          []models.Camera          `json:"cameras"`
	RecordingFormats []models.RecordingFormat `json:"recording_formats"`
	Rentals          []models.Rental          `json:"rentals"`
	Inventory        []models.InventoryItem   `json:"inventory"`
}

// Clone returns a deep copy of the snapshot's slices.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Lenses:           append([]models.Lens(nil), s.Lenses...),
		Cameras:          append([]models.Camera(nil), s.Cameras...),
		RecordingFormats: append([]models.RecordingFormat(nil), s.RecordingFormats...),
		Rentals:          append([]models.Rental(nil), s.Rentals...),
		Inventory:        append([]models.InventoryItem(nil), s.Inventory...),
	}
}

// Catalog provides lazy-loaded access to the active catalog snapshot. Until a
// snapshot is installed with Replace, the embedded YAML catalog is used.
type Catalog struct {
	once       sync.Once
	mu         sync.RWMutex
	snap       Snapshot
	err        error
	generation uint64
}

// NewCatalog creates a new Catalog that will parse the embedded YAML on first access.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// NewCatalogFrom creates a Catalog preloaded with snap. The embedded data is
// never parsed.
func NewCatalogFrom(snap Snapshot) *Catalog {
	c := &Catalog{}
	c.Replace(snap)
	return c
}

// Snapshot returns a copy of the active snapshot.
func (c *Catalog) Snapshot() (Snapshot, error) {
	c.once.Do(c.load)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return Snapshot{}, c.err
	}
	return c.snap.Clone(), nil
}

// Lenses returns a copy of all catalog lenses.
func (c *Catalog) Lenses() ([]models.Lens, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Lenses, nil
}

// Generation increases every time the snapshot changes. Callers use it to
// invalidate derived indexes.
func (c *Catalog) Generation() uint64 {
	c.once.Do(c.load)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Replace installs snap as the active snapshot and clears any load error.
func (c *Catalog) Replace(snap Snapshot) {
	c.once.Do(func() {})
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap.Clone()
	c.err = nil
	c.generation++
}

// load parses the embedded YAML catalog data.
func (c *Catalog) load() {
	snap, _, err := DecodeYAML(bytes.NewReader(catalogRawData))
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = err
		return
	}
	c.snap = snap
	c.generation++
}
