package models

// Rental is a rental house that stocks lenses.
type Rental struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}

// InventoryItem records that a rental house stocks a lens.
type InventoryItem struct {
	RentalID string `json:"rental_id" yaml:"rental_id"`
	LensID   string `json:"lens_id" yaml:"lens_id"`
}
