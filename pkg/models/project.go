package models

import "time"

// Project is a user-curated collection of lenses and cameras.
// LensIDs and CameraIDs are not deduplicated by the model itself.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes"`
	Date      time.Time `json:"date"`
	LensIDs   []string  `json:"lens_ids"`
	CameraIDs []string  `json:"camera_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLens reports whether id is already part of the project.
func (p Project) HasLens(id string) bool {
	return containsID(p.LensIDs, id)
}

// HasCamera reports whether id is already part of the project.
func (p Project) HasCamera(id string) bool {
	return containsID(p.CameraIDs, id)
}

func containsID(ids []string, id string) bool {
	for i := range ids {
		if ids[i] == id {
			return true
		}
	}
	return false
}
