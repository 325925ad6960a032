package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted lens id sets.
const (
	SetFavorites  = "favorites"
	SetComparison = "comparison"
)

// idSetVersion is written into every stored set. Readers accept any version
// and ignore fields they do not know.
const idSetVersion = 1

type idSetDocument struct {
	Version int      `json:"version"`
	IDs     []string `json:"ids"`
}

// IDSetRepository persists ordered id sets such as favorites.
type IDSetRepository struct {
	state StateRepository
}

// NewIDSetRepository stores sets as documents in state.
func NewIDSetRepository(state StateRepository) *IDSetRepository {
	return &IDSetRepository{state: state}
}

// LoadSet returns the ids stored under name. A missing set is empty. A bare
// JSON array is accepted for sets written before versioning.
func (r *IDSetRepository) LoadSet(ctx context.Context, name string) ([]string, error) {
	entry, err := r.state.Get(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc idSetDocument
	if err := json.Unmarshal([]byte(entry.Value), &doc); err != nil {
		var legacy []string
		if lerr := json.Unmarshal([]byte(entry.Value), &legacy); lerr != nil {
			return nil, fmt.Errorf("decode id set %q: %w", name, err)
		}
		doc.IDs = legacy
	}
	if doc.IDs == nil {
		doc.IDs = []string{}
	}
	return doc.IDs, nil
}

// SaveSet replaces the ids stored under name.
func (r *IDSetRepository) SaveSet(ctx context.Context, name string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(idSetDocument{Version: idSetVersion, IDs: ids})
	if err != nil {
		return fmt.Errorf("encode id set %q: %w", name, err)
	}
	return r.state.Set(ctx, name, string(data))
}
