package catalog

import "errors"

// MaxComparison is the largest number of lenses that can be compared at once.
const MaxComparison = 4

// ErrComparisonFull is returned when adding to a full comparison set.
var ErrComparisonFull = errors.New("comparison set is at capacity")

// ToggleFavorite removes id from set when present and appends it otherwise.
// The input slice is never modified.
func ToggleFavorite(set []string, id string) []string {
	if i := indexOf(set, id); i >= 0 {
		return without(set, i)
	}
	return appendCopy(set, id)
}

// ToggleComparison behaves like ToggleFavorite but refuses to grow the set past
// MaxComparison. Removing a member always succeeds. On error the original set
// is returned unchanged.
func ToggleComparison(set []string, id string) ([]string, error) {
	if i := indexOf(set, id); i >= 0 {
		return without(set, i), nil
	}
	if len(set) >= MaxComparison {
		return set, ErrComparisonFull
	}
	return appendCopy(set, id), nil
}

// ClearComparison returns the empty comparison set.
func ClearComparison() []string {
	return []string{}
}

func indexOf(set []string, id string) int {
	for i := range set {
		if set[i] == id {
			return i
		}
	}
	return -1
}

func without(set []string, i int) []string {
	out := make([]string, 0, len(set)-1)
	out = append(out, set[:i]...)
	return append(out, set[i+1:]...)
}

func appendCopy(set []string, id string) []string {
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}
