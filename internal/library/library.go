// Package library owns the user's favorites, comparison picks and projects.
// Every mutation is serialized through one Library, persisted, then
// broadcast to subscribers.
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HerbHall/cinelens/internal/catalog"
	"github.com/HerbHall/cinelens/internal/services"
	"github.com/HerbHall/cinelens/pkg/models"
)

// Errors returned by Library operations.
var (
	ErrComparisonFull = catalog.ErrComparisonFull
	ErrInvalidProject = errors.New("invalid project")
	ErrNotFound       = services.ErrNotFound
)

// Options configures a Library.
type Options struct {
	// PersistComparison stores the comparison set across restarts.
	PersistComparison bool

	Metrics *Metrics

	// Now overrides the clock used for change timestamps.
	Now func() time.Time
}

// Library is the single writer for user state.
type Library struct {
	sets     *services.IDSetRepository
	projects services.ProjectRepository
	logger   *zap.Logger
	opts     Options
	validate *validator.Validate

	mu         sync.Mutex
	favorites  []string
	comparison []string

	broadcaster
}

// New loads the persisted sets and returns a ready Library.
func New(ctx context.Context, sets *services.IDSetRepository, projects services.ProjectRepository, logger *zap.Logger, opts Options) (*Library, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	favorites, err := sets.LoadSet(ctx, services.SetFavorites)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	comparison := []string{}
	if opts.PersistComparison {
		comparison, err = sets.LoadSet(ctx, services.SetComparison)
		if err != nil {
			return nil, fmt.Errorf("load comparison: %w", err)
		}
		if len(comparison) > catalog.MaxComparison {
			logger.Warn("stored comparison set exceeds capacity, truncating",
				zap.Int("stored", len(comparison)),
				zap.Int("max", catalog.MaxComparison),
			)
			comparison = comparison[:catalog.MaxComparison]
		}
	}

	l := &Library{
		sets:       sets,
		projects:   projects,
		logger:     logger,
		opts:       opts,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		favorites:  favorites,
		comparison: comparison,
	}
	l.broadcaster.init()
	opts.Metrics.observeSets(len(favorites), len(comparison))
	return l, nil
}

// Favorites returns the favorite lens ids in insertion order.
func (l *Library) Favorites() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.favorites...)
}

// IsFavorite reports whether id is a favorite.
func (l *Library) IsFavorite(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.favorites {
		if f == id {
			return true
		}
	}
	return false
}

// Comparison returns the comparison lens ids in insertion order.
func (l *Library) Comparison() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.comparison...)
}

// InComparison reports whether id is in the comparison set.
func (l *Library) InComparison(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.comparison {
		if c == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id and returns the new set.
func (l *Library) ToggleFavorite(ctx context.Context, id string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := catalog.ToggleFavorite(l.favorites, id)
	if err := l.sets.SaveSet(ctx, services.SetFavorites, next); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}
	l.favorites = next
	l.opts.Metrics.observeSets(len(l.favorites), len(l.comparison))

	l.publish(Change{Kind: KindFavorites, Action: ActionToggled, ID: id, IDs: copyIDs(next), At: l.opts.Now()})
	return copyIDs(next), nil
}

// ToggleComparison adds or removes id. Adding to a full set returns
// ErrComparisonFull and leaves the set unchanged.
func (l *Library) ToggleComparison(ctx context.Context, id string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := catalog.ToggleComparison(l.comparison, id)
	if err != nil {
		l.opts.Metrics.observeRejection()
		return copyIDs(l.comparison), err
	}
	if err := l.saveComparison(ctx, next); err != nil {
		return nil, err
	}
	l.comparison = next
	l.opts.Metrics.observeSets(len(l.favorites), len(l.comparison))

	l.publish(Change{Kind: KindComparison, Action: ActionToggled, ID: id, IDs: copyIDs(next), At: l.opts.Now()})
	return copyIDs(next), nil
}

// ClearComparison empties the comparison set.
func (l *Library) ClearComparison(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := catalog.ClearComparison()
	if err := l.saveComparison(ctx, next); err != nil {
		return err
	}
	l.comparison = next
	l.opts.Metrics.observeSets(len(l.favorites), 0)

	l.publish(Change{Kind: KindComparison, Action: ActionCleared, IDs: []string{}, At: l.opts.Now()})
	return nil
}

func (l *Library) saveComparison(ctx context.Context, ids []string) error {
	if !l.opts.PersistComparison {
		return nil
	}
	if err := l.sets.SaveSet(ctx, services.SetComparison, ids); err != nil {
		return fmt.Errorf("save comparison: %w", err)
	}
	return nil
}

// FavoriteLenses resolves the favorites against idx. Ids missing from the
// catalog are skipped.
func (l *Library) FavoriteLenses(idx *catalog.Index) []models.Lens {
	return idx.Resolve(l.Favorites())
}

// ComparisonLenses resolves the comparison set against idx. Ids missing from
// the catalog are skipped.
func (l *Library) ComparisonLenses(idx *catalog.Index) []models.Lens {
	return idx.Resolve(l.Comparison())
}

func copyIDs(ids []string) []string {
	return append([]string{}, ids...)
}
