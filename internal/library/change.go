package library

import (
	"sync"
	"time"

	"github.com/HerbHall/cinelens/pkg/models"
)

// Change kinds.
const (
	KindFavorites  = "favorites"
	KindComparison = "comparison"
	KindProject    = "project"
)

// Change actions.
const (
	ActionToggled = "toggled"
	ActionCleared = "cleared"
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change describes one committed mutation.
type Change struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`

	// ID is the toggled lens or the affected project.
	ID string `json:"id,omitempty"`

	// IDs is the full set after a favorites or comparison change.
	IDs []string `json:"ids,omitempty"`

	Project *models.Project `json:"project,omitempty"`
	At      time.Time       `json:"at"`
}

// subscriberBuffer is the per-subscriber queue. Changes beyond it are
// dropped for that subscriber.
const subscriberBuffer = 32

type broadcaster struct {
	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

func (b *broadcaster) init() {
	b.subs = make(map[int]chan Change)
}

// Subscribe returns a channel of future changes and a function that stops
// delivery and closes the channel.
func (b *broadcaster) Subscribe() (<-chan Change, func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subMu.Lock()
			defer b.subMu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

func (b *broadcaster) publish(c Change) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Close ends every subscription. Later subscriptions receive a closed channel.
func (b *broadcaster) Close() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.closed = true
}
