package invalidation

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Tracker counts invalidations per view. A view's version changes whenever it
// is invalidated, so the version can back HTTP validators: a client holding an
// ETag for an older version must re-fetch.
type Tracker struct {
	epoch    string
	mu       sync.RWMutex
	versions map[string]uint64
}

// NewTracker creates an empty tracker. The epoch keeps versions from two
// process lifetimes apart.
func NewTracker() *Tracker {
	return &Tracker{
		epoch:    ulid.Make().String(),
		versions: make(map[string]uint64),
	}
}

// Invalidate bumps the version of every view in signal.
func (t *Tracker) Invalidate(_ context.Context, signal Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, view := range signal.Views {
		t.versions[view.Key()]++
	}
}

// Version returns the current version of view.
func (t *Tracker) Version(view View) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.versions[view.Key()]
}

// ETag renders the weak entity tag of the view's current version.
func (t *Tracker) ETag(view View) string {
	return fmt.Sprintf(`W/"%s-%d"`, t.epoch, t.Version(view))
}
